// internal/core/ports/reporting.go
package ports

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// ReportingService defines read-only views over the catalog and ledger.
type ReportingService interface {
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	AverageSale(ctx context.Context) (decimal.Decimal, error)
	AllSales(ctx context.Context) ([]*domain.Sale, error)
	LineItemsOf(ctx context.Context, saleID int64) ([]domain.SaleLineItem, error)
	ExportSales(ctx context.Context, path string, r domain.DateRange) (int, error)
	WriteSalesCSV(ctx context.Context, w io.Writer, r domain.DateRange) (int, error)
	WriteSalesXLSX(ctx context.Context, w io.Writer, r domain.DateRange) (int, error)
	LowStockReport(ctx context.Context, threshold int) ([]domain.LowStockEntry, error)
	Dashboard(ctx context.Context) (*domain.DashboardSummary, error)
}
