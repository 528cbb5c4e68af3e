// internal/core/services/reporting.go
package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// Sales export layout
const (
	ExportDateLayout = "2006-01-02 15:04:05"
	exportSeparator  = ';'
)

var exportHeader = []string{"ID", "Sale date", "Item count", "Total amount"}

// ReportingOptions tunes the reporting service
type ReportingOptions struct {
	LowStockThreshold      int
	CriticalStockThreshold int
	DashboardCacheTTL      time.Duration
	// Location renders exported timestamps. Defaults to UTC.
	Location *time.Location
}

// ReportingService builds read-only views over the catalog and the ledger
type ReportingService struct {
	products ports.ProductRepository
	sales    ports.SaleRepository
	cache    ports.CacheRepository
	opts     ReportingOptions
	logger   *slog.Logger
}

var _ ports.ReportingService = (*ReportingService)(nil)

// NewReportingService creates a new reporting service. cache may be nil.
func NewReportingService(
	products ports.ProductRepository,
	sales ports.SaleRepository,
	cache ports.CacheRepository,
	opts ReportingOptions,
	logger *slog.Logger,
) *ReportingService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ReportingService{
		products: products,
		sales:    sales,
		cache:    cache,
		opts:     opts,
		logger:   logger.With(slog.String("service", "reporting")),
	}
}

// TotalRevenue sums the totals of every sale. It is zero for an empty ledger.
func (s *ReportingService) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	totals, err := s.sales.Totals(ctx)
	if err != nil {
		return decimal.Zero, domain.AsStorageError("total revenue", err)
	}
	return totals.Revenue, nil
}

// AverageSale is revenue divided by the number of sales, rounded to cents
func (s *ReportingService) AverageSale(ctx context.Context) (decimal.Decimal, error) {
	totals, err := s.sales.Totals(ctx)
	if err != nil {
		return decimal.Zero, domain.AsStorageError("average sale", err)
	}
	return totals.Average(), nil
}

// AllSales returns every sale, newest first
func (s *ReportingService) AllSales(ctx context.Context) ([]*domain.Sale, error) {
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, domain.AsStorageError("list sales", err)
	}
	return sales, nil
}

// LineItemsOf returns the items of one sale. The stored aggregates are
// checked against the items on every read.
func (s *ReportingService) LineItemsOf(ctx context.Context, saleID int64) ([]domain.SaleLineItem, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, domain.AsStorageError("get sale", err)
	}
	if sale == nil {
		return nil, &domain.NotFoundError{Entity: "sale", ID: saleID}
	}

	items, err := s.sales.FindItems(ctx, saleID)
	if err != nil {
		return nil, domain.AsStorageError("list sale items", err)
	}

	sale.Items = items
	if err := sale.CheckAggregates(); err != nil {
		s.logger.ErrorContext(ctx, "sale aggregates disagree with items",
			slog.Int64("sale_id", saleID),
			slog.String("error", err.Error()))
		return nil, &domain.DataCorruptionError{Entity: "sale", Err: err}
	}

	return items, nil
}

// ExportSales writes the sales inside r to a CSV file at path and returns
// the number of sales written. The file appears only once fully written.
func (s *ReportingService) ExportSales(ctx context.Context, path string, r domain.DateRange) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if path == "" {
		return 0, domain.NewValidationError("path", "is required")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, &domain.StorageError{Op: "export sales", Err: err}
	}
	defer os.Remove(tmp.Name())

	count, err := s.WriteSalesCSV(ctx, tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, &domain.StorageError{Op: "export sales", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, &domain.StorageError{Op: "export sales", Err: err}
	}

	s.logger.InfoContext(ctx, "sales exported",
		slog.String("path", path),
		slog.Int("count", count))

	return count, nil
}

// WriteSalesCSV streams the sales inside r to w, oldest first
func (s *ReportingService) WriteSalesCSV(ctx context.Context, w io.Writer, r domain.DateRange) (int, error) {
	sales, err := s.salesInRange(ctx, r)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	cw.Comma = exportSeparator

	if err := cw.Write(exportHeader); err != nil {
		return 0, &domain.StorageError{Op: "write sales csv", Err: err}
	}
	for _, sale := range sales {
		record := []string{
			strconv.FormatInt(sale.ID, 10),
			sale.SaleDate.In(s.opts.Location).Format(ExportDateLayout),
			strconv.Itoa(sale.ItemCount),
			sale.TotalAmount.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return 0, &domain.StorageError{Op: "write sales csv", Err: err}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, &domain.StorageError{Op: "write sales csv", Err: err}
	}

	return len(sales), nil
}

// WriteSalesXLSX writes the same rows as WriteSalesCSV as a workbook
func (s *ReportingService) WriteSalesXLSX(ctx context.Context, w io.Writer, r domain.DateRange) (int, error) {
	sales, err := s.salesInRange(ctx, r)
	if err != nil {
		return 0, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return 0, fmt.Errorf("failed to add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, title := range exportHeader {
		header.AddCell().SetString(title)
	}

	for _, sale := range sales {
		row := sheet.AddRow()
		row.AddCell().SetInt64(sale.ID)
		row.AddCell().SetString(sale.SaleDate.In(s.opts.Location).Format(ExportDateLayout))
		row.AddCell().SetInt(sale.ItemCount)
		total, _ := sale.TotalAmount.Round(2).Float64()
		row.AddCell().SetFloatWithFormat(total, "0.00")
	}

	if err := file.Write(w); err != nil {
		return 0, &domain.StorageError{Op: "write sales xlsx", Err: err}
	}

	return len(sales), nil
}

// LowStockReport lists products at or below threshold, each marked
// CRITICAL or LOW against the critical threshold
func (s *ReportingService) LowStockReport(ctx context.Context, threshold int) ([]domain.LowStockEntry, error) {
	if threshold < 0 {
		return nil, domain.NewValidationError("threshold", "cannot be negative")
	}

	products, err := s.products.FindLowStock(ctx, threshold)
	if err != nil {
		return nil, domain.AsStorageError("low stock report", err)
	}

	entries := make([]domain.LowStockEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, domain.LowStockEntry{
			Product: p,
			Status:  domain.ClassifyStock(p.StockQuantity, s.opts.CriticalStockThreshold),
		})
	}
	return entries, nil
}

// Dashboard returns the main screen counters, served from cache when fresh
func (s *ReportingService) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	if s.cache == nil || s.opts.DashboardCacheTTL <= 0 {
		return s.buildDashboard(ctx)
	}

	var summary domain.DashboardSummary
	err := s.cache.GetOrSet(ctx, ports.CacheKeyDashboard, &summary, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	}, s.opts.DashboardCacheTTL)
	if err != nil {
		if domain.IsDomainError(err) {
			return nil, err
		}
		// Redis trouble must not hide the dashboard
		s.logger.WarnContext(ctx, "dashboard cache unavailable",
			slog.String("error", err.Error()))
		return s.buildDashboard(ctx)
	}
	return &summary, nil
}

func (s *ReportingService) buildDashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, domain.AsStorageError("count products", err)
	}

	totals, err := s.sales.Totals(ctx)
	if err != nil {
		return nil, domain.AsStorageError("sales totals", err)
	}

	low, err := s.products.FindLowStock(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return nil, domain.AsStorageError("low stock", err)
	}

	critical := 0
	for _, p := range low {
		if p.StockQuantity <= s.opts.CriticalStockThreshold {
			critical++
		}
	}
	if s.opts.CriticalStockThreshold > s.opts.LowStockThreshold {
		extra, err := s.products.FindLowStock(ctx, s.opts.CriticalStockThreshold)
		if err != nil {
			return nil, domain.AsStorageError("critical stock", err)
		}
		critical = len(extra)
	}

	return &domain.DashboardSummary{
		ProductCount:       productCount,
		SaleCount:          totals.Count,
		TotalRevenue:       totals.Revenue,
		AverageSale:        totals.Average(),
		LowStockCount:      len(low),
		CriticalStockCount: critical,
		LowStockThreshold:  s.opts.LowStockThreshold,
		CriticalThreshold:  s.opts.CriticalStockThreshold,
		GeneratedAt:        time.Now().UTC(),
	}, nil
}

func (s *ReportingService) salesInRange(ctx context.Context, r domain.DateRange) ([]*domain.Sale, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	sales, err := s.sales.FindInRange(ctx, r)
	if err != nil {
		return nil, domain.AsStorageError("list sales in range", err)
	}
	return sales, nil
}
