// internal/core/domain/report.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus classifies a low-stock product.
type StockStatus string

const (
	StockCritical StockStatus = "CRITICAL"
	StockLow      StockStatus = "LOW"
)

// LowStockEntry is one row of the low-stock report.
type LowStockEntry struct {
	Product *Product    `json:"product"`
	Status  StockStatus `json:"status"`
}

// ClassifyStock returns CRITICAL when quantity is at or below the critical
// threshold and LOW otherwise.
func ClassifyStock(quantity, critical int) StockStatus {
	if quantity <= critical {
		return StockCritical
	}
	return StockLow
}

// DashboardSummary holds the counters shown on the main screen.
type DashboardSummary struct {
	ProductCount       int64           `json:"product_count"`
	SaleCount          int64           `json:"sale_count"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	AverageSale        decimal.Decimal `json:"average_sale"`
	LowStockCount      int             `json:"low_stock_count"`
	CriticalStockCount int             `json:"critical_stock_count"`
	LowStockThreshold  int             `json:"low_stock_threshold"`
	CriticalThreshold  int             `json:"critical_threshold"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// SalesTotals aggregates the whole ledger.
type SalesTotals struct {
	Count   int64
	Revenue decimal.Decimal
}

// Average returns revenue divided by count, rounded to cents, or zero.
func (t SalesTotals) Average() decimal.Decimal {
	if t.Count == 0 {
		return decimal.Zero
	}
	return t.Revenue.Div(decimal.NewFromInt(t.Count)).Round(2)
}

// DateRange bounds a sale query. Nil bounds are open; both are inclusive.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Validate rejects a range whose start is after its end.
func (r DateRange) Validate() error {
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return NewValidationError("date_range", "start must not be after end")
	}
	return nil
}

// Contains reports whether t lies within the inclusive bounds.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}
