// internal/core/domain/sale.go
package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an append-only ledger entry.
type Sale struct {
	ID          int64           `json:"id" db:"id"`
	SaleDate    time.Time       `json:"sale_date" db:"sale_date"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	ItemCount   int             `json:"item_count" db:"item_count"`
	Items       []SaleLineItem  `json:"items,omitempty" db:"-"`
}

// SaleLineItem records one product sold, with the name and price captured
// at sale time.
type SaleLineItem struct {
	ID          int64           `json:"id" db:"id"`
	SaleID      int64           `json:"sale_id" db:"sale_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
}

// LineRequest is one product and quantity of a proposed sale.
type LineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// NewLineItem snapshots the product's name and price for qty units.
func NewLineItem(p *Product, qty int) SaleLineItem {
	return SaleLineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   p.Price,
		TotalPrice:  p.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// ValidateLineRequests rejects an empty request and any line with a
// non-positive product id or quantity.
func ValidateLineRequests(lines []LineRequest) error {
	if len(lines) == 0 {
		return NewValidationError("items", "sale must contain at least one line")
	}
	for i, line := range lines {
		if line.ProductID <= 0 {
			return NewValidationError(fmt.Sprintf("items[%d].product_id", i), "must be positive")
		}
		if line.Quantity <= 0 {
			return NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
	}
	return nil
}

// MergeLineRequests folds repeated product ids into a single line, ordered
// by product id.
func MergeLineRequests(lines []LineRequest) []LineRequest {
	totals := make(map[int64]int, len(lines))
	for _, line := range lines {
		totals[line.ProductID] += line.Quantity
	}

	merged := make([]LineRequest, 0, len(totals))
	for id, qty := range totals {
		merged = append(merged, LineRequest{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID < merged[j].ProductID
	})
	return merged
}

// ProductIDs returns the product ids referenced by lines.
func ProductIDs(lines []LineRequest) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// RecalculateTotals derives TotalAmount and ItemCount from the line items.
func (s *Sale) RecalculateTotals() {
	total := decimal.Zero
	count := 0
	for _, item := range s.Items {
		total = total.Add(item.TotalPrice)
		count += item.Quantity
	}
	s.TotalAmount = total
	s.ItemCount = count
}

// CheckAggregates verifies the stored aggregates agree with the line items.
func (s *Sale) CheckAggregates() error {
	total := decimal.Zero
	count := 0
	for _, item := range s.Items {
		if !item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
			return fmt.Errorf("line for product %d: total %s does not match %d x %s",
				item.ProductID, item.TotalPrice, item.Quantity, item.UnitPrice)
		}
		total = total.Add(item.TotalPrice)
		count += item.Quantity
	}
	if !total.Equal(s.TotalAmount) {
		return fmt.Errorf("sale total %s does not match line totals %s", s.TotalAmount, total)
	}
	if count != s.ItemCount {
		return fmt.Errorf("sale item count %d does not match line quantities %d", s.ItemCount, count)
	}
	return nil
}
