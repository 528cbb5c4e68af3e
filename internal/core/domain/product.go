// internal/core/domain/product.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory is the shelf a product is sold from.
type ProductCategory string

const (
	CategoryBouquets     ProductCategory = "Bouquets"
	CategoryPottedPlants ProductCategory = "Potted plants"
	CategoryCutFlowers   ProductCategory = "Cut flowers"
	CategoryGiftSets     ProductCategory = "Gift sets"
	CategorySeeds        ProductCategory = "Seeds"
	CategoryTools        ProductCategory = "Tools"
)

// Categories lists the categories offered when creating a product.
func Categories() []ProductCategory {
	return []ProductCategory{
		CategoryBouquets,
		CategoryPottedPlants,
		CategoryCutFlowers,
		CategoryGiftSets,
		CategorySeeds,
		CategoryTools,
	}
}

// IsKnown reports whether c is one of the predefined categories.
func (c ProductCategory) IsKnown() bool {
	for _, known := range Categories() {
		if strings.EqualFold(string(known), string(c)) {
			return true
		}
	}
	return false
}

// Product is a sellable catalog entry.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description,omitempty" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	Category      ProductCategory `json:"category,omitempty" db:"category"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Validate checks the fields a caller controls.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	if p.StockQuantity < 0 {
		return NewValidationError("stock_quantity", "must not be negative")
	}
	return nil
}

// Normalize trims text fields and rounds the price to cents. Validate the
// input first: rounding turns a negative sub-cent price into zero.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = ProductCategory(strings.TrimSpace(string(p.Category)))
	p.Price = p.Price.Round(2)
}

// IsLowStock reports whether the on-hand quantity is at or below threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.StockQuantity <= threshold
}
