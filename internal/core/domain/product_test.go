package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name      string
		product   *domain.Product
		wantError bool
		field     string
	}{
		{
			name: "valid_product",
			product: &domain.Product{
				Name:          "Red Roses",
				Price:         decimal.RequireFromString("12.50"),
				StockQuantity: 20,
				Category:      domain.CategoryCutFlowers,
			},
		},
		{
			name: "zero_price_and_stock_allowed",
			product: &domain.Product{
				Name:  "Free Sample",
				Price: decimal.Zero,
			},
		},
		{
			name: "empty_name",
			product: &domain.Product{
				Price: decimal.NewFromInt(1),
			},
			wantError: true,
			field:     "name",
		},
		{
			name: "blank_name",
			product: &domain.Product{
				Name:  "   ",
				Price: decimal.NewFromInt(1),
			},
			wantError: true,
			field:     "name",
		},
		{
			name: "negative_price",
			product: &domain.Product{
				Name:  "Tulips",
				Price: decimal.RequireFromString("-0.01"),
			},
			wantError: true,
			field:     "price",
		},
		{
			name: "negative_sub_cent_price",
			product: &domain.Product{
				Name:  "Tulips",
				Price: decimal.RequireFromString("-0.004"),
			},
			wantError: true,
			field:     "price",
		},
		{
			name: "negative_stock",
			product: &domain.Product{
				Name:          "Tulips",
				Price:         decimal.NewFromInt(3),
				StockQuantity: -1,
			},
			wantError: true,
			field:     "stock_quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestProduct_Normalize(t *testing.T) {
	p := &domain.Product{
		Name:        "  Sunflower Bouquet ",
		Description: " seasonal ",
		Category:    " Bouquets ",
		Price:       decimal.RequireFromString("9.999"),
	}

	p.Normalize()

	assert.Equal(t, "Sunflower Bouquet", p.Name)
	assert.Equal(t, "seasonal", p.Description)
	assert.Equal(t, domain.CategoryBouquets, p.Category)
	assert.True(t, decimal.RequireFromString("10.00").Equal(p.Price))
}

func TestProductCategory_IsKnown(t *testing.T) {
	assert.True(t, domain.CategorySeeds.IsKnown())
	assert.True(t, domain.ProductCategory("potted plants").IsKnown())
	assert.False(t, domain.ProductCategory("Furniture").IsKnown())
	assert.Len(t, domain.Categories(), 6)
}

func TestProduct_IsLowStock(t *testing.T) {
	p := &domain.Product{StockQuantity: 5}
	assert.True(t, p.IsLowStock(5))
	assert.True(t, p.IsLowStock(10))
	assert.False(t, p.IsLowStock(4))
}
