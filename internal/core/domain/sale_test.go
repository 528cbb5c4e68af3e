package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

func TestValidateLineRequests(t *testing.T) {
	tests := []struct {
		name      string
		lines     []domain.LineRequest
		wantError bool
	}{
		{name: "empty_request", lines: nil, wantError: true},
		{name: "zero_quantity", lines: []domain.LineRequest{{ProductID: 1, Quantity: 0}}, wantError: true},
		{name: "negative_quantity", lines: []domain.LineRequest{{ProductID: 1, Quantity: -2}}, wantError: true},
		{name: "invalid_product_id", lines: []domain.LineRequest{{ProductID: 0, Quantity: 1}}, wantError: true},
		{name: "valid_lines", lines: []domain.LineRequest{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateLineRequests(tt.lines)
			if tt.wantError {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeLineRequests(t *testing.T) {
	merged := domain.MergeLineRequests([]domain.LineRequest{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 4},
	})

	assert.Equal(t, []domain.LineRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 5},
	}, merged)
	assert.Equal(t, []int64{1, 3}, domain.ProductIDs(merged))
}

func TestNewLineItem_SnapshotsProduct(t *testing.T) {
	p := &domain.Product{ID: 7, Name: "Orchid", Price: decimal.RequireFromString("24.90")}

	item := domain.NewLineItem(p, 3)

	p.Name = "Renamed"
	p.Price = decimal.NewFromInt(1)

	assert.Equal(t, int64(7), item.ProductID)
	assert.Equal(t, "Orchid", item.ProductName)
	assert.True(t, decimal.RequireFromString("24.90").Equal(item.UnitPrice))
	assert.True(t, decimal.RequireFromString("74.70").Equal(item.TotalPrice))
}

func TestSale_RecalculateAndCheckAggregates(t *testing.T) {
	sale := &domain.Sale{
		SaleDate: time.Now(),
		Items: []domain.SaleLineItem{
			domain.NewLineItem(&domain.Product{ID: 1, Name: "Rose", Price: decimal.RequireFromString("10.00")}, 3),
			domain.NewLineItem(&domain.Product{ID: 2, Name: "Vase", Price: decimal.RequireFromString("4.25")}, 2),
		},
	}

	sale.RecalculateTotals()

	assert.True(t, decimal.RequireFromString("38.50").Equal(sale.TotalAmount))
	assert.Equal(t, 5, sale.ItemCount)
	require.NoError(t, sale.CheckAggregates())

	sale.ItemCount = 4
	assert.Error(t, sale.CheckAggregates())

	sale.RecalculateTotals()
	sale.Items[0].TotalPrice = decimal.NewFromInt(1)
	assert.Error(t, sale.CheckAggregates())
}

func TestSale_EmptyAggregatesAreZero(t *testing.T) {
	sale := &domain.Sale{}
	sale.RecalculateTotals()

	assert.True(t, sale.TotalAmount.IsZero())
	assert.Zero(t, sale.ItemCount)
}
