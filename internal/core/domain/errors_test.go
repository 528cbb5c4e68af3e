package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		matches []error
		misses  []error
	}{
		{
			name:    "validation",
			err:     domain.NewValidationError("name", "is required"),
			matches: []error{domain.ErrValidation},
			misses:  []error{domain.ErrStorage, domain.ErrNotFound},
		},
		{
			name:    "not_found",
			err:     &domain.NotFoundError{Entity: "product", ID: 1},
			matches: []error{domain.ErrNotFound},
			misses:  []error{domain.ErrValidation},
		},
		{
			name:    "insufficient_stock",
			err:     &domain.InsufficientStockError{ProductID: 1, ProductName: "Rose", Requested: 5, Available: 2},
			matches: []error{domain.ErrInsufficientStock},
			misses:  []error{domain.ErrStorage},
		},
		{
			name:    "storage",
			err:     &domain.StorageError{Op: "commit sale", Err: cause},
			matches: []error{domain.ErrStorage, cause},
			misses:  []error{domain.ErrDataCorruption},
		},
		{
			name:    "data_corruption_is_storage",
			err:     &domain.DataCorruptionError{Entity: "product", Column: "price", Err: cause},
			matches: []error{domain.ErrDataCorruption, domain.ErrStorage, cause},
			misses:  []error{domain.ErrValidation},
		},
		{
			name:    "wrapped_kind_survives",
			err:     fmt.Errorf("failed to commit sale: %w", &domain.NotFoundError{Entity: "product", ID: 9}),
			matches: []error{domain.ErrNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, target := range tt.matches {
				assert.ErrorIs(t, tt.err, target)
			}
			for _, target := range tt.misses {
				assert.NotErrorIs(t, tt.err, target)
			}
		})
	}
}

func TestInsufficientStockError_NamesProduct(t *testing.T) {
	err := &domain.InsufficientStockError{ProductID: 4, ProductName: "Lily", Requested: 5, Available: 2}
	assert.Contains(t, err.Error(), "Lily")
	assert.Contains(t, err.Error(), "requested 5")
}

func TestAsStorageError(t *testing.T) {
	assert.Nil(t, domain.AsStorageError("op", nil))

	notFound := &domain.NotFoundError{Entity: "sale", ID: 2}
	assert.Same(t, notFound, domain.AsStorageError("op", notFound))

	wrapped := domain.AsStorageError("list sales", errors.New("boom"))
	var sErr *domain.StorageError
	assert.ErrorAs(t, wrapped, &sErr)
	assert.Equal(t, "list sales", sErr.Op)
}

func TestDateRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	r := domain.DateRange{Start: &start, End: &end}
	assert.NoError(t, r.Validate())
	assert.True(t, r.Contains(start))
	assert.True(t, r.Contains(end))
	assert.False(t, r.Contains(end.Add(time.Second)))
	assert.False(t, r.Contains(start.Add(-time.Second)))

	open := domain.DateRange{}
	assert.True(t, open.Contains(time.Time{}))

	inverted := domain.DateRange{Start: &end, End: &start}
	assert.ErrorIs(t, inverted.Validate(), domain.ErrValidation)
}

func TestSalesTotals_Average(t *testing.T) {
	assert.True(t, domain.SalesTotals{}.Average().IsZero())

	totals := domain.SalesTotals{Count: 3, Revenue: decimal.RequireFromString("100.00")}
	assert.True(t, decimal.RequireFromString("33.33").Equal(totals.Average()))
}

func TestClassifyStock(t *testing.T) {
	assert.Equal(t, domain.StockCritical, domain.ClassifyStock(0, 5))
	assert.Equal(t, domain.StockCritical, domain.ClassifyStock(5, 5))
	assert.Equal(t, domain.StockLow, domain.ClassifyStock(6, 5))
}
