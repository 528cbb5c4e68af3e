// internal/core/ports/ledger.go
package ports

import (
	"context"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// SaleRepository defines the read side of the sales ledger.
type SaleRepository interface {
	// FindAll returns every sale, newest first, without line items.
	FindAll(ctx context.Context) ([]*domain.Sale, error)
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	FindItems(ctx context.Context, saleID int64) ([]domain.SaleLineItem, error)
	// FindInRange returns sales inside the inclusive range, oldest first.
	FindInRange(ctx context.Context, r domain.DateRange) ([]*domain.Sale, error)
	Totals(ctx context.Context) (domain.SalesTotals, error)
}

// LedgerStore opens the transaction a sale commit runs in. The transaction
// commits only when fn returns nil and is rolled back on any other exit.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the set of writes a sale commit may perform.
type LedgerTx interface {
	// LockProducts loads and row-locks the given products. Ids that do not
	// exist are absent from the result.
	LockProducts(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	// InsertSale persists the sale and its items, assigning their ids.
	InsertSale(ctx context.Context, sale *domain.Sale) error
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

// LedgerService defines the application service port for sales.
type LedgerService interface {
	CommitSale(ctx context.Context, lines []domain.LineRequest) (*domain.Sale, error)
}
