// internal/core/ports/catalog.go
package ports

import (
	"context"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// ProductRepository defines the persistence port for the product catalog.
// This interface is implemented by the database adapter.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	// Update returns false when no row has the product's id.
	Update(ctx context.Context, product *domain.Product) (bool, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindAll(ctx context.Context) ([]*domain.Product, error)
	Search(ctx context.Context, term string) ([]*domain.Product, error)
	FindLowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
	Count(ctx context.Context) (int64, error)
}

// CatalogService defines the application service port for products.
type CatalogService interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetAll(ctx context.Context) ([]*domain.Product, error)
	Search(ctx context.Context, term string) ([]*domain.Product, error)
	LowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
	DefaultLowStockThreshold() int
}
