// internal/core/services/catalog.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// CatalogOptions tunes the catalog service
type CatalogOptions struct {
	LowStockThreshold int
	CacheTTL          time.Duration
}

// CatalogService handles product catalog business logic
type CatalogService struct {
	repo        ports.ProductRepository
	cache       ports.CacheRepository
	invalidator ports.CacheInvalidator
	opts        CatalogOptions
	logger      *slog.Logger
}

// Statically assert that *CatalogService implements the CatalogService interface.
var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service. cache and invalidator
// may be nil.
func NewCatalogService(
	repo ports.ProductRepository,
	cache ports.CacheRepository,
	invalidator ports.CacheInvalidator,
	opts CatalogOptions,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		repo:        repo,
		cache:       cache,
		invalidator: invalidator,
		opts:        opts,
		logger:      logger.With(slog.String("service", "catalog")),
	}
}

// Create validates and stores a new product, returning its id
func (s *CatalogService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	if err := product.Validate(); err != nil {
		return 0, err
	}
	product.Normalize()

	if err := s.repo.Create(ctx, product); err != nil {
		return 0, domain.AsStorageError("create product", err)
	}

	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name),
		slog.Int("stock", product.StockQuantity))

	return product.ID, nil
}

// Update overwrites every mutable field of an existing product
func (s *CatalogService) Update(ctx context.Context, product *domain.Product) error {
	if product.ID <= 0 {
		return domain.NewValidationError("id", "must be positive")
	}

	if err := product.Validate(); err != nil {
		return err
	}
	product.Normalize()

	found, err := s.repo.Update(ctx, product)
	if err != nil {
		return domain.AsStorageError("update product", err)
	}
	if !found {
		return &domain.NotFoundError{Entity: "product", ID: product.ID}
	}

	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
		slog.String("price", product.Price.StringFixed(2)),
		slog.Int("stock", product.StockQuantity))

	return nil
}

// Delete removes a product. Past sale lines keep their snapshots.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.AsStorageError("delete product", err)
	}

	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	return nil
}

// GetByID returns the product or a NotFoundError
func (s *CatalogService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.AsStorageError("get product", err)
	}
	if product == nil {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	return product, nil
}

// GetAll returns the whole catalog ordered by name
func (s *CatalogService) GetAll(ctx context.Context) ([]*domain.Product, error) {
	caching := s.cache != nil && s.opts.CacheTTL > 0

	var generation int64
	if caching {
		var cached []*domain.Product
		err := s.cache.Get(ctx, ports.CacheKeyCatalogAll, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "catalog cache read failed",
				slog.String("error", err.Error()))
		}

		generation, err = s.catalogGeneration(ctx)
		if err != nil {
			caching = false
		}
	}

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, domain.AsStorageError("list products", err)
	}

	if caching {
		s.storeCatalog(ctx, products, generation)
	}

	return products, nil
}

// storeCatalog caches products read at generation. A list read before an
// invalidation is never left in the cache: the write is skipped when the
// generation already moved, and undone when it moves during the write.
func (s *CatalogService) storeCatalog(ctx context.Context, products []*domain.Product, generation int64) {
	if current, err := s.catalogGeneration(ctx); err != nil || current != generation {
		return
	}

	if err := s.cache.SetWithTTL(ctx, ports.CacheKeyCatalogAll, products, s.opts.CacheTTL); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("error", err.Error()))
		return
	}

	if current, err := s.catalogGeneration(ctx); err != nil || current != generation {
		if err := s.cache.Delete(ctx, ports.CacheKeyCatalogAll); err != nil {
			s.logger.WarnContext(ctx, "failed to drop stale catalog cache",
				slog.String("error", err.Error()))
		}
	}
}

// catalogGeneration reads the invalidation counter. Adding zero creates it
// on first use.
func (s *CatalogService) catalogGeneration(ctx context.Context) (int64, error) {
	generation, err := s.cache.IncrementBy(ctx, ports.CacheKeyCatalogGeneration, 0)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog generation read failed",
			slog.String("error", err.Error()))
	}
	return generation, err
}

// Search matches term case-insensitively anywhere in the product name.
// An empty term returns the whole catalog.
func (s *CatalogService) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	products, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, domain.AsStorageError("search products", err)
	}
	return products, nil
}

// LowStock returns products whose stock is at or below threshold,
// least stocked first
func (s *CatalogService) LowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	if threshold < 0 {
		return nil, domain.NewValidationError("threshold", "cannot be negative")
	}

	products, err := s.repo.FindLowStock(ctx, threshold)
	if err != nil {
		return nil, domain.AsStorageError("list low stock", err)
	}
	return products, nil
}

// DefaultLowStockThreshold is the threshold callers use when none is given
func (s *CatalogService) DefaultLowStockThreshold() int {
	return s.opts.LowStockThreshold
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateCatalog(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate catalog cache",
			slog.String("error", err.Error()))
	}
}
