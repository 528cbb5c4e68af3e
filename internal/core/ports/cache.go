// internal/core/ports/cache.go
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// Cache keys shared by the services and the cache manager
const (
	CacheKeyCatalogAll  = "products:all"
	CacheKeyDashboard   = "dashboard:summary"
	CacheKeyRevenue     = "reports:revenue"
	CachePatternCatalog = "products:*"
	CachePatternDash    = "dashboard:*"
	CachePatternReports = "reports:*"
)

// CacheKeyCatalogGeneration counts catalog invalidations. It matches no
// invalidation pattern, so it only ever grows.
const CacheKeyCatalogGeneration = "generation:catalog"

// CacheKeyLowStockAlert prefixes the per product low stock alert cooldowns
const CacheKeyLowStockAlert = "alerts:low_stock"

// CacheRepository defines the interface for cache operations
type CacheRepository interface {
	// Basic operations
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// Advanced operations
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	// Counter operations
	Increment(ctx context.Context, key string) (int64, error)
	IncrementBy(ctx context.Context, key string, value int64) (int64, error)

	// Conditional operations
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

// CacheInvalidator drops cached views after writes.
type CacheInvalidator interface {
	// InvalidateCatalog drops product listings and the dashboard.
	InvalidateCatalog(ctx context.Context) error
	// InvalidateSales drops everything derived from the ledger, including
	// product listings whose stock changed.
	InvalidateSales(ctx context.Context) error
}
