// internal/adapters/redis_adapter/cache.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// CacheKeyPrefix defines prefixes for different cache types
type CacheKeyPrefix string

const (
	PrefixProducts  CacheKeyPrefix = "products"
	PrefixDashboard CacheKeyPrefix = "dashboard"
	PrefixReports   CacheKeyPrefix = "reports"
	PrefixJob       CacheKeyPrefix = "job"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = ports.ErrCacheMiss

// Cache provides caching functionality with Redis
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Statically assert that *Cache implements the CacheRepository interface.
var _ ports.CacheRepository = (*Cache)(nil)

// NewCache creates a new cache instance
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "cache")),
	}
}

// Set stores a value in cache with default TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with custom TTL
func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &CacheError{Op: "marshal", Key: key, Err: err}
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to set cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return &CacheError{Op: "set", Key: key, Err: err}
	}

	c.logger.DebugContext(ctx, "cache set",
		slog.String("key", key),
		slog.Duration("ttl", ttl))

	return nil
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.DebugContext(ctx, "cache miss", slog.String("key", key))
			return ErrCacheMiss
		}
		c.logger.ErrorContext(ctx, "failed to get cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return &CacheError{Op: "get", Key: key, Err: err}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A value we cannot decode is as good as absent
		c.logger.WarnContext(ctx, "dropping undecodable cache value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		_ = c.client.Del(ctx, key).Err()
		return ErrCacheMiss
	}

	c.logger.DebugContext(ctx, "cache hit", slog.String("key", key))
	return nil
}

// Delete removes keys from cache
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to delete cache",
			slog.Any("keys", keys),
			slog.String("error", err.Error()))
		return &CacheError{Op: "del", Key: keys[0], Err: err}
	}

	c.logger.DebugContext(ctx, "cache deleted", slog.Any("keys", keys))
	return nil
}

// DeletePattern removes all keys matching a pattern
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to scan keys",
			slog.String("pattern", pattern),
			slog.String("error", err.Error()))
		return &CacheError{Op: "scan", Key: pattern, Err: err}
	}

	if len(keys) > 0 {
		return c.Delete(ctx, keys...)
	}

	return nil
}

// GetOrSet retrieves from cache or fetches, stores and returns the value
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{},
	fetch func() (interface{}, error), ttl time.Duration) error {

	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return err
	}

	value, err := fetch()
	if err != nil {
		return fmt.Errorf("fetch error: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return &CacheError{Op: "marshal", Key: key, Err: err}
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		// The fetched value is still good
		c.logger.WarnContext(ctx, "failed to cache value after fetch",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	return json.Unmarshal(data, dest)
}

// Increment increments a counter
func (c *Cache) Increment(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, &CacheError{Op: "incr", Key: key, Err: err}
	}

	return val, nil
}

// IncrementBy increments a counter by a specific amount
func (c *Cache) IncrementBy(ctx context.Context, key string, value int64) (int64, error) {
	val, err := c.client.IncrBy(ctx, key, value).Result()
	if err != nil {
		return 0, &CacheError{Op: "incrby", Key: key, Err: err}
	}

	return val, nil
}

// SetNX sets a key only if it doesn't exist
func (c *Cache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, &CacheError{Op: "marshal", Key: key, Err: err}
	}

	ok, err := c.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return false, &CacheError{Op: "setnx", Key: key, Err: err}
	}

	return ok, nil
}

// BuildKey creates a cache key with prefix
func BuildKey(prefix CacheKeyPrefix, parts ...string) string {
	key := string(prefix)
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

// CacheError represents cache-specific errors
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("redis %s error: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("redis %s error for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// CacheStats holds cache manager statistics
type CacheStats struct {
	Invalidations    int64     `json:"invalidations"`
	FailedPatterns   int64     `json:"failed_patterns"`
	Warmups          int64     `json:"warmups"`
	LastInvalidation time.Time `json:"last_invalidation,omitempty"`
	LastReset        time.Time `json:"last_reset"`
}

// Warmer loads one cached view
type Warmer func(ctx context.Context) error

// CacheManager drops and preloads the cached views of the catalog and ledger
type CacheManager struct {
	cache  ports.CacheRepository
	mu     sync.Mutex
	stats  CacheStats
	logger *slog.Logger
}

var _ ports.CacheInvalidator = (*CacheManager)(nil)

// NewCacheManager creates a new cache manager
func NewCacheManager(cache ports.CacheRepository, logger *slog.Logger) *CacheManager {
	return &CacheManager{
		cache:  cache,
		stats:  CacheStats{LastReset: time.Now()},
		logger: logger.With(slog.String("component", "cache_manager")),
	}
}

// InvalidateCatalog drops product listings and the dashboard
func (m *CacheManager) InvalidateCatalog(ctx context.Context) error {
	return m.invalidate(ctx, ports.CachePatternCatalog, ports.CachePatternDash)
}

// InvalidateSales drops every view derived from the ledger. Stock changed
// too, so product listings go as well.
func (m *CacheManager) InvalidateSales(ctx context.Context) error {
	return m.invalidate(ctx, ports.CachePatternCatalog, ports.CachePatternDash, ports.CachePatternReports)
}

// invalidate bumps the catalog generation before deleting, so a reader
// that loaded products before the bump never caches them afterwards
func (m *CacheManager) invalidate(ctx context.Context, patterns ...string) error {
	var errs []error
	if _, err := m.cache.Increment(ctx, ports.CacheKeyCatalogGeneration); err != nil {
		m.logger.WarnContext(ctx, "failed to bump catalog generation",
			slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, pattern := range patterns {
		if err := m.cache.DeletePattern(ctx, pattern); err != nil {
			m.logger.WarnContext(ctx, "failed to invalidate cache pattern",
				slog.String("pattern", pattern),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	m.stats.Invalidations++
	m.stats.FailedPatterns += int64(len(errs))
	m.stats.LastInvalidation = time.Now()
	m.mu.Unlock()

	return errors.Join(errs...)
}

// WarmupCache runs each warmer, logging failures and returning them joined
func (m *CacheManager) WarmupCache(ctx context.Context, warmers ...Warmer) error {
	m.logger.InfoContext(ctx, "warming up cache", slog.Int("views", len(warmers)))

	var errs []error
	for _, warm := range warmers {
		if err := warm(ctx); err != nil {
			m.logger.WarnContext(ctx, "cache warmup failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	m.stats.Warmups++
	m.mu.Unlock()

	return errors.Join(errs...)
}

// GetStats returns a copy of the manager statistics
func (m *CacheManager) GetStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
