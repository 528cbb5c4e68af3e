package redis_a_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/flowershop-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/test/helpers"
)

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	tests := []struct {
		name      string
		key       string
		value     interface{}
		wantError bool
	}{
		{
			name:  "stores_and_retrieves_string",
			key:   "test:string",
			value: "test value",
		},
		{
			name: "stores_and_retrieves_struct",
			key:  "test:struct",
			value: struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}{ID: "123", Name: "Test"},
		},
		{
			name:  "stores_and_retrieves_slice",
			key:   "test:slice",
			value: []string{"item1", "item2", "item3"},
		},
		{
			name: "stores_and_retrieves_map",
			key:  "test:map",
			value: map[string]interface{}{
				"field1": "value1",
				"field2": 123,
				"field3": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set value
			err := cache.Set(ctx, tt.key, tt.value)
			require.NoError(t, err)

			// Get value
			var result interface{}
			if _, ok := tt.value.(string); ok {
				var strResult string
				err = cache.Get(ctx, tt.key, &strResult)
				result = strResult
			} else if _, ok := tt.value.([]string); ok {
				var sliceResult []string
				err = cache.Get(ctx, tt.key, &sliceResult)
				result = sliceResult
			} else {
				// For complex types, unmarshal to json.RawMessage first
				var jsonResult json.RawMessage
				err = cache.Get(ctx, tt.key, &jsonResult)
				require.NoError(t, err)

				expectedJSON, _ := json.Marshal(tt.value)
				assert.JSONEq(t, string(expectedJSON), string(jsonResult))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.value, result)
		})
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	// Set with short TTL
	err := cache.SetWithTTL(ctx, "ttl:test", "value", 100*time.Millisecond)
	require.NoError(t, err)

	// Verify it exists
	var result string
	err = cache.Get(ctx, "ttl:test", &result)
	require.NoError(t, err)
	assert.Equal(t, "value", result)

	// Fast forward time in miniredis
	mr.FastForward(200 * time.Millisecond)

	// Should be expired
	err = cache.Get(ctx, "ttl:test", &result)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	// Set multiple keys
	keys := []string{"del:1", "del:2", "del:3"}
	for _, key := range keys {
		err := cache.Set(ctx, key, "value")
		require.NoError(t, err)
	}

	// Delete keys
	err := cache.Delete(ctx, keys...)
	require.NoError(t, err)

	// Verify all deleted
	for _, key := range keys {
		var result string
		err := cache.Get(ctx, key, &result)
		assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
	}
}

func TestCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	// Set keys with pattern
	keysToDelete := []string{"pattern:1", "pattern:2", "pattern:3"}
	keysToKeep := []string{"other:1", "different:2"}

	for _, key := range append(keysToDelete, keysToKeep...) {
		err := cache.Set(ctx, key, "value")
		require.NoError(t, err)
	}

	// Delete by pattern
	err := cache.DeletePattern(ctx, "pattern:*")
	require.NoError(t, err)

	// Verify pattern keys deleted
	for _, key := range keysToDelete {
		var result string
		err := cache.Get(ctx, key, &result)
		assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
	}

	// Verify other keys still exist
	for _, key := range keysToKeep {
		var result string
		err := cache.Get(ctx, key, &result)
		require.NoError(t, err)
		assert.Equal(t, "value", result)
	}
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	fetchCount := 0
	fetchFunc := func() (interface{}, error) {
		fetchCount++
		return "fetched value", nil
	}

	// First call should fetch
	var result1 string
	err := cache.GetOrSet(ctx, "getorset:test", &result1, fetchFunc, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "fetched value", result1)
	assert.Equal(t, 1, fetchCount)

	// Second call should get from cache
	var result2 string
	err = cache.GetOrSet(ctx, "getorset:test", &result2, fetchFunc, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "fetched value", result2)
	assert.Equal(t, 1, fetchCount) // Should not increment
}

func TestCache_IncrementOperations(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	// Test Increment
	val, err := cache.Increment(ctx, "counter:test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	val, err = cache.Increment(ctx, "counter:test")
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)

	// Test IncrementBy
	val, err = cache.IncrementBy(ctx, "counter:test", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), val)

	val, err = cache.IncrementBy(ctx, "counter:test", -2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), val)

	// Adding zero reads a counter, creating it when absent
	val, err = cache.IncrementBy(ctx, "counter:fresh", 0)
	require.NoError(t, err)
	assert.Zero(t, val)
	assert.True(t, mr.Exists("counter:fresh"))
}

func TestCache_SetNX(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	// First SetNX should succeed
	ok, err := cache.SetNX(ctx, "setnx:test", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second SetNX should fail
	ok, err = cache.SetNX(ctx, "setnx:test", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Verify value is still "first"
	var result string
	err = cache.Get(ctx, "setnx:test", &result)
	require.NoError(t, err)
	assert.Equal(t, "first", result)
}

func TestCache_Get_UndecodableValueIsMiss(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	require.NoError(t, mr.Set("products:all", "{not json"))

	var result []string
	err := cache.Get(ctx, "products:all", &result)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
	assert.False(t, mr.Exists("products:all"), "broken value should be dropped")
}

func TestCache_GetOrSet_FetchError(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())

	fetchErr := errors.New("database unavailable")
	var result string
	err := cache.GetOrSet(ctx, "getorset:failing", &result, func() (interface{}, error) {
		return nil, fetchErr
	}, time.Minute)

	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
	assert.False(t, mr.Exists("getorset:failing"))
}

func TestCache_ConnectionError(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())
	mr.Close()

	var result string
	err := cache.Get(ctx, "any", &result)
	require.Error(t, err)
	assert.NotErrorIs(t, err, redis_a.ErrCacheMiss)

	var cacheErr *redis_a.CacheError
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, "get", cacheErr.Op)
	assert.Equal(t, "any", cacheErr.Key)
}

func seedKeys(t *testing.T, ctx context.Context, cache *redis_a.Cache, keys ...string) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, cache.Set(ctx, key, "cached"))
	}
}

func TestCacheManager_Invalidate(t *testing.T) {
	all := []string{
		"products:all",
		"products:search:rose",
		"dashboard:summary",
		"reports:revenue",
		"job:abc",
	}

	tests := []struct {
		name       string
		invalidate func(ctx context.Context, m *redis_a.CacheManager) error
		removed    []string
		kept       []string
	}{
		{
			name: "catalog_change",
			invalidate: func(ctx context.Context, m *redis_a.CacheManager) error {
				return m.InvalidateCatalog(ctx)
			},
			removed: []string{"products:all", "products:search:rose", "dashboard:summary"},
			kept:    []string{"reports:revenue", "job:abc"},
		},
		{
			name: "sale_committed",
			invalidate: func(ctx context.Context, m *redis_a.CacheManager) error {
				return m.InvalidateSales(ctx)
			},
			removed: []string{"products:all", "products:search:rose", "dashboard:summary", "reports:revenue"},
			kept:    []string{"job:abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())
			manager := redis_a.NewCacheManager(cache, helpers.TestLogger())

			seedKeys(t, ctx, cache, all...)

			require.NoError(t, tt.invalidate(ctx, manager))

			for _, key := range tt.removed {
				assert.False(t, mr.Exists(key), "key should be invalidated: %s", key)
			}
			for _, key := range tt.kept {
				assert.True(t, mr.Exists(key), "key should survive: %s", key)
			}

			generation, err := mr.Get(ports.CacheKeyCatalogGeneration)
			require.NoError(t, err)
			assert.Equal(t, "1", generation, "every invalidation bumps the catalog generation")

			require.NoError(t, tt.invalidate(ctx, manager))
			generation, err = mr.Get(ports.CacheKeyCatalogGeneration)
			require.NoError(t, err)
			assert.Equal(t, "2", generation, "the generation survives its own invalidation")

			stats := manager.GetStats()
			assert.Equal(t, int64(2), stats.Invalidations)
			assert.Zero(t, stats.FailedPatterns)
			assert.False(t, stats.LastInvalidation.IsZero())
		})
	}
}

func TestCacheManager_Invalidate_RedisDown(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())
	manager := redis_a.NewCacheManager(cache, helpers.TestLogger())
	mr.Close()

	err := manager.InvalidateSales(ctx)
	require.Error(t, err)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Invalidations)
	assert.Equal(t, int64(3), stats.FailedPatterns)
}

func TestCacheManager_WarmupCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())
	manager := redis_a.NewCacheManager(cache, helpers.TestLogger())

	warmErr := errors.New("dashboard unavailable")
	err := manager.WarmupCache(ctx,
		func(ctx context.Context) error {
			return cache.Set(ctx, "products:all", []string{"Rose"})
		},
		func(ctx context.Context) error {
			return warmErr
		},
	)

	assert.ErrorIs(t, err, warmErr)
	assert.True(t, mr.Exists("products:all"), "successful warmers still run")
	assert.Equal(t, int64(1), manager.GetStats().Warmups)
}

func TestCache_BuildKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   redis_a.CacheKeyPrefix
		parts    []string
		expected string
	}{
		{
			name:     "products_key",
			prefix:   redis_a.PrefixProducts,
			parts:    []string{"search", "rose"},
			expected: "products:search:rose",
		},
		{
			name:     "dashboard_key",
			prefix:   redis_a.PrefixDashboard,
			parts:    []string{"summary"},
			expected: "dashboard:summary",
		},
		{
			name:     "job_key",
			prefix:   redis_a.PrefixJob,
			parts:    []string{"0b9e"},
			expected: "job:0b9e",
		},
		{
			name:     "no_parts",
			prefix:   redis_a.PrefixReports,
			parts:    []string{},
			expected: "reports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := redis_a.BuildKey(tt.prefix, tt.parts...)
			assert.Equal(t, tt.expected, result)
		})
	}
}
