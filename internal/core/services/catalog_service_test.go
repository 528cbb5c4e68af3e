// internal/core/services/catalog_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/flowershop-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/internal/core/services"
	"github.com/ammerola/flowershop-pos/test/helpers"
	"github.com/ammerola/flowershop-pos/test/mocks"
)

type catalogMocks struct {
	repo        *mocks.MockProductRepository
	cache       *mocks.MockCacheRepository
	invalidator *mocks.MockCacheInvalidator
}

func newCatalogService(t *testing.T, cacheTTL time.Duration) (*services.CatalogService, catalogMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := catalogMocks{
		repo:        mocks.NewMockProductRepository(ctrl),
		cache:       mocks.NewMockCacheRepository(ctrl),
		invalidator: mocks.NewMockCacheInvalidator(ctrl),
	}
	svc := services.NewCatalogService(m.repo, m.cache, m.invalidator, services.CatalogOptions{
		LowStockThreshold: 10,
		CacheTTL:          cacheTTL,
	}, helpers.TestLogger())

	return svc, m
}

func TestCatalogService_Create(t *testing.T) {
	tests := []struct {
		name          string
		product       *domain.Product
		setupMocks    func(m catalogMocks)
		expectedID    int64
		expectedError error
		errorContains string
	}{
		{
			name:    "successful_create",
			product: helpers.CreateTestProduct(),
			setupMocks: func(m catalogMocks) {
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, p *domain.Product) error {
						p.ID = 11
						p.CreatedAt = time.Now()
						return nil
					})
				m.invalidator.EXPECT().InvalidateCatalog(gomock.Any()).Return(nil)
			},
			expectedID: 11,
		},
		{
			name: "name_and_price_normalized",
			product: helpers.CreateTestProduct(func(p *domain.Product) {
				p.Name = "  Sunflower  "
				p.Price = decimal.RequireFromString("2.499")
			}),
			setupMocks: func(m catalogMocks) {
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, p *domain.Product) error {
						assert.Equal(t, "Sunflower", p.Name)
						assert.True(t, decimal.RequireFromString("2.50").Equal(p.Price))
						p.ID = 3
						return nil
					})
				m.invalidator.EXPECT().InvalidateCatalog(gomock.Any()).Return(nil)
			},
			expectedID: 3,
		},
		{
			name:          "blank_name_rejected",
			product:       helpers.CreateTestProduct(func(p *domain.Product) { p.Name = "   " }),
			setupMocks:    func(m catalogMocks) {},
			expectedError: domain.ErrValidation,
			errorContains: "name",
		},
		{
			name: "negative_price_rejected",
			product: helpers.CreateTestProduct(func(p *domain.Product) {
				p.Price = decimal.RequireFromString("-0.01")
			}),
			setupMocks:    func(m catalogMocks) {},
			expectedError: domain.ErrValidation,
			errorContains: "price",
		},
		{
			name: "negative_sub_cent_price_rejected",
			product: helpers.CreateTestProduct(func(p *domain.Product) {
				p.Price = decimal.RequireFromString("-0.004")
			}),
			setupMocks:    func(m catalogMocks) {},
			expectedError: domain.ErrValidation,
			errorContains: "price",
		},
		{
			name:          "negative_stock_rejected",
			product:       helpers.CreateTestProduct(func(p *domain.Product) { p.StockQuantity = -1 }),
			setupMocks:    func(m catalogMocks) {},
			expectedError: domain.ErrValidation,
			errorContains: "stock_quantity",
		},
		{
			name:    "repository_error_is_storage_error",
			product: helpers.CreateTestProduct(),
			setupMocks: func(m catalogMocks) {
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(errors.New("database connection failed"))
			},
			expectedError: domain.ErrStorage,
			errorContains: "database connection failed",
		},
		{
			name:    "invalidation_failure_is_ignored",
			product: helpers.CreateTestProduct(),
			setupMocks: func(m catalogMocks) {
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, p *domain.Product) error {
						p.ID = 5
						return nil
					})
				m.invalidator.EXPECT().InvalidateCatalog(gomock.Any()).Return(errors.New("redis down"))
			},
			expectedID: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCatalogService(t, 0)
			tt.setupMocks(m)

			id, err := svc.Create(context.Background(), tt.product)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, id)
			assert.Equal(t, tt.expectedID, tt.product.ID)
		})
	}
}

func TestCatalogService_Update(t *testing.T) {
	tests := []struct {
		name          string
		product       *domain.Product
		setupMocks    func(m catalogMocks)
		expectedError error
	}{
		{
			name:    "successful_update",
			product: helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 4 }),
			setupMocks: func(m catalogMocks) {
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(true, nil)
				m.invalidator.EXPECT().InvalidateCatalog(gomock.Any()).Return(nil)
			},
		},
		{
			name:    "missing_product_is_not_found",
			product: helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 404 }),
			setupMocks: func(m catalogMocks) {
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:          "missing_id_rejected",
			product:       helpers.CreateTestProduct(),
			setupMocks:    func(m catalogMocks) {},
			expectedError: domain.ErrValidation,
		},
		{
			name: "invalid_fields_rejected",
			product: helpers.CreateTestProduct(func(p *domain.Product) {
				p.ID = 4
				p.Name = ""
			}),
			setupMocks:    func(m catalogMocks) {},
			expectedError: domain.ErrValidation,
		},
		{
			name: "negative_sub_cent_price_rejected",
			product: helpers.CreateTestProduct(func(p *domain.Product) {
				p.ID = 4
				p.Price = decimal.RequireFromString("-0.001")
			}),
			setupMocks:    func(m catalogMocks) {},
			expectedError: domain.ErrValidation,
		},
		{
			name:    "repository_error_is_storage_error",
			product: helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 4 }),
			setupMocks: func(m catalogMocks) {
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(false, errors.New("timeout"))
			},
			expectedError: domain.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCatalogService(t, 0)
			tt.setupMocks(m)

			err := svc.Update(context.Background(), tt.product)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCatalogService_Delete_IsIdempotent(t *testing.T) {
	svc, m := newCatalogService(t, 0)
	m.repo.EXPECT().Delete(gomock.Any(), int64(9)).Return(nil).Times(2)
	m.invalidator.EXPECT().InvalidateCatalog(gomock.Any()).Return(nil).Times(2)

	require.NoError(t, svc.Delete(context.Background(), 9))
	require.NoError(t, svc.Delete(context.Background(), 9))
}

func TestCatalogService_GetByID(t *testing.T) {
	svc, m := newCatalogService(t, 0)
	rose := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 1 })

	m.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(rose, nil)
	m.repo.EXPECT().FindByID(gomock.Any(), int64(2)).Return(nil, nil)
	m.repo.EXPECT().FindByID(gomock.Any(), int64(3)).
		Return(nil, &domain.DataCorruptionError{Entity: "product", Column: "price"})

	got, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Same(t, rose, got)

	_, err = svc.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrDataCorruption)
}

func TestCatalogService_LowStock(t *testing.T) {
	svc, m := newCatalogService(t, 0)

	// stocks [0, 5, 6, 3] with threshold 5: the store filters and orders
	empty := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 1; p.StockQuantity = 0 })
	three := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 4; p.StockQuantity = 3 })
	five := helpers.CreateTestProduct(func(p *domain.Product) { p.ID = 2; p.StockQuantity = 5 })
	m.repo.EXPECT().FindLowStock(gomock.Any(), 5).Return([]*domain.Product{empty, three, five}, nil)

	products, err := svc.LowStock(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []int{0, 3, 5}, []int{
		products[0].StockQuantity, products[1].StockQuantity, products[2].StockQuantity,
	})

	_, err = svc.LowStock(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, 10, svc.DefaultLowStockThreshold())
}

func TestCatalogService_GetAll_UsesCache(t *testing.T) {
	t.Run("cache_hit_skips_repository", func(t *testing.T) {
		svc, m := newCatalogService(t, time.Minute)
		m.cache.EXPECT().Get(gomock.Any(), ports.CacheKeyCatalogAll, gomock.Any()).
			DoAndReturn(func(ctx context.Context, key string, dest any) error {
				*(dest.(*[]*domain.Product)) = []*domain.Product{helpers.CreateTestProduct()}
				return nil
			})

		products, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("cache_miss_loads_and_stores", func(t *testing.T) {
		svc, m := newCatalogService(t, time.Minute)
		all := helpers.CreateTestProducts(3)

		m.cache.EXPECT().Get(gomock.Any(), ports.CacheKeyCatalogAll, gomock.Any()).Return(ports.ErrCacheMiss)
		m.cache.EXPECT().IncrementBy(gomock.Any(), ports.CacheKeyCatalogGeneration, int64(0)).
			Return(int64(7), nil).Times(3)
		m.repo.EXPECT().FindAll(gomock.Any()).Return(all, nil)
		m.cache.EXPECT().SetWithTTL(gomock.Any(), ports.CacheKeyCatalogAll, all, time.Minute).Return(nil)

		products, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, all, products)
	})

	t.Run("cache_errors_fall_through", func(t *testing.T) {
		svc, m := newCatalogService(t, time.Minute)

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
		m.cache.EXPECT().IncrementBy(gomock.Any(), gomock.Any(), int64(0)).Return(int64(1), nil).Times(2)
		m.repo.EXPECT().FindAll(gomock.Any()).Return([]*domain.Product{}, nil)
		m.cache.EXPECT().SetWithTTL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("redis down"))

		products, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("unknown_generation_skips_cache_write", func(t *testing.T) {
		svc, m := newCatalogService(t, time.Minute)
		all := helpers.CreateTestProducts(2)

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(ports.ErrCacheMiss)
		m.cache.EXPECT().IncrementBy(gomock.Any(), ports.CacheKeyCatalogGeneration, int64(0)).
			Return(int64(0), errors.New("redis down"))
		m.repo.EXPECT().FindAll(gomock.Any()).Return(all, nil)

		products, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, all, products)
	})

	t.Run("invalidation_during_load_skips_cache_write", func(t *testing.T) {
		svc, m := newCatalogService(t, time.Minute)
		before := helpers.CreateTestProducts(2)

		gomock.InOrder(
			m.cache.EXPECT().Get(gomock.Any(), ports.CacheKeyCatalogAll, gomock.Any()).Return(ports.ErrCacheMiss),
			m.cache.EXPECT().IncrementBy(gomock.Any(), ports.CacheKeyCatalogGeneration, int64(0)).Return(int64(4), nil),
			m.repo.EXPECT().FindAll(gomock.Any()).Return(before, nil),
			// a sale committed after the read bumped the generation
			m.cache.EXPECT().IncrementBy(gomock.Any(), ports.CacheKeyCatalogGeneration, int64(0)).Return(int64(5), nil),
		)

		products, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, before, products)
	})

	t.Run("invalidation_during_write_drops_entry", func(t *testing.T) {
		svc, m := newCatalogService(t, time.Minute)
		before := helpers.CreateTestProducts(2)

		gomock.InOrder(
			m.cache.EXPECT().Get(gomock.Any(), ports.CacheKeyCatalogAll, gomock.Any()).Return(ports.ErrCacheMiss),
			m.cache.EXPECT().IncrementBy(gomock.Any(), ports.CacheKeyCatalogGeneration, int64(0)).Return(int64(4), nil),
			m.repo.EXPECT().FindAll(gomock.Any()).Return(before, nil),
			m.cache.EXPECT().IncrementBy(gomock.Any(), ports.CacheKeyCatalogGeneration, int64(0)).Return(int64(4), nil),
			m.cache.EXPECT().SetWithTTL(gomock.Any(), ports.CacheKeyCatalogAll, before, time.Minute).Return(nil),
			m.cache.EXPECT().IncrementBy(gomock.Any(), ports.CacheKeyCatalogGeneration, int64(0)).Return(int64(5), nil),
			m.cache.EXPECT().Delete(gomock.Any(), ports.CacheKeyCatalogAll).Return(nil),
		)

		_, err := svc.GetAll(context.Background())
		require.NoError(t, err)
	})

	t.Run("disabled_cache_goes_to_repository", func(t *testing.T) {
		svc, m := newCatalogService(t, 0)
		m.repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("boom"))

		_, err := svc.GetAll(context.Background())
		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestCatalogService_Search(t *testing.T) {
	svc, m := newCatalogService(t, 0)
	m.repo.EXPECT().Search(gomock.Any(), "ROSE").
		Return([]*domain.Product{helpers.CreateTestProduct()}, nil)

	products, err := svc.Search(context.Background(), "ROSE")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCatalogService_GetAll_SaleDuringLoadLeavesNoStaleCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, time.Minute, helpers.TestLogger())
	manager := redis_a.NewCacheManager(cache, helpers.TestLogger())

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	svc := services.NewCatalogService(repo, cache, manager, services.CatalogOptions{
		LowStockThreshold: 10,
		CacheTTL:          10 * time.Minute,
	}, helpers.TestLogger())

	before := []*domain.Product{helpers.CreateTestProduct(func(p *domain.Product) {
		p.ID = 1
		p.StockQuantity = 5
	})}
	after := []*domain.Product{helpers.CreateTestProduct(func(p *domain.Product) {
		p.ID = 1
		p.StockQuantity = 2
	})}

	gomock.InOrder(
		repo.EXPECT().FindAll(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]*domain.Product, error) {
			// the ledger commits and invalidates while this read is in flight
			require.NoError(t, manager.InvalidateSales(ctx))
			return before, nil
		}),
		repo.EXPECT().FindAll(gomock.Any()).Return(after, nil),
	)

	products, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, products[0].StockQuantity)
	assert.False(t, mr.Exists(ports.CacheKeyCatalogAll), "list read before the sale must not be cached")

	products, err = svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, products[0].StockQuantity)
	assert.True(t, mr.Exists(ports.CacheKeyCatalogAll))

	products, err = svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, products[0].StockQuantity, "served from cache")
}
