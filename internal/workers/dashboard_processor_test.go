// internal/workers/dashboard_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/internal/workers"
	"github.com/ammerola/flowershop-pos/test/helpers"
	"github.com/ammerola/flowershop-pos/test/mocks"
)

func TestDashboardProcessor_RefreshDashboard(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockReportingService, *mocks.MockCacheRepository)
		expectedError bool
	}{
		{
			name: "rebuilds_summary",
			setupMocks: func(r *mocks.MockReportingService, c *mocks.MockCacheRepository) {
				gomock.InOrder(
					c.EXPECT().Delete(gomock.Any(), ports.CacheKeyDashboard).Return(nil),
					r.EXPECT().Dashboard(gomock.Any()).Return(&domain.DashboardSummary{ProductCount: 4}, nil),
				)
			},
		},
		{
			name: "cache_failure_is_tolerated",
			setupMocks: func(r *mocks.MockReportingService, c *mocks.MockCacheRepository) {
				c.EXPECT().Delete(gomock.Any(), ports.CacheKeyDashboard).Return(errors.New("redis down"))
				r.EXPECT().Dashboard(gomock.Any()).Return(&domain.DashboardSummary{}, nil)
			},
		},
		{
			name: "reporting_failure",
			setupMocks: func(r *mocks.MockReportingService, c *mocks.MockCacheRepository) {
				c.EXPECT().Delete(gomock.Any(), ports.CacheKeyDashboard).Return(nil)
				r.EXPECT().Dashboard(gomock.Any()).
					Return(nil, &domain.StorageError{Op: "dashboard", Err: errors.New("db down")})
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reporting := mocks.NewMockReportingService(ctrl)
			cache := mocks.NewMockCacheRepository(ctrl)
			tt.setupMocks(reporting, cache)

			processor := workers.NewDashboardProcessor(reporting, cache, helpers.TestLogger())
			err := processor.RefreshDashboard(context.Background(), nil)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrStorage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
