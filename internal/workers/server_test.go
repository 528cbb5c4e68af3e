// internal/workers/server_test.go
package workers_test

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/internal/pkg/logger"
	"github.com/ammerola/flowershop-pos/internal/workers"
	"github.com/ammerola/flowershop-pos/test/helpers"
	"github.com/ammerola/flowershop-pos/test/mocks"
)

func TestNewServeMux_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporting := mocks.NewMockReportingService(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	cache.EXPECT().Delete(gomock.Any(), ports.CacheKeyDashboard).Return(nil)
	reporting.EXPECT().Dashboard(gomock.Any()).Return(&domain.DashboardSummary{}, nil)

	mux := workers.NewServeMux(workers.Processors{
		Dashboard:     workers.NewDashboardProcessor(reporting, cache, helpers.TestLogger()),
		Notifications: workers.NewNotificationProcessor(workers.NotificationConfig{DryRun: true}, helpers.TestLogger()),
	}, helpers.TestLogger())

	ctx := context.Background()
	require.NoError(t, mux.ProcessTask(ctx, asynq.NewTask(workers.TypeDashboardRefresh, nil)))
	require.NoError(t, mux.ProcessTask(ctx, alertTask(t, nil)))

	// import processor was not registered
	assert.Error(t, mux.ProcessTask(ctx, asynq.NewTask(workers.TypeCatalogImport, []byte("{}"))))
}

func TestLoggingMiddleware(t *testing.T) {
	var gotType any
	handler := workers.LoggingMiddleware(helpers.TestLogger())(asynq.HandlerFunc(
		func(ctx context.Context, task *asynq.Task) error {
			gotType = ctx.Value(logger.ContextKeyTaskType)
			return nil
		}))

	require.NoError(t, handler.ProcessTask(context.Background(), asynq.NewTask(workers.TypeCleanupExports, nil)))
	assert.Equal(t, workers.TypeCleanupExports, gotType)
}
