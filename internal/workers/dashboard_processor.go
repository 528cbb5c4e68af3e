// internal/workers/dashboard_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// DashboardProcessor rebuilds the cached dashboard
type DashboardProcessor struct {
	reporting ports.ReportingService
	cache     ports.CacheRepository
	logger    *slog.Logger
}

// NewDashboardProcessor creates a new dashboard processor
func NewDashboardProcessor(reporting ports.ReportingService, cache ports.CacheRepository, logger *slog.Logger) *DashboardProcessor {
	return &DashboardProcessor{
		reporting: reporting,
		cache:     cache,
		logger:    logger.With(slog.String("processor", "dashboard")),
	}
}

// RefreshDashboard drops the cached summary and builds a fresh one
func (p *DashboardProcessor) RefreshDashboard(ctx context.Context, _ *asynq.Task) error {
	if err := p.cache.Delete(ctx, ports.CacheKeyDashboard); err != nil {
		p.logger.WarnContext(ctx, "failed to drop cached dashboard",
			slog.String("error", err.Error()))
	}

	summary, err := p.reporting.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild dashboard: %w", err)
	}

	p.logger.InfoContext(ctx, "dashboard refreshed",
		slog.Int64("products", summary.ProductCount),
		slog.Int64("sales", summary.SaleCount),
		slog.Int("critical", summary.CriticalStockCount))

	return nil
}
