// internal/workers/scheduler.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// Scheduler records background jobs and hands them to the asynq queue
type Scheduler struct {
	client    ports.TaskEnqueuer
	jobs      ports.JobRepository
	maxRetry  int
	retention time.Duration
	logger    *slog.Logger

	alerts        ports.CacheRepository
	alertCooldown time.Duration
}

var _ ports.StockAlerter = (*Scheduler)(nil)

// NewScheduler creates a new task scheduler
func NewScheduler(client ports.TaskEnqueuer, jobs ports.JobRepository, maxRetry int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		client:    client,
		jobs:      jobs,
		maxRetry:  maxRetry,
		retention: 24 * time.Hour,
		logger:    logger.With(slog.String("component", "scheduler")),
	}
}

// WithAlertCooldown makes AlertLowStock skip products already alerted on
// within window
func (s *Scheduler) WithAlertCooldown(cache ports.CacheRepository, window time.Duration) *Scheduler {
	s.alerts = cache
	s.alertCooldown = window
	return s
}

// EnqueueImport queues a price list that was saved to filePath
func (s *Scheduler) EnqueueImport(ctx context.Context, filePath, filename string) (*domain.Job, error) {
	job := newJob(TypeCatalogImport)
	payload := ImportJobPayload{JobID: job.ID, FilePath: filePath, Filename: filename}
	return s.enqueueJob(ctx, job, payload, asynq.Queue(QueueDefault))
}

// EnqueueExport queues a sales export of the given range
func (s *Scheduler) EnqueueExport(ctx context.Context, r domain.DateRange, format ExportFormat) (*domain.Job, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !format.Valid() {
		return nil, domain.NewValidationError("format", fmt.Sprintf("unsupported export format %q", format))
	}

	job := newJob(TypeSalesExport)
	payload := ExportJobPayload{JobID: job.ID, Range: r, Format: format}
	return s.enqueueJob(ctx, job, payload, asynq.Queue(QueueLow))
}

// EnqueueDashboardRefresh rebuilds the cached dashboard in the background.
// Duplicates within a minute collapse into one task.
func (s *Scheduler) EnqueueDashboardRefresh(ctx context.Context) error {
	task := asynq.NewTask(TypeDashboardRefresh, nil)
	_, err := s.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueLow),
		asynq.Unique(time.Minute))
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return fmt.Errorf("failed to enqueue dashboard refresh: %w", err)
	}
	return nil
}

// AlertLowStock queues a notification about products at the critical level
func (s *Scheduler) AlertLowStock(ctx context.Context, entries []domain.LowStockEntry) error {
	entries = s.dueAlerts(ctx, entries)
	if len(entries) == 0 {
		return nil
	}

	b, err := json.Marshal(LowStockAlertPayload{Entries: entries, DetectedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal low stock alert: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, asynq.NewTask(TypeLowStockAlert, b),
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(s.maxRetry))
	if err != nil {
		return fmt.Errorf("failed to enqueue low stock alert: %w", err)
	}

	s.logger.InfoContext(ctx, "low stock alert queued",
		slog.String("task_id", info.ID),
		slog.Int("products", len(entries)))

	return nil
}

// dueAlerts drops entries whose product is still cooling down. The
// cooldown key is claimed with SET NX, so concurrent sales of the same
// product alert once. Entries are kept when the cache is unreachable.
func (s *Scheduler) dueAlerts(ctx context.Context, entries []domain.LowStockEntry) []domain.LowStockEntry {
	if s.alerts == nil || s.alertCooldown <= 0 {
		return entries
	}

	due := entries[:0:0]
	for _, e := range entries {
		key := fmt.Sprintf("%s:%d", ports.CacheKeyLowStockAlert, e.Product.ID)
		claimed, err := s.alerts.SetNX(ctx, key, e.Product.StockQuantity, s.alertCooldown)
		if err != nil {
			s.logger.WarnContext(ctx, "alert cooldown check failed",
				slog.Int64("product_id", e.Product.ID),
				slog.String("error", err.Error()))
			claimed = true
		}
		if claimed {
			due = append(due, e)
		}
	}

	if skipped := len(entries) - len(due); skipped > 0 {
		s.logger.DebugContext(ctx, "low stock alerts suppressed", slog.Int("products", skipped))
	}
	return due
}

func (s *Scheduler) enqueueJob(ctx context.Context, job *domain.Job, payload any, opts ...asynq.Option) (*domain.Job, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", job.Type, err)
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	opts = append(opts,
		asynq.TaskID(job.ID),
		asynq.MaxRetry(s.maxRetry),
		asynq.Retention(s.retention))

	info, err := s.client.EnqueueContext(ctx, asynq.NewTask(job.Type, b), opts...)
	if err != nil {
		job.Status = domain.JobFailed
		job.Error = "failed to queue job"
		if saveErr := s.jobs.Save(ctx, job); saveErr != nil {
			s.logger.WarnContext(ctx, "failed to mark job as failed",
				slog.String("job_id", job.ID),
				slog.String("error", saveErr.Error()))
		}
		return nil, fmt.Errorf("failed to enqueue %s: %w", job.Type, err)
	}

	s.logger.InfoContext(ctx, "job queued",
		slog.String("job_id", job.ID),
		slog.String("type", job.Type),
		slog.String("queue", info.Queue))

	return job, nil
}

func newJob(taskType string) *domain.Job {
	return &domain.Job{
		ID:     uuid.New().String(),
		Type:   taskType,
		Status: domain.JobPending,
	}
}
