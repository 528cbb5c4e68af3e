// internal/adapters/redis_adapter/jobs.go
package redis_a

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// DefaultJobRetention is how long finished job records stay readable
const DefaultJobRetention = 24 * time.Hour

// JobStore keeps background job status in Redis
type JobStore struct {
	cache     ports.CacheRepository
	retention time.Duration
	logger    *slog.Logger
}

var _ ports.JobRepository = (*JobStore)(nil)

// NewJobStore creates a job status store on top of the cache
func NewJobStore(cache ports.CacheRepository, retention time.Duration, logger *slog.Logger) *JobStore {
	if retention <= 0 {
		retention = DefaultJobRetention
	}
	return &JobStore{
		cache:     cache,
		retention: retention,
		logger:    logger.With(slog.String("repository", "job")),
	}
}

// Save writes the job record, stamping its timestamps
func (s *JobStore) Save(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		return domain.NewValidationError("job_id", "is required")
	}

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	if err := s.cache.SetWithTTL(ctx, BuildKey(PrefixJob, job.ID), job, s.retention); err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}

	s.logger.DebugContext(ctx, "job saved",
		slog.String("job_id", job.ID),
		slog.String("status", string(job.Status)))

	return nil
}

// Get returns nil when the job is unknown or expired
func (s *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := s.cache.Get(ctx, BuildKey(PrefixJob, id), &job); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return &job, nil
}
