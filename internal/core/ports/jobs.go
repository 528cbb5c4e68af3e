// internal/core/ports/jobs.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// TaskEnqueuer is the subset of *asynq.Client used to schedule background work.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobRepository tracks the status of background jobs.
type JobRepository interface {
	Save(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
}

// FileStorage stores generated files outside the process.
type FileStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
}

// StockAlerter notifies staff about products that ran critically low.
type StockAlerter interface {
	AlertLowStock(ctx context.Context, entries []domain.LowStockEntry) error
}
