// internal/workers/job_status.go
package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// jobStatus writes progress of a tracked job. Failures to record status are
// logged and never fail the task itself.
type jobStatus struct {
	jobs   ports.JobRepository
	logger *slog.Logger
}

func (s jobStatus) load(ctx context.Context, id, taskType string) *domain.Job {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load job",
			slog.String("job_id", id),
			slog.String("error", err.Error()))
	}
	if job == nil {
		job = &domain.Job{ID: id, Type: taskType}
	}
	return job
}

func (s jobStatus) processing(ctx context.Context, job *domain.Job) {
	job.Status = domain.JobProcessing
	s.save(ctx, job)
}

func (s jobStatus) completed(ctx context.Context, job *domain.Job, result any) {
	job.Status = domain.JobCompleted
	job.Error = ""
	job.Result = toResultMap(result)
	s.save(ctx, job)
}

func (s jobStatus) failed(ctx context.Context, job *domain.Job, err error) {
	job.Status = domain.JobFailed
	job.Error = err.Error()
	s.save(ctx, job)
}

// failedWith records a failure together with the partial result
func (s jobStatus) failedWith(ctx context.Context, job *domain.Job, err error, result any) {
	job.Result = toResultMap(result)
	s.failed(ctx, job, err)
}

func (s jobStatus) save(ctx context.Context, job *domain.Job) {
	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.WarnContext(ctx, "failed to update job status",
			slog.String("job_id", job.ID),
			slog.String("status", string(job.Status)),
			slog.String("error", err.Error()))
	}
}

func toResultMap(result any) map[string]interface{} {
	b, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
