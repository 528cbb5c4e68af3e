// internal/handlers/jobs.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// JobHandler reports the status of background jobs
type JobHandler struct {
	jobs   ports.JobRepository
	logger *slog.Logger
}

// NewJobHandler creates a new job status handler
func NewJobHandler(jobs ports.JobRepository, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger.With(slog.String("handler", "jobs")),
	}
}

// Status returns a handler for GET .../jobs/{id} that only reports jobs of
// the given task type
func (h *JobHandler) Status(taskType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			respondError(w, h.logger, http.StatusBadRequest, "Job ID is required")
			return
		}

		job, err := h.jobs.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, h.logger, err, "Failed to load job status")
			return
		}

		if job == nil || job.Type != taskType {
			respondError(w, h.logger, http.StatusNotFound, "Job not found")
			return
		}

		respondJSON(w, h.logger, http.StatusOK, job)
	}
}
