// internal/handlers/import.go
package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/pricelist"
)

// ImportScheduler queues price-list imports
type ImportScheduler interface {
	EnqueueImport(ctx context.Context, filePath, filename string) (*domain.Job, error)
}

// ImportHandler accepts price-list uploads for the catalog
type ImportHandler struct {
	scheduler   ImportScheduler
	logger      *slog.Logger
	maxFileSize int64
	uploadDir   string
}

// NewImportHandler creates a new import handler
func NewImportHandler(scheduler ImportScheduler, logger *slog.Logger, maxFileSize int64, uploadDir string) *ImportHandler {
	return &ImportHandler{
		scheduler:   scheduler,
		logger:      logger.With(slog.String("handler", "import")),
		maxFileSize: maxFileSize,
		uploadDir:   uploadDir,
	}
}

// ImportCatalog handles POST /api/v1/import/catalog with an xlsx or pdf
// price list in the "file" form field
func (h *ImportHandler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	format, err := pricelist.DetectFormat(filename)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.ErrorContext(ctx, "failed to create upload directory",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to prepare upload")
		return
	}

	tempFile := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filename))
	if err := saveUpload(tempFile, file); err != nil {
		h.logger.ErrorContext(ctx, "failed to save upload",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	job, err := h.scheduler.EnqueueImport(ctx, tempFile, filename)
	if err != nil {
		os.Remove(tempFile)
		respondServiceError(w, r, h.logger, err, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "price list import queued",
		slog.String("job_id", job.ID),
		slog.String("format", string(format)),
		slog.String("filename", filename))

	respondJSON(w, h.logger, http.StatusAccepted, map[string]interface{}{
		"job_id":     job.ID,
		"status":     job.Status,
		"status_url": "/api/v1/import/jobs/" + job.ID,
		"message":    "Price list import has been queued for processing",
	})
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return nil
}
