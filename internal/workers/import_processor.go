// internal/workers/import_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/internal/pricelist"
)

// ImportProcessor turns uploaded price lists into catalog products
type ImportProcessor struct {
	catalog   ports.CatalogService
	status    jobStatus
	uploadDir string
	logger    *slog.Logger
}

// NewImportProcessor creates a new import processor. Files inside uploadDir
// are removed once processed.
func NewImportProcessor(catalog ports.CatalogService, jobs ports.JobRepository, uploadDir string, logger *slog.Logger) *ImportProcessor {
	logger = logger.With(slog.String("processor", "import"))
	return &ImportProcessor{
		catalog:   catalog,
		status:    jobStatus{jobs: jobs, logger: logger},
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// ProcessImport parses the price list and creates one product per row
func (p *ImportProcessor) ProcessImport(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ImportJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing price list",
		slog.String("job_id", payload.JobID),
		slog.String("filename", payload.Filename))

	job := p.status.load(ctx, payload.JobID, TypeCatalogImport)
	p.status.processing(ctx, job)

	parsed, err := pricelist.ParseFile(payload.FilePath)
	if err != nil {
		p.status.failed(ctx, job, err)
		p.removeUpload(ctx, payload.FilePath)
		return fmt.Errorf("failed to parse price list: %w: %w", err, asynq.SkipRetry)
	}

	result := ImportJobResult{Skipped: len(parsed.Skipped)}
	for _, row := range parsed.Skipped {
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", row.Row, row.Reason))
	}

	for _, product := range parsed.Products {
		if err := ctx.Err(); err != nil {
			return p.abort(ctx, job, payload.FilePath, result, fmt.Errorf("import interrupted: %w", err))
		}

		if _, err := p.catalog.Create(ctx, product); err != nil {
			if errors.Is(err, domain.ErrStorage) {
				return p.abort(ctx, job, payload.FilePath, result,
					fmt.Errorf("failed to create product %q: %w", product.Name, err))
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", product.Name, err))
			continue
		}
		result.Created++
	}

	result.ProcessingTime = time.Since(start).String()
	p.status.completed(ctx, job, result)
	p.removeUpload(ctx, payload.FilePath)

	p.logger.InfoContext(ctx, "price list imported",
		slog.String("job_id", payload.JobID),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped))

	return nil
}

// abort fails an import that stopped partway. Products created so far
// stay in the catalog and a retry would create them again, so the task is
// retried only when nothing was created yet.
func (p *ImportProcessor) abort(ctx context.Context, job *domain.Job, path string, result ImportJobResult, err error) error {
	// the task context may already be cancelled
	ctx = context.WithoutCancel(ctx)
	p.status.failedWith(ctx, job, err, result)

	if result.Created == 0 {
		return err
	}

	p.logger.WarnContext(ctx, "price list partly imported",
		slog.String("job_id", job.ID),
		slog.Int("created", result.Created),
		slog.String("error", err.Error()))
	p.removeUpload(ctx, path)
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}

func (p *ImportProcessor) removeUpload(ctx context.Context, path string) {
	if p.uploadDir == "" {
		return
	}
	rel, err := filepath.Rel(p.uploadDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.WarnContext(ctx, "failed to remove uploaded file",
			slog.String("file", path),
			slog.String("error", err.Error()))
	}
}
