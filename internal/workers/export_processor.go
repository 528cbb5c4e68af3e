// internal/workers/export_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// ExportKeyDateLayout is the day directory exports are grouped under
const ExportKeyDateLayout = "2006-01-02"

// ExportJobResult is stored on the job when the export finishes
type ExportJobResult struct {
	Rows     int    `json:"rows"`
	Key      string `json:"key"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// ExportProcessor writes sales exports and uploads them to file storage
type ExportProcessor struct {
	reporting ports.ReportingService
	storage   ports.FileStorage
	status    jobStatus
	prefix    string
	urlTTL    time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(
	reporting ports.ReportingService,
	storage ports.FileStorage,
	jobs ports.JobRepository,
	prefix string,
	logger *slog.Logger,
) *ExportProcessor {
	logger = logger.With(slog.String("processor", "export"))
	return &ExportProcessor{
		reporting: reporting,
		storage:   storage,
		status:    jobStatus{jobs: jobs, logger: logger},
		prefix:    prefix,
		urlTTL:    24 * time.Hour,
		now:       time.Now,
		logger:    logger,
	}
}

// ExportKey returns the storage key of a job's export file
func ExportKey(prefix string, day time.Time, jobID string, format ExportFormat) string {
	return path.Join(prefix, day.UTC().Format(ExportKeyDateLayout), jobID+"."+string(format))
}

// ProcessExport renders the requested sales and uploads the file
func (p *ExportProcessor) ProcessExport(ctx context.Context, t *asynq.Task) error {
	var payload ExportJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "exporting sales",
		slog.String("job_id", payload.JobID),
		slog.String("format", string(payload.Format)))

	job := p.status.load(ctx, payload.JobID, TypeSalesExport)
	p.status.processing(ctx, job)

	result, err := p.export(ctx, payload)
	if err != nil {
		p.status.failed(ctx, job, err)
		if errors.Is(err, domain.ErrValidation) {
			return fmt.Errorf("invalid export request: %w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	p.status.completed(ctx, job, result)

	p.logger.InfoContext(ctx, "sales export uploaded",
		slog.String("job_id", payload.JobID),
		slog.String("key", result.Key),
		slog.Int("rows", result.Rows))

	return nil
}

func (p *ExportProcessor) export(ctx context.Context, payload ExportJobPayload) (*ExportJobResult, error) {
	var (
		buf  bytes.Buffer
		rows int
		err  error
	)

	switch payload.Format {
	case ExportCSV:
		rows, err = p.reporting.WriteSalesCSV(ctx, &buf, payload.Range)
	case ExportXLSX:
		rows, err = p.reporting.WriteSalesXLSX(ctx, &buf, payload.Range)
	default:
		err = domain.NewValidationError("format", fmt.Sprintf("unsupported export format %q", payload.Format))
	}
	if err != nil {
		return nil, err
	}

	key := ExportKey(p.prefix, p.now(), payload.JobID, payload.Format)
	location, err := p.storage.Upload(ctx, key, &buf, payload.Format.ContentType())
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := p.storage.GetPresignedURL(ctx, key, p.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export URL: %w", err)
	}

	return &ExportJobResult{Rows: rows, Key: key, Location: location, URL: url}, nil
}
