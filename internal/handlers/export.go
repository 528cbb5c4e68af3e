// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/internal/workers"
)

const dateOnlyLayout = "2006-01-02"

// ExportScheduler queues asynchronous sales exports
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, r domain.DateRange, format workers.ExportFormat) (*domain.Job, error)
}

// ExportHandler serves sales exports, either inline or as background jobs
type ExportHandler struct {
	reporting ports.ReportingService
	scheduler ExportScheduler
	location  *time.Location
	logger    *slog.Logger
}

// NewExportHandler creates a new export handler. Date-only bounds are read
// in location.
func NewExportHandler(reporting ports.ReportingService, scheduler ExportScheduler, location *time.Location, logger *slog.Logger) *ExportHandler {
	if location == nil {
		location = time.UTC
	}
	return &ExportHandler{
		reporting: reporting,
		scheduler: scheduler,
		location:  location,
		logger:    logger.With(slog.String("handler", "export")),
	}
}

// ExportCSV handles GET /api/v1/export/sales.csv?from=&to=
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, workers.ExportCSV, h.reporting.WriteSalesCSV)
}

// ExportXLSX handles GET /api/v1/export/sales.xlsx?from=&to=
func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, workers.ExportXLSX, h.reporting.WriteSalesXLSX)
}

type salesWriter func(ctx context.Context, w io.Writer, r domain.DateRange) (int, error)

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, format workers.ExportFormat, write salesWriter) {
	ctx := r.Context()

	dateRange, err := ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), h.location)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	// Buffer the file so a failure can still be answered with a JSON error
	var buf bytes.Buffer
	rows, err := write(ctx, &buf, dateRange)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to export sales")
		return
	}

	filename := fmt.Sprintf("sales_export_%s.%s", time.Now().In(h.location).Format("20060102_150405"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("X-Export-Rows", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write export response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "sales export completed",
		slog.String("format", string(format)),
		slog.Int("rows", rows),
		slog.String("filename", filename))
}

// StartExportRequest is the body of POST /api/v1/export/sales
type StartExportRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Format string `json:"format"`
}

// StartExport handles POST /api/v1/export/sales
func (h *ExportHandler) StartExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req StartExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	dateRange, err := ParseDateRange(req.From, req.To, h.location)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	format := workers.ExportFormat(req.Format)
	if format == "" {
		format = workers.ExportCSV
	}

	job, err := h.scheduler.EnqueueExport(ctx, dateRange, format)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to queue export job")
		return
	}

	respondJSON(w, h.logger, http.StatusAccepted, map[string]interface{}{
		"job_id":     job.ID,
		"status":     job.Status,
		"status_url": "/api/v1/export/jobs/" + job.ID,
	})
}

// ParseDateRange reads optional from/to bounds given as YYYY-MM-DD or
// RFC3339. A date-only upper bound covers the whole day.
func ParseDateRange(from, to string, loc *time.Location) (domain.DateRange, error) {
	var r domain.DateRange

	if from != "" {
		start, _, err := parseBound(from, loc)
		if err != nil {
			return r, domain.NewValidationError("from", err.Error())
		}
		r.Start = &start
	}

	if to != "" {
		end, dateOnly, err := parseBound(to, loc)
		if err != nil {
			return r, domain.NewValidationError("to", err.Error())
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		r.End = &end
	}

	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

func parseBound(value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateOnlyLayout, value, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", value)
}
