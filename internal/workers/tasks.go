// internal/workers/tasks.go
package workers

import (
	"time"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

const (
	TypeCatalogImport    = "catalog:import"
	TypeSalesExport      = "sales:export"
	TypeDashboardRefresh = "report:dashboard_refresh"
	TypeLowStockAlert    = "stock:low_alert"
	TypeCleanupTempFiles = "cleanup:temp_files"
	TypeCleanupExports   = "cleanup:exports"
)

// JobRetention is how long finished job records stay queryable
const JobRetention = 24 * time.Hour

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ExportFormat is the file type of an asynchronous sales export
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// Valid reports whether f is a supported export format
func (f ExportFormat) Valid() bool {
	return f == ExportCSV || f == ExportXLSX
}

// ContentType returns the MIME type of the exported file
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ImportJobPayload is the payload of a price list import
type ImportJobPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
}

// ImportJobResult is stored on the job when the import finishes
type ImportJobResult struct {
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
	ProcessingTime string   `json:"processing_time"`
}

// ExportJobPayload is the payload of a sales export
type ExportJobPayload struct {
	JobID  string           `json:"job_id"`
	Range  domain.DateRange `json:"range"`
	Format ExportFormat     `json:"format"`
}

// LowStockAlertPayload lists the products that just reached the critical level
type LowStockAlertPayload struct {
	Entries    []domain.LowStockEntry `json:"entries"`
	DetectedAt time.Time              `json:"detected_at"`
}
