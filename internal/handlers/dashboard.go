// internal/handlers/dashboard.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// ReportHandler serves the dashboard and the read-only reports
type ReportHandler struct {
	reporting         ports.ReportingService
	lowStockThreshold int
	logger            *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reporting ports.ReportingService, lowStockThreshold int, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reporting:         reporting,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.With(slog.String("handler", "report")),
	}
}

// RevenueReport is the body of GET /api/v1/reports/revenue
type RevenueReport struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AverageSale  decimal.Decimal `json:"average_sale"`
}

// GetDashboard handles GET /api/v1/dashboard
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reporting.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to load dashboard")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, summary)
}

// Revenue handles GET /api/v1/reports/revenue
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.reporting.TotalRevenue(ctx)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to compute revenue")
		return
	}

	average, err := h.reporting.AverageSale(ctx)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to compute revenue")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, RevenueReport{
		TotalRevenue: total.Round(2),
		AverageSale:  average,
	})
}

// LowStockReport handles GET /api/v1/reports/low-stock?threshold=
func (h *ReportHandler) LowStockReport(w http.ResponseWriter, r *http.Request) {
	threshold, err := thresholdParam(r, h.lowStockThreshold)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	entries, err := h.reporting.LowStockReport(r.Context(), threshold)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to build low stock report")
		return
	}

	if entries == nil {
		entries = []domain.LowStockEntry{}
	}
	respondJSON(w, h.logger, http.StatusOK, entries)
}
