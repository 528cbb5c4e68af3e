// internal/handlers/sales.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// SalesHandler handles sale commits and ledger queries
type SalesHandler struct {
	ledger    ports.LedgerService
	reporting ports.ReportingService
	logger    *slog.Logger
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(ledger ports.LedgerService, reporting ports.ReportingService, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{
		ledger:    ledger,
		reporting: reporting,
		logger:    logger.With(slog.String("handler", "sales")),
	}
}

// CommitSaleRequest is the body of POST /api/v1/sales
type CommitSaleRequest struct {
	Items []domain.LineRequest `json:"items"`
}

// CommitSale handles POST /api/v1/sales
func (h *SalesHandler) CommitSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CommitSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	sale, err := h.ledger.CommitSale(ctx, req.Items)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to commit sale")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, sale)
}

// ListSales handles GET /api/v1/sales
func (h *SalesHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.reporting.AllSales(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to list sales")
		return
	}

	if sales == nil {
		sales = []*domain.Sale{}
	}
	respondJSON(w, h.logger, http.StatusOK, sales)
}

// SaleItems handles GET /api/v1/sales/{id}/items
func (h *SalesHandler) SaleItems(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	items, err := h.reporting.LineItemsOf(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to load sale items")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, items)
}
