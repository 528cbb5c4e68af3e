// internal/handlers/response.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string         `json:"error"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, ErrorResponse{Error: message})
}

// respondServiceError maps the domain error taxonomy onto HTTP statuses.
// Internal failures are logged and answered with fallback.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	ctx := r.Context()

	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		stockErr      *domain.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{
			Error: validationErr.Error(),
			Field: validationErr.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		respondError(w, logger, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFoundErr):
		respondError(w, logger, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &stockErr):
		respondJSON(w, logger, http.StatusConflict, ErrorResponse{
			Error: stockErr.Error(),
			Details: map[string]any{
				"product_id":   stockErr.ProductID,
				"product_name": stockErr.ProductName,
				"requested":    stockErr.Requested,
				"available":    stockErr.Available,
			},
		})
	case errors.Is(err, context.DeadlineExceeded):
		logger.ErrorContext(ctx, fallback, slog.String("error", err.Error()))
		respondError(w, logger, http.StatusServiceUnavailable, "Request timed out")
	default:
		logger.ErrorContext(ctx, fallback, slog.String("error", err.Error()))
		respondError(w, logger, http.StatusInternalServerError, fallback)
	}
}

// parseID reads a positive int64 path value
func parseID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}
