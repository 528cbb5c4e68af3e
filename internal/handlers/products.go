// internal/handlers/products.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	service ports.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ports.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "product")),
	}
}

// ListProducts handles GET /api/v1/products?q=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		products []*domain.Product
		err      error
	)
	if term := r.URL.Query().Get("q"); term != "" {
		products, err = h.service.Search(ctx, term)
	} else {
		products, err = h.service.GetAll(ctx)
	}
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to list products")
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, h.logger, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to retrieve product")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	product := req.ToDomain()
	if _, err := h.service.Create(ctx, product); err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to create product")
		return
	}

	h.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name))

	respondJSON(w, h.logger, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	product := req.ToDomain()
	product.ID = id
	if err := h.service.Update(ctx, product); err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to update product")
		return
	}

	updated, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to reload updated product",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()))
		respondJSON(w, h.logger, http.StatusOK, product)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/v1/products/{id}. Deleting a missing
// product succeeds.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to delete product")
		return
	}

	h.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// LowStock handles GET /api/v1/products/low-stock?threshold=
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := thresholdParam(r, h.service.DefaultLowStockThreshold())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "")
		return
	}

	products, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to list low stock products")
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, h.logger, http.StatusOK, products)
}

func thresholdParam(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("threshold")
	if raw == "" {
		return fallback, nil
	}
	threshold, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("threshold", "must be an integer")
	}
	return threshold, nil
}

// ProductRequest is the body of product create and update requests
type ProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Category      string          `json:"category,omitempty"`
}

// ToDomain converts the request to a domain model
func (r *ProductRequest) ToDomain() *domain.Product {
	return &domain.Product{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		Category:      domain.ProductCategory(r.Category),
	}
}
