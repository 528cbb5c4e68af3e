// internal/handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/ammerola/flowershop-pos/internal/workers"
)

// APIPrefix is the version prefix of every API route
const APIPrefix = "/api/v1"

// Handlers groups everything mounted on the API mux. Nil handlers are
// skipped.
type Handlers struct {
	Products *ProductHandler
	Sales    *SalesHandler
	Reports  *ReportHandler
	Export   *ExportHandler
	Import   *ImportHandler
	Jobs     *JobHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the API using Go 1.22 method-specific patterns
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	api := APIPrefix

	if h.Health != nil {
		mux.HandleFunc("GET /health", h.Health.Health)
		mux.HandleFunc("GET /ready", h.Health.Readiness)
		mux.HandleFunc("GET /live", h.Health.Liveness)
		mux.HandleFunc("GET "+api+"/health", h.Health.Health)
	}

	if h.Products != nil {
		mux.HandleFunc("GET "+api+"/products", h.Products.ListProducts)
		mux.HandleFunc("GET "+api+"/products/low-stock", h.Products.LowStock)
		mux.HandleFunc("GET "+api+"/products/{id}", h.Products.GetProduct)
		mux.HandleFunc("POST "+api+"/products", h.Products.CreateProduct)
		mux.HandleFunc("PUT "+api+"/products/{id}", h.Products.UpdateProduct)
		mux.HandleFunc("DELETE "+api+"/products/{id}", h.Products.DeleteProduct)
	}

	if h.Sales != nil {
		mux.HandleFunc("POST "+api+"/sales", h.Sales.CommitSale)
		mux.HandleFunc("GET "+api+"/sales", h.Sales.ListSales)
		mux.HandleFunc("GET "+api+"/sales/{id}/items", h.Sales.SaleItems)
	}

	if h.Reports != nil {
		mux.HandleFunc("GET "+api+"/dashboard", h.Reports.GetDashboard)
		mux.HandleFunc("GET "+api+"/reports/revenue", h.Reports.Revenue)
		mux.HandleFunc("GET "+api+"/reports/low-stock", h.Reports.LowStockReport)
	}

	if h.Export != nil {
		mux.HandleFunc("GET "+api+"/export/sales.csv", h.Export.ExportCSV)
		mux.HandleFunc("GET "+api+"/export/sales.xlsx", h.Export.ExportXLSX)
		mux.HandleFunc("POST "+api+"/export/sales", h.Export.StartExport)
	}

	if h.Import != nil {
		mux.HandleFunc("POST "+api+"/import/catalog", h.Import.ImportCatalog)
	}

	if h.Jobs != nil {
		mux.HandleFunc("GET "+api+"/export/jobs/{id}", h.Jobs.Status(workers.TypeSalesExport))
		mux.HandleFunc("GET "+api+"/import/jobs/{id}", h.Jobs.Status(workers.TypeCatalogImport))
	}
}
