//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/flowershop-pos/internal/adapters/db"
	"github.com/ammerola/flowershop-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/services"
	"github.com/ammerola/flowershop-pos/internal/handlers"
	"github.com/ammerola/flowershop-pos/internal/handlers/middleware"
	"github.com/ammerola/flowershop-pos/internal/pkg/logger"
	"github.com/ammerola/flowershop-pos/test/helpers"
)

type SalesE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
}

func (s *SalesE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + handlers.APIPrefix
}

func (s *SalesE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *SalesE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
}

func (s *SalesE2ESuite) TestCompleteSalesWorkflow() {
	// 1. Stock the shop
	rose := s.createProduct("Red Rose", "2.50", 5)
	lily := s.createProduct("White Lily", "4.00", 2)

	// 2. A listing reflects both
	var products []domain.Product
	resp := s.makeRequest("GET", "/products", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &products)
	s.Len(products, 2)

	// 3. Sell three roses and one lily
	var sale domain.Sale
	resp = s.makeRequest("POST", "/sales", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": rose.ID, "quantity": 3},
			{"product_id": lily.ID, "quantity": 1},
		},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.decodeResponse(resp, &sale)
	s.Equal(4, sale.ItemCount)
	s.True(decimal.RequireFromString("11.50").Equal(sale.TotalAmount), "total %s", sale.TotalAmount)

	// 4. Stock went down
	var updated domain.Product
	resp = s.makeRequest("GET", fmt.Sprintf("/products/%d", rose.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &updated)
	s.Equal(2, updated.StockQuantity)

	// 5. Overselling is refused and changes nothing
	resp = s.makeRequest("POST", "/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": lily.ID, "quantity": 5}},
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	s.Equal(1, helpers.StockOf(s.T(), s.testDB.PgxPool, lily.ID))

	// 6. Line items of the sale
	var items []domain.SaleLineItem
	resp = s.makeRequest("GET", fmt.Sprintf("/sales/%d/items", sale.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &items)
	s.Len(items, 2)

	// 7. Low stock with an explicit threshold
	var low []domain.Product
	resp = s.makeRequest("GET", "/products/low-stock?threshold=1", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &low)
	s.Require().Len(low, 1)
	s.Equal(lily.ID, low[0].ID)

	// 8. Dashboard
	var dashboard map[string]interface{}
	resp = s.makeRequest("GET", "/dashboard", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &dashboard)
	s.EqualValues(1, dashboard["sale_count"])
	s.EqualValues(2, dashboard["product_count"])

	// 9. CSV export
	resp = s.makeRequest("GET", "/export/sales.csv", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("1", resp.Header.Get("X-Export-Rows"))
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Require().NoError(err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	s.Require().Len(lines, 2)
	s.Equal("ID;Sale date;Item count;Total amount", lines[0])
	s.True(strings.HasSuffix(lines[1], ";4;11.50"), lines[1])

	// 10. Deleting a sold product keeps the sale intact
	resp = s.makeRequest("DELETE", fmt.Sprintf("/products/%d", rose.ID), nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/products/%d", rose.ID), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/sales/%d/items", sale.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &items)
	s.Len(items, 2)
}

func (s *SalesE2ESuite) TestValidation() {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"empty_sale", "POST", "/sales", map[string]interface{}{"items": []interface{}{}}, http.StatusBadRequest},
		{"zero_quantity", "POST", "/sales", map[string]interface{}{
			"items": []map[string]interface{}{{"product_id": 1, "quantity": 0}},
		}, http.StatusBadRequest},
		{"unknown_product", "POST", "/sales", map[string]interface{}{
			"items": []map[string]interface{}{{"product_id": 404, "quantity": 1}},
		}, http.StatusNotFound},
		{"negative_price", "POST", "/products", map[string]interface{}{
			"name": "Thorn", "price": "-1", "stock_quantity": 1,
		}, http.StatusBadRequest},
		{"blank_name", "POST", "/products", map[string]interface{}{
			"name": "  ", "price": "1", "stock_quantity": 1,
		}, http.StatusBadRequest},
		{"bad_export_range", "GET", "/export/sales.csv?from=2024-02-01&to=2024-01-01", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.makeRequest(tt.method, tt.path, tt.body)
			defer resp.Body.Close()
			s.Equal(tt.status, resp.StatusCode)
		})
	}

	s.Zero(helpers.CountRows(s.T(), s.testDB.PgxPool, "sales"))
}

func (s *SalesE2ESuite) TestSearchFunctionality() {
	s.createProduct("Red Rose", "2.50", 10)
	s.createProduct("Rose Gold Vase", "19.00", 4)
	s.createProduct("Sunflower", "3.20", 8)

	var found []domain.Product
	resp := s.makeRequest("GET", "/products?q=rose", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &found)
	s.Len(found, 2)

	resp = s.makeRequest("GET", "/products?q=tulip", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &found)
	s.Empty(found)
}

func (s *SalesE2ESuite) TestConcurrentSales() {
	p := s.createProduct("Peony", "5.00", 5)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.makeRequest("POST", "/sales", map[string]interface{}{
				"items": []map[string]interface{}{{"product_id": p.ID, "quantity": 1}},
			})
			resp.Body.Close()

			mu.Lock()
			statuses[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Equal(5, statuses[http.StatusCreated])
	s.Equal(5, statuses[http.StatusConflict])
	s.Equal(0, helpers.StockOf(s.T(), s.testDB.PgxPool, p.ID))
}

func (s *SalesE2ESuite) TestHealthCheck() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	s.decodeResponse(resp, &health)
	s.Equal("healthy", health["status"])

	svc := health["services"].(map[string]interface{})
	s.Contains(svc, "database")
	s.Contains(svc, "redis")
}

// Helper methods

func (s *SalesE2ESuite) startTestServer() *httptest.Server {
	log := helpers.TestLogger()
	cfg := helpers.LoadTestConfig()

	cache := redis_adapter.NewCache(s.testRedis.Client, time.Minute, log)
	invalidator := redis_adapter.NewCacheManager(cache, log)

	products := db.NewProductRepository(s.testDB.Database, log)
	catalog := services.NewCatalogService(products, cache, invalidator, services.CatalogOptions{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		CacheTTL:          time.Minute,
	}, log)
	ledger := services.NewLedgerService(db.NewLedgerStore(s.testDB.Database, log), invalidator, nil,
		services.LedgerOptions{CriticalStockThreshold: cfg.Inventory.CriticalStockThreshold}, log)
	reporting := services.NewReportingService(products, db.NewSaleRepository(s.testDB.Database, log), cache,
		services.ReportingOptions{
			LowStockThreshold:      cfg.Inventory.LowStockThreshold,
			CriticalStockThreshold: cfg.Inventory.CriticalStockThreshold,
			DashboardCacheTTL:      time.Minute,
		}, log)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Handlers{
		Products: handlers.NewProductHandler(catalog, log),
		Sales:    handlers.NewSalesHandler(ledger, reporting, log),
		Reports:  handlers.NewReportHandler(reporting, cfg.Inventory.LowStockThreshold, log),
		Export:   handlers.NewExportHandler(reporting, nil, time.UTC, log),
		Health:   handlers.NewHealthHandler(s.testDB.Database, s.testRedis.Client, nil, cfg.App, log),
	})

	appLogger := logger.SetupLogger("error", "json")
	return httptest.NewServer(middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(appLogger),
		middleware.Recovery(log),
	))
}

func (s *SalesE2ESuite) createProduct(name, price string, stock int) *domain.Product {
	resp := s.makeRequest("POST", "/products", map[string]interface{}{
		"name":           name,
		"price":          price,
		"stock_quantity": stock,
		"category":       string(domain.CategoryCutFlowers),
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var p domain.Product
	s.decodeResponse(resp, &p)
	s.Require().NotZero(p.ID)
	return &p
}

func (s *SalesE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *SalesE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestSalesE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(SalesE2ESuite))
}
