// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// memoryLedger is an in-process ledger store so service benchmarks measure
// the service and not the database
type memoryLedger struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextSale int64
}

func newMemoryLedger(products []*domain.Product) *memoryLedger {
	m := &memoryLedger{products: make(map[int64]*domain.Product, len(products))}
	for _, p := range products {
		cp := *p
		m.products[p.ID] = &cp
	}
	return m
}

func (m *memoryLedger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{ledger: m, stock: make(map[int64]int)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, qty := range tx.stock {
		m.products[id].StockQuantity -= qty
	}
	m.nextSale += int64(len(tx.sales))
	return nil
}

type memoryTx struct {
	ledger *memoryLedger
	stock  map[int64]int
	sales  []*domain.Sale
}

func (t *memoryTx) LockProducts(_ context.Context, ids []int64) (map[int64]*domain.Product, error) {
	out := make(map[int64]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := t.ledger.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (t *memoryTx) InsertSale(_ context.Context, sale *domain.Sale) error {
	sale.ID = t.ledger.nextSale + int64(len(t.sales)) + 1
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	t.sales = append(t.sales, sale)
	return nil
}

func (t *memoryTx) DecrementStock(_ context.Context, productID int64, quantity int) error {
	t.stock[productID] += quantity
	return nil
}

// memorySales serves a fixed ledger to the reporting service
type memorySales struct {
	sales []*domain.Sale
}

func (m *memorySales) FindAll(context.Context) ([]*domain.Sale, error) {
	out := make([]*domain.Sale, len(m.sales))
	for i, s := range m.sales {
		out[len(m.sales)-1-i] = s
	}
	return out, nil
}

func (m *memorySales) FindByID(_ context.Context, id int64) (*domain.Sale, error) {
	for _, s := range m.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memorySales) FindItems(_ context.Context, saleID int64) ([]domain.SaleLineItem, error) {
	s, _ := m.FindByID(context.Background(), saleID)
	if s == nil {
		return []domain.SaleLineItem{}, nil
	}
	return s.Items, nil
}

func (m *memorySales) FindInRange(_ context.Context, r domain.DateRange) ([]*domain.Sale, error) {
	out := make([]*domain.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		if r.Contains(s.SaleDate) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySales) Totals(context.Context) (domain.SalesTotals, error) {
	totals := domain.SalesTotals{Revenue: decimal.Zero}
	for _, s := range m.sales {
		totals.Count++
		totals.Revenue = totals.Revenue.Add(s.TotalAmount)
	}
	return totals, nil
}

func benchmarkProducts(n int) []*domain.Product {
	categories := domain.Categories()
	products := make([]*domain.Product, n)
	for i := range products {
		products[i] = &domain.Product{
			ID:            int64(i + 1),
			Name:          fmt.Sprintf("Flower %03d", i+1),
			Price:         decimal.New(int64(150+i*25), -2),
			StockQuantity: 1 << 40,
			Category:      categories[i%len(categories)],
		}
	}
	return products
}

func benchmarkSales(n int) []*domain.Sale {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	products := benchmarkProducts(5)
	sales := make([]*domain.Sale, n)
	for i := range sales {
		sale := &domain.Sale{
			ID:       int64(i + 1),
			SaleDate: start.Add(time.Duration(i) * time.Minute),
			Items: []domain.SaleLineItem{
				domain.NewLineItem(products[i%len(products)], 1+i%3),
				domain.NewLineItem(products[(i+1)%len(products)], 1),
			},
		}
		sale.RecalculateTotals()
		sales[i] = sale
	}
	return sales
}

// priceListLines renders a text price list of n products
func priceListLines(n int) []string {
	names := []string{
		"Red Rose Bouquet",
		"Phalaenopsis Orchid",
		"Sunflower Stem",
		"Wildflower Seed Mix",
		"Pruning Shears",
		"Chocolate & Roses Gift Set",
	}

	lines := []string{"Spring price list", "Name Price Stock"}
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("%s %d ...... %d.%02d %d",
			names[i%len(names)], i+1, 5+i%40, i%100, 10+i%50))
	}
	lines = append(lines, strings.Repeat("-", 20), "Total")
	return lines
}
