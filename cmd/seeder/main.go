// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/flowershop-pos/internal/adapters/db"
	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
	"github.com/ammerola/flowershop-pos/internal/core/services"
	"github.com/ammerola/flowershop-pos/internal/pkg/config"
	"github.com/ammerola/flowershop-pos/internal/pkg/logger"
	"github.com/ammerola/flowershop-pos/internal/pricelist"
)

// sampleProducts is the starter catalog of a small flower shop
var sampleProducts = []*domain.Product{
	{Name: "Red Rose", Description: "Long stem, sold by the stem", Price: decimal.RequireFromString("2.50"), StockQuantity: 120, Category: domain.CategoryCutFlowers},
	{Name: "White Tulip", Price: decimal.RequireFromString("1.80"), StockQuantity: 80, Category: domain.CategoryCutFlowers},
	{Name: "Sunflower", Price: decimal.RequireFromString("3.20"), StockQuantity: 40, Category: domain.CategoryCutFlowers},
	{Name: "Pink Peony", Price: decimal.RequireFromString("4.90"), StockQuantity: 8, Category: domain.CategoryCutFlowers},
	{Name: "Spring Bouquet", Description: "Tulips, daffodils and greenery", Price: decimal.RequireFromString("29.00"), StockQuantity: 12, Category: domain.CategoryBouquets},
	{Name: "Wedding Bouquet", Price: decimal.RequireFromString("85.00"), StockQuantity: 3, Category: domain.CategoryBouquets},
	{Name: "Phalaenopsis Orchid", Description: "12cm pot", Price: decimal.RequireFromString("24.50"), StockQuantity: 15, Category: domain.CategoryPottedPlants},
	{Name: "Peace Lily", Price: decimal.RequireFromString("18.00"), StockQuantity: 9, Category: domain.CategoryPottedPlants},
	{Name: "Chocolate & Roses Box", Price: decimal.RequireFromString("39.90"), StockQuantity: 6, Category: domain.CategoryGiftSets},
	{Name: "Wildflower Seed Mix", Price: decimal.RequireFromString("3.99"), StockQuantity: 60, Category: domain.CategorySeeds},
	{Name: "Pruning Shears", Price: decimal.RequireFromString("21.00"), StockQuantity: 5, Category: domain.CategoryTools},
}

// seederState remembers which price lists were already loaded
type seederState struct {
	ProcessedFiles []string  `json:"processed_files"`
	LastUpdate     time.Time `json:"last_update"`
}

func (s *seederState) seen(key string) bool {
	for _, f := range s.ProcessedFiles {
		if f == key {
			return true
		}
	}
	return false
}

func main() {
	var (
		file      = flag.String("file", "", "Price list to load (.xlsx or .pdf)")
		dir       = flag.String("dir", "", "Directory of price lists to load")
		sample    = flag.Bool("sample", false, "Load the built-in sample catalog")
		sales     = flag.Int("sales", 0, "Number of random sales to commit after loading products")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking loaded price lists")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Parse and report without modifying the database")
		force     = flag.Bool("force", false, "Reload price lists recorded in the state file")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "text").Logger

	files, err := collectFiles(*file, *dir)
	if err != nil {
		slogger.Error("failed to find price lists", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(files) == 0 && !*sample && *sales == 0 {
		*sample = true
	}

	var state seederState
	if !*force {
		if data, err := os.ReadFile(*stateFile); err == nil {
			if err := json.Unmarshal(data, &state); err != nil {
				slogger.Warn("ignoring unreadable state file", slog.String("error", err.Error()))
			}
		}
	}

	var batches []batch
	if *sample {
		batches = append(batches, batch{name: "sample", products: sampleProducts})
	}
	for _, f := range files {
		key := stateKey(f)
		if !*force && state.seen(key) {
			slogger.Info("skipping already loaded price list", slog.String("file", f))
			continue
		}

		result, err := pricelist.ParseFile(f)
		if err != nil {
			slogger.Error("failed to parse price list", slog.String("file", f), slog.String("error", err.Error()))
			continue
		}
		for _, skipped := range result.Skipped {
			slogger.Warn("skipped price list row",
				slog.String("file", f),
				slog.Int("row", skipped.Row),
				slog.String("reason", skipped.Reason))
		}
		batches = append(batches, batch{name: f, key: key, products: result.Products})
	}

	if *dryRun {
		for _, b := range batches {
			fmt.Printf("%s: %d products\n", b.name, len(b.products))
			for _, p := range b.products {
				fmt.Printf("  %-32s %8s %5d  %s\n", p.Name, p.Price.StringFixed(2), p.StockQuantity, p.Category)
			}
		}
		fmt.Println("\n[DRY RUN] No changes were made to the database")
		return
	}

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.NewDatabase(ctx, db.ConfigFrom(cfg.Database), slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(ctx, db.ConfigFrom(cfg.Database), slogger); err != nil {
		slogger.Error("failed to prepare schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	products := db.NewProductRepository(database, slogger)
	catalog := services.NewCatalogService(products, nil, nil, services.CatalogOptions{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
	}, slogger)

	created := 0
	for _, b := range batches {
		n, errs := seedProducts(ctx, catalog, b.products)
		created += n
		for _, err := range errs {
			slogger.Warn("failed to create product", slog.String("batch", b.name), slog.String("error", err.Error()))
		}
		fmt.Printf("SUCCESS: %s - %d of %d products\n", b.name, n, len(b.products))

		if b.key != "" {
			state.ProcessedFiles = append(state.ProcessedFiles, b.key)
			state.LastUpdate = time.Now()
			if err := saveState(*stateFile, state); err != nil {
				slogger.Warn("failed to save state", slog.String("error", err.Error()))
			}
		}
	}

	committed := 0
	if *sales > 0 {
		ledger := services.NewLedgerService(db.NewLedgerStore(database, slogger), nil, nil, services.LedgerOptions{
			CriticalStockThreshold: cfg.Inventory.CriticalStockThreshold,
		}, slogger)
		committed, err = seedSales(ctx, catalog, ledger, *sales, slogger)
		if err != nil {
			slogger.Error("failed to seed sales", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("Products created: %d\n", created)
	fmt.Printf("Sales committed:  %d\n", committed)

	slogger.Info("seed operation completed",
		slog.Int("products_created", created),
		slog.Int("sales_committed", committed))
}

type batch struct {
	name     string
	key      string
	products []*domain.Product
}

func collectFiles(file, dir string) ([]string, error) {
	var files []string
	if file != "" {
		files = append(files, file)
	}
	if dir != "" {
		for _, pattern := range []string{"*.xlsx", "*.pdf"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	return files, nil
}

// stateKey changes when a price list is replaced under the same name
func stateKey(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", filepath.Base(path), info.Size(), info.ModTime().Unix())
}

func saveState(path string, state seederState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func seedProducts(ctx context.Context, catalog ports.CatalogService, products []*domain.Product) (int, []error) {
	var errs []error
	created := 0
	for _, p := range products {
		// Create assigns the id, so seed a copy and leave the template untouched
		product := *p
		if _, err := catalog.Create(ctx, &product); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		created++
	}
	return created, errs
}

// seedSales commits up to n random sales of one to three lines each.
// Sales that would overdraw stock are skipped.
func seedSales(ctx context.Context, catalog ports.CatalogService, ledger ports.LedgerService, n int, log *slog.Logger) (int, error) {
	products, err := catalog.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, errors.New("no products to sell")
	}

	committed := 0
	for i := 0; i < n; i++ {
		lines := make([]domain.LineRequest, 0, 3)
		for j := 0; j < 1+rand.IntN(3); j++ {
			p := products[rand.IntN(len(products))]
			lines = append(lines, domain.LineRequest{ProductID: p.ID, Quantity: 1 + rand.IntN(3)})
		}

		sale, err := ledger.CommitSale(ctx, lines)
		var stockErr *domain.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			log.Debug("skipping sale", slog.String("reason", stockErr.Error()))
			continue
		case err != nil:
			return committed, err
		}

		committed++
		log.Debug("sale committed",
			slog.Int64("sale_id", sale.ID),
			slog.String("total", sale.TotalAmount.StringFixed(2)))
	}
	return committed, nil
}
