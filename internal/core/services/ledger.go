// internal/core/services/ledger.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// LedgerOptions tunes the ledger service
type LedgerOptions struct {
	// CriticalStockThreshold triggers a low stock alert when a sale takes a
	// product from above it to at or below it.
	CriticalStockThreshold int
	// Now stamps committed sales. Defaults to time.Now.
	Now func() time.Time
}

// LedgerService commits sales against the catalog stock
type LedgerService struct {
	store       ports.LedgerStore
	invalidator ports.CacheInvalidator
	alerter     ports.StockAlerter
	opts        LedgerOptions
	logger      *slog.Logger
}

var _ ports.LedgerService = (*LedgerService)(nil)

// NewLedgerService creates a new ledger service. invalidator and alerter
// may be nil.
func NewLedgerService(
	store ports.LedgerStore,
	invalidator ports.CacheInvalidator,
	alerter ports.StockAlerter,
	opts LedgerOptions,
	logger *slog.Logger,
) *LedgerService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &LedgerService{
		store:       store,
		invalidator: invalidator,
		alerter:     alerter,
		opts:        opts,
		logger:      logger.With(slog.String("service", "ledger")),
	}
}

// CommitSale records a sale and decrements stock for every line, or does
// nothing at all. Requests naming the same product twice are merged.
func (s *LedgerService) CommitSale(ctx context.Context, lines []domain.LineRequest) (*domain.Sale, error) {
	if err := domain.ValidateLineRequests(lines); err != nil {
		return nil, err
	}
	merged := domain.MergeLineRequests(lines)

	var (
		sale   *domain.Sale
		alerts []domain.LowStockEntry
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		locked, err := tx.LockProducts(ctx, domain.ProductIDs(merged))
		if err != nil {
			return err
		}

		draft := &domain.Sale{Items: make([]domain.SaleLineItem, 0, len(merged))}
		for _, line := range merged {
			product, ok := locked[line.ProductID]
			if !ok {
				return &domain.NotFoundError{Entity: "product", ID: line.ProductID}
			}
			if line.Quantity > product.StockQuantity {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.StockQuantity,
				}
			}
			draft.Items = append(draft.Items, domain.NewLineItem(product, line.Quantity))
		}

		draft.RecalculateTotals()
		draft.SaleDate = s.opts.Now().UTC().Truncate(time.Microsecond)
		if err := draft.CheckAggregates(); err != nil {
			return fmt.Errorf("failed to assemble sale: %w", err)
		}

		if err := tx.InsertSale(ctx, draft); err != nil {
			return err
		}

		for _, line := range merged {
			if err := tx.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}

			product := locked[line.ProductID]
			remaining := product.StockQuantity - line.Quantity
			if product.StockQuantity > s.opts.CriticalStockThreshold && remaining <= s.opts.CriticalStockThreshold {
				after := *product
				after.StockQuantity = remaining
				alerts = append(alerts, domain.LowStockEntry{Product: &after, Status: domain.StockCritical})
			}
		}

		sale = draft
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "sale rejected",
			slog.String("lines", describeLines(merged)),
			slog.String("error", err.Error()))
		return nil, domain.AsStorageError("commit sale", err)
	}

	s.logger.InfoContext(ctx, "sale committed",
		slog.Int64("sale_id", sale.ID),
		slog.Int("item_count", sale.ItemCount),
		slog.String("total_amount", sale.TotalAmount.StringFixed(2)))

	s.afterCommit(ctx, alerts)

	return sale, nil
}

// afterCommit runs the best effort follow-ups of a committed sale. Their
// failures are logged and never reach the caller.
func (s *LedgerService) afterCommit(ctx context.Context, alerts []domain.LowStockEntry) {
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateSales(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate sales cache",
				slog.String("error", err.Error()))
		}
	}

	if s.alerter != nil && len(alerts) > 0 {
		if err := s.alerter.AlertLowStock(ctx, alerts); err != nil {
			s.logger.WarnContext(ctx, "failed to schedule low stock alert",
				slog.Int("products", len(alerts)),
				slog.String("error", err.Error()))
		}
	}
}

// describeLines renders lines as "id x qty" pairs for log output
func describeLines(lines []domain.LineRequest) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%d x%d", l.ProductID, l.Quantity))
	}
	return strings.Join(parts, ",")
}
