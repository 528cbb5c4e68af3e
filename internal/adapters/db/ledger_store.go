// internal/adapters/db/ledger_store.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// ledgerStore implements ports.LedgerStore on a pgx transaction
type ledgerStore struct {
	db     *Database
	logger *slog.Logger
}

// NewLedgerStore creates the transactional store used to commit sales
func NewLedgerStore(db *Database, logger *slog.Logger) ports.LedgerStore {
	return &ledgerStore{
		db:     db,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

// WithinTx runs fn in a READ COMMITTED transaction. Row locks taken by
// LockProducts are held until the transaction ends.
func (s *ledgerStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	return s.db.TransactionWithOptions(ctx, opts, func(tx pgx.Tx) error {
		return fn(ctx, &ledgerTx{tx: tx, logger: s.logger})
	})
}

type ledgerTx struct {
	tx     pgx.Tx
	logger *slog.Logger
}

// LockProducts selects the products FOR UPDATE in ascending id order so
// concurrent commits always acquire locks in the same sequence.
func (t *ledgerTx) LockProducts(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where("id = ANY(?)", ids).
		OrderBy("id ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock query: %w", err)
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	if err := checkColumns("product", rows.FieldDescriptions(), productColumns); err != nil {
		rows.Close()
		return nil, err
	}

	products, err := ScanMany(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked products: %w", err)
	}

	locked := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		locked[p.ID] = p
	}

	t.logger.DebugContext(ctx, "products locked",
		slog.Int("requested", len(ids)),
		slog.Int("locked", len(locked)))

	return locked, nil
}

// InsertSale writes the sale row and then its items in one batch
func (t *ledgerTx) InsertSale(ctx context.Context, sale *domain.Sale) error {
	query, args, err := psql.Insert("sales").
		Columns("sale_date", "total_amount", "item_count").
		Values(sale.SaleDate, sale.TotalAmount, sale.ItemCount).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sale insert: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&sale.ID); err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	if len(sale.Items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		item := sale.Items[i]

		itemQuery, itemArgs, err := psql.Insert("sale_items").
			Columns("sale_id", "product_id", "product_name", "quantity", "unit_price", "total_price").
			Values(item.SaleID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build sale item insert: %w", err)
		}
		batch.Queue(itemQuery, itemArgs...)
	}

	br := t.tx.SendBatch(ctx, batch)
	for i := range sale.Items {
		if err := br.QueryRow().Scan(&sale.Items[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert sale item %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close sale item batch: %w", err)
	}

	t.logger.DebugContext(ctx, "sale inserted",
		slog.Int64("sale_id", sale.ID),
		slog.Int("items", len(sale.Items)))

	return nil
}

// DecrementStock lowers stock by quantity, refusing to go below zero
func (t *ledgerTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	query, args, err := psql.Update("products").
		Set("stock_quantity", squirrel.Expr("stock_quantity - ?", quantity)).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.GtOrEq{"stock_quantity": quantity}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build stock update: %w", err)
	}

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to decrement stock for product %d: %d rows updated", productID, tag.RowsAffected())
	}

	return nil
}

var (
	_ ports.LedgerStore = (*ledgerStore)(nil)
	_ ports.LedgerTx    = (*ledgerTx)(nil)
)
