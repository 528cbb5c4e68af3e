// internal/adapters/db/sale_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

var (
	saleColumns     = []string{"id", "sale_date", "total_amount", "item_count"}
	saleItemColumns = []string{"id", "sale_id", "product_id", "product_name", "quantity", "unit_price", "total_price"}
)

// saleRepository implements ports.SaleRepository
type saleRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *Database, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sale")),
	}
}

// FindAll returns every sale, newest first
func (r *saleRepository) FindAll(ctx context.Context) ([]*domain.Sale, error) {
	return r.listSales(ctx, psql.Select(saleColumns...).
		From("sales").
		OrderBy("sale_date DESC", "id DESC"))
}

// FindByID returns nil when no sale has the id
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query, args, err := psql.Select(saleColumns...).
		From("sales").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	sale, err := ScanOne(r.db.QueryRow(ctx, query, args...), scanSale)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}
	return sale, nil
}

// FindItems returns the line items of a sale in insertion order
func (r *saleRepository) FindItems(ctx context.Context, saleID int64) ([]domain.SaleLineItem, error) {
	query, args, err := psql.Select(saleItemColumns...).
		From("sale_items").
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	if err := checkColumns("sale_item", rows.FieldDescriptions(), saleItemColumns); err != nil {
		rows.Close()
		return nil, err
	}

	items, err := ScanMany(rows, scanSaleItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sale items: %w", err)
	}

	result := make([]domain.SaleLineItem, 0, len(items))
	for _, item := range items {
		result = append(result, *item)
	}
	return result, nil
}

// FindInRange returns sales within the inclusive range, oldest first
func (r *saleRepository) FindInRange(ctx context.Context, dr domain.DateRange) ([]*domain.Sale, error) {
	builder := psql.Select(saleColumns...).From("sales")
	if dr.Start != nil {
		builder = builder.Where(squirrel.GtOrEq{"sale_date": *dr.Start})
	}
	if dr.End != nil {
		builder = builder.Where(squirrel.LtOrEq{"sale_date": *dr.End})
	}
	return r.listSales(ctx, builder.OrderBy("sale_date ASC", "id ASC"))
}

// Totals returns the number of sales and their summed amount
func (r *saleRepository) Totals(ctx context.Context) (domain.SalesTotals, error) {
	query, args, err := psql.Select("COUNT(*)", "COALESCE(SUM(total_amount), 0)").
		From("sales").
		ToSql()
	if err != nil {
		return domain.SalesTotals{}, fmt.Errorf("failed to build totals query: %w", err)
	}

	var (
		count   int64
		revenue decimal.Decimal
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count, &revenue); err != nil {
		return domain.SalesTotals{}, fmt.Errorf("failed to compute sales totals: %w",
			decodeError("sales_totals", []string{"count", "revenue"}, err))
	}

	return domain.SalesTotals{Count: count, Revenue: revenue}, nil
}

func (r *saleRepository) listSales(ctx context.Context, builder squirrel.SelectBuilder) ([]*domain.Sale, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	if err := checkColumns("sale", rows.FieldDescriptions(), saleColumns); err != nil {
		rows.Close()
		return nil, err
	}

	sales, err := ScanMany(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sales: %w", err)
	}
	if sales == nil {
		sales = []*domain.Sale{}
	}

	r.logger.DebugContext(ctx, "sales listed", slog.Int("count", len(sales)))
	return sales, nil
}

// scanSale decodes one row in saleColumns order
func scanSale(row pgx.Row) (*domain.Sale, error) {
	var s domain.Sale
	if err := row.Scan(&s.ID, &s.SaleDate, &s.TotalAmount, &s.ItemCount); err != nil {
		return nil, decodeError("sale", saleColumns, err)
	}
	return &s, nil
}

// scanSaleItem decodes one row in saleItemColumns order
func scanSaleItem(row pgx.Row) (*domain.SaleLineItem, error) {
	var item domain.SaleLineItem
	err := row.Scan(
		&item.ID,
		&item.SaleID,
		&item.ProductID,
		&item.ProductName,
		&item.Quantity,
		&item.UnitPrice,
		&item.TotalPrice,
	)
	if err != nil {
		return nil, decodeError("sale_item", saleItemColumns, err)
	}
	return &item, nil
}

var _ ports.SaleRepository = (*saleRepository)(nil)
