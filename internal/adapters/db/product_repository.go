// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/internal/core/ports"
)

// productColumns is the explicit column list every product query decodes.
var productColumns = []string{
	"id", "name", "description", "price", "stock_quantity", "category", "created_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// productRepository implements ports.ProductRepository
type productRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *Database, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

// Create inserts a product and fills in its id and creation time
func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query, args, err := psql.Insert("products").
		Columns("name", "description", "price", "stock_quantity", "category").
		Values(p.Name, p.Description, p.Price, p.StockQuantity, string(p.Category)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.DebugContext(ctx, "product created",
		slog.Int64("id", p.ID),
		slog.String("name", p.Name))

	return nil
}

// Update rewrites every mutable column. created_at is never touched.
func (r *productRepository) Update(ctx context.Context, p *domain.Product) (bool, error) {
	query, args, err := psql.Update("products").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("price", p.Price).
		Set("stock_quantity", p.StockQuantity).
		Set("category", string(p.Category)).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update product: %w", err)
	}

	r.logger.DebugContext(ctx, "product updated", slog.Int64("id", p.ID))
	return true, nil
}

// Delete removes a product. Deleting an unknown id is not an error.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	r.logger.DebugContext(ctx, "product deleted",
		slog.Int64("id", id),
		slog.Int64("rows_affected", tag.RowsAffected()))

	return nil
}

// FindByID returns nil when no product has the id
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	product, err := ScanOne(r.db.QueryRow(ctx, query, args...), scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// FindAll returns every product ordered by name
func (r *productRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, psql.Select(productColumns...).
		From("products").
		OrderBy("lower(name) ASC", "id ASC"))
}

// Search matches term anywhere in the name, ignoring case
func (r *productRepository) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	builder := psql.Select(productColumns...).From("products")
	if term = strings.TrimSpace(term); term != "" {
		builder = builder.Where(squirrel.ILike{"name": "%" + escapeLike(term) + "%"})
	}
	return r.list(ctx, builder.OrderBy("lower(name) ASC", "id ASC"))
}

// FindLowStock returns products at or below threshold, least stocked first
func (r *productRepository) FindLowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	return r.list(ctx, psql.Select(productColumns...).
		From("products").
		Where(squirrel.LtOrEq{"stock_quantity": threshold}).
		OrderBy("stock_quantity ASC", "lower(name) ASC", "id ASC"))
}

// Count returns the number of products
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From("products").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*domain.Product, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	if err := checkColumns("product", rows.FieldDescriptions(), productColumns); err != nil {
		rows.Close()
		return nil, err
	}

	products, err := ScanMany(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

// scanProduct decodes one row in productColumns order
func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p        domain.Product
		category string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&category,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, decodeError("product", productColumns, err)
	}
	p.Category = domain.ProductCategory(category)
	return &p, nil
}

var _ ports.ProductRepository = (*productRepository)(nil)
