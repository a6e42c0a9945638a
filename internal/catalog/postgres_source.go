package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/database"
)

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

const listProductsQuery = `
	SELECT id, name, brand, category, price, discount_price, rating, review_count,
	       images, sizes, colors, COALESCE(description, '')
	FROM products
	ORDER BY position, id`

// PostgresSource reads the catalog from the products table. Catalog order is
// the table's position column, then id.
type PostgresSource struct {
	db     Querier
	logger *slog.Logger
}

// NewPostgresSource returns a source over db.
func NewPostgresSource(db Querier, logger *slog.Logger) *PostgresSource {
	return &PostgresSource{db: db, logger: logger}
}

// Ping checks database connectivity.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Products loads every row of the products table.
func (s *PostgresSource) Products(ctx context.Context) (products []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, database.Query{
		Operation: "ListProducts",
		Table:     "products",
		Statement: listProductsQuery,
		Slow:      time.Second,
	}, s.logger)
	defer func() { end(len(products), err) }()

	rows, err := s.db.Query(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products = make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Category, &p.Price, &p.DiscountPrice,
			&p.Rating, &p.ReviewCount, &p.Images, &p.Sizes, &p.Colors, &p.Description,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
