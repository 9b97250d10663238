package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danindra/warungbot/core/logger"
)

var _ Catalog = (*PGCatalog)(nil)

// PGCatalog persists products in Postgres. Every call reads the latest
// persisted state; nothing is cached between calls.
type PGCatalog struct {
	db *sqlx.DB
}

// NewPGCatalog wraps a database handle as a Catalog.
func NewPGCatalog(db *sqlx.DB) *PGCatalog {
	return &PGCatalog{db: db}
}

// List returns all products in id order.
func (c *PGCatalog) List(ctx context.Context) ([]Product, error) {
	var products []Product
	err := c.db.SelectContext(ctx, &products,
		`SELECT id, name, price, created_at FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	return products, nil
}

// Get returns one product by id.
func (c *PGCatalog) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := c.db.GetContext(ctx, &p,
		`SELECT id, name, price, created_at FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("catalog get: %w", err)
	}
	return p, nil
}

// Search returns products whose name contains the query, case-insensitive,
// in id order.
func (c *PGCatalog) Search(ctx context.Context, query string) ([]Product, error) {
	pattern := "%" + escapeLike(query) + "%"
	var products []Product
	err := c.db.SelectContext(ctx, &products,
		`SELECT id, name, price, created_at FROM products WHERE name ILIKE $1 ORDER BY id`, pattern)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	return products, nil
}

// Add inserts a product and returns it with its generated id.
func (c *PGCatalog) Add(ctx context.Context, name string, price int64) (Product, error) {
	start := time.Now()
	var p Product
	err := c.db.GetContext(ctx, &p,
		`INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id, name, price, created_at`,
		name, price)
	if err != nil {
		return Product{}, fmt.Errorf("catalog add: %w", err)
	}
	logger.SVCCatalog.Info("product added",
		slog.String("event", "catalog.add"),
		slog.Int64("product_id", p.ID),
		slog.Int64("price", p.Price),
		slog.Duration("duration", logger.Took(start)),
	)
	return p, nil
}

// Remove deletes a product by id and returns the removed row.
func (c *PGCatalog) Remove(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := c.db.GetContext(ctx, &p,
		`DELETE FROM products WHERE id = $1 RETURNING id, name, price, created_at`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("catalog remove: %w", err)
	}
	logger.SVCCatalog.Info("product removed",
		slog.String("event", "catalog.remove"),
		slog.Int64("product_id", id),
	)
	return p, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
