package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/wearly/concierge/agent/contract"
)

type Config struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

// NewDB opens a bun handle over the Postgres catalog.
func NewDB(cfg Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// PostgresRepository serves the catalog from the products table.
type PostgresRepository struct {
	db *bun.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, sku string) (Product, error) {
	var product Product
	err := r.db.NewSelect().
		Model(&product).
		Where("p.sku = ?", sku).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: product %s", contractx.ErrNotFound, sku)
	}
	if err != nil {
		return Product{}, fmt.Errorf("%w: catalog get: %v", contractx.ErrUnavailable, err)
	}
	return product, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	var products []Product
	q := r.db.NewSelect().Model(&products)

	if f.Category != "" {
		q = q.Where("lower(p.category) = lower(?)", f.Category)
	}
	if f.SubCategory != "" {
		q = q.Where("lower(p.sub_category) = lower(?)", f.SubCategory)
	}
	if f.Color != "" {
		q = q.Where("lower(p.base_color) = lower(?)", f.Color)
	}
	if f.MaxPrice > 0 {
		q = q.Where("p.price <= ?", f.MaxPrice)
	}

	if err := q.Order("sku ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: catalog list: %v", contractx.ErrUnavailable, err)
	}
	return products, nil
}
