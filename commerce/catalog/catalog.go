package catalog

import (
	"context"

	"github.com/uptrace/bun"
)

// Product is one sellable catalog entry. Prices are whole rupees.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p" json:"-"`

	SKU         string   `bun:"sku,pk" json:"sku"`
	Name        string   `bun:"name" json:"name"`
	Brand       string   `bun:"brand" json:"brand"`
	Category    string   `bun:"category" json:"category"`
	SubCategory string   `bun:"sub_category" json:"sub_category"`
	BaseColor   string   `bun:"base_color" json:"base_color"`
	Price       int      `bun:"price" json:"price"`
	Currency    string   `bun:"currency" json:"currency"`
	Sizes       []string `bun:"sizes,array" json:"sizes,omitempty"`
	Tags        []string `bun:"tags,array" json:"tags,omitempty"`
	Images      []string `bun:"images,array" json:"images,omitempty"`
}

// Filter narrows a catalog listing. Zero values mean "no constraint".
type Filter struct {
	Category    string
	SubCategory string
	Color       string
	MaxPrice    int
}

// Repository is a read-only catalog view, injected instead of a
// load-once module registry so callers stay testable.
type Repository interface {
	Get(ctx context.Context, sku string) (Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
}
