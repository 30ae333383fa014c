package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	contractx "github.com/wearly/concierge/agent/contract"
)

// MemoryRepository serves the catalog from memory; the default seed makes
// the module runnable without a database.
type MemoryRepository struct {
	bySKU map[string]Product
	order []string
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository(products []Product) *MemoryRepository {
	repo := &MemoryRepository{
		bySKU: make(map[string]Product, len(products)),
		order: make([]string, 0, len(products)),
	}
	for _, p := range products {
		if _, dup := repo.bySKU[p.SKU]; dup {
			continue
		}
		repo.bySKU[p.SKU] = p
		repo.order = append(repo.order, p.SKU)
	}
	sort.Strings(repo.order)
	return repo
}

func (r *MemoryRepository) Get(ctx context.Context, sku string) (Product, error) {
	product, ok := r.bySKU[sku]
	if !ok {
		return Product{}, fmt.Errorf("%w: product %s", contractx.ErrNotFound, sku)
	}
	return product, nil
}

func (r *MemoryRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	var out []Product
	for _, sku := range r.order {
		p := r.bySKU[sku]
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.SubCategory != "" && !strings.EqualFold(p.SubCategory, f.SubCategory) {
			continue
		}
		if f.Color != "" && !strings.EqualFold(p.BaseColor, f.Color) {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// DefaultCatalog is the seed assortment used when no database is wired.
func DefaultCatalog() []Product {
	return []Product{
		{SKU: "DRS-001", Name: "Midnight Wrap Dress", Brand: "Aarvi", Category: "Clothing", SubCategory: "Dresses", BaseColor: "black", Price: 2499, Currency: "INR", Sizes: []string{"S", "M", "L"}, Tags: []string{"bestseller"}},
		{SKU: "DRS-002", Name: "Sunset Maxi Dress", Brand: "Aarvi", Category: "Clothing", SubCategory: "Dresses", BaseColor: "red", Price: 3299, Currency: "INR", Sizes: []string{"XS", "S", "M", "L"}, Tags: []string{"new_arrival"}},
		{SKU: "DRS-003", Name: "Linen Shift Dress", Brand: "Karv", Category: "Clothing", SubCategory: "Dresses", BaseColor: "black", Price: 1899, Currency: "INR", Sizes: []string{"M", "L", "XL"}},
		{SKU: "JNS-001", Name: "Slim Indigo Jeans", Brand: "Denmo", Category: "Clothing", SubCategory: "Jeans", BaseColor: "blue", Price: 2199, Currency: "INR", Sizes: []string{"S", "M", "L", "XL"}, Tags: []string{"bestseller"}},
		{SKU: "TSH-001", Name: "Everyday Crew Tee", Brand: "Plainly", Category: "Clothing", SubCategory: "T-Shirts", BaseColor: "white", Price: 699, Currency: "INR", Sizes: []string{"S", "M", "L", "XL", "XXL"}},
		{SKU: "KRT-001", Name: "Block Print Kurta", Brand: "Jaipour", Category: "Clothing", SubCategory: "Kurtas", BaseColor: "yellow", Price: 1499, Currency: "INR", Sizes: []string{"M", "L", "XL"}, Tags: []string{"new_arrival"}},
		{SKU: "SNK-001", Name: "Court Classic Sneakers", Brand: "Strider", Category: "Footwear", SubCategory: "Sneakers", BaseColor: "white", Price: 3499, Currency: "INR", Sizes: []string{"M", "L"}, Tags: []string{"bestseller"}},
		{SKU: "HLS-001", Name: "Velvet Block Heels", Brand: "Solene", Category: "Footwear", SubCategory: "Heels", BaseColor: "maroon", Price: 2799, Currency: "INR", Sizes: []string{"S", "M"}},
	}
}
