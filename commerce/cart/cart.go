package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/wearly/concierge/agent/contract"
	catalogx "github.com/wearly/concierge/commerce/catalog"
)

const (
	taxRate              = 0.18
	shippingFlat         = 200.0
	shippingReduced      = 100.0
	shippingReducedAbove = 1000.0
)

type record struct {
	CartID    string
	Items     []contractx.CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service keeps one open cart per customer. Item identity is sku+size:
// re-adding the same pair bumps the quantity.
type Service struct {
	mu    sync.Mutex
	carts map[string]*record
	repo  catalogx.Repository
	now   func() time.Time
}

var _ contractx.CartService = (*Service)(nil)

func NewService(repo catalogx.Repository) *Service {
	return &Service{
		carts: make(map[string]*record),
		repo:  repo,
		now:   time.Now,
	}
}

func (s *Service) Add(ctx context.Context, customerID, sku string, quantity int, size, color string) (contractx.CartUpdate, error) {
	product, err := s.repo.Get(ctx, sku)
	if err != nil {
		return contractx.CartUpdate{}, err
	}

	if quantity <= 0 {
		quantity = 1
	}
	if strings.TrimSpace(size) == "" {
		size = "M"
	}
	if strings.TrimSpace(color) == "" {
		color = product.BaseColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrCreate(customerID)
	now := s.now().UTC()

	for i, item := range cart.Items {
		if item.SKU == sku && item.Size == size {
			cart.Items[i].Quantity += quantity
			cart.UpdatedAt = now
			return contractx.CartUpdate{Status: "updated", SKU: sku, ItemCount: itemCount(cart.Items)}, nil
		}
	}

	cart.Items = append(cart.Items, contractx.CartItem{
		SKU:      sku,
		Name:     product.Name,
		Brand:    product.Brand,
		Price:    product.Price,
		Quantity: quantity,
		Size:     size,
		Color:    color,
	})
	cart.UpdatedAt = now
	return contractx.CartUpdate{Status: "added", SKU: sku, ItemCount: itemCount(cart.Items)}, nil
}

func (s *Service) Remove(ctx context.Context, customerID, sku, size string) (contractx.CartUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrCreate(customerID)
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.SKU == sku && (size == "" || item.Size == size) {
			continue
		}
		kept = append(kept, item)
	}

	if len(kept) == len(cart.Items) {
		return contractx.CartUpdate{}, fmt.Errorf("%w: %s not in cart", contractx.ErrNotFound, sku)
	}

	cart.Items = kept
	cart.UpdatedAt = s.now().UTC()
	return contractx.CartUpdate{Status: "removed", SKU: sku, ItemCount: itemCount(cart.Items)}, nil
}

func (s *Service) Summary(ctx context.Context, customerID string) (contractx.CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrCreate(customerID)
	items := make([]contractx.CartItem, len(cart.Items))
	copy(items, cart.Items)

	return contractx.CartSummary{
		CustomerID: customerID,
		Items:      items,
		Totals:     ComputeTotals(items),
	}, nil
}

func (s *Service) Clear(ctx context.Context, customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart, ok := s.carts[customerID]; ok {
		cart.Items = nil
		cart.UpdatedAt = s.now().UTC()
	}
}

// ComputeTotals prices a line-item set: 18% GST, reduced shipping above
// the threshold. An empty set totals to zero.
func ComputeTotals(items []contractx.CartItem) contractx.CartTotals {
	if len(items) == 0 {
		return contractx.CartTotals{}
	}

	var subtotal float64
	count := 0
	for _, item := range items {
		subtotal += float64(item.Price * item.Quantity)
		count += item.Quantity
	}

	tax := subtotal * taxRate
	shipping := shippingFlat
	if subtotal > shippingReducedAbove {
		shipping = shippingReduced
	}

	return contractx.CartTotals{
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal + tax + shipping,
		ItemCount: count,
	}
}

func (s *Service) getOrCreate(customerID string) *record {
	cart, ok := s.carts[customerID]
	if !ok {
		now := s.now().UTC()
		cart = &record{
			CartID:    "CRT-" + strings.ToUpper(uuid.NewString()[:8]),
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.carts[customerID] = cart
	}
	return cart
}

func itemCount(items []contractx.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
