package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	contractx "github.com/wearly/concierge/agent/contract"
	catalogx "github.com/wearly/concierge/commerce/catalog"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(catalogx.NewMemoryRepository(catalogx.DefaultCatalog()))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAddUnknownSKU(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.Add(context.Background(), "c1", "NOPE-999", 1, "M", "")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddMergesOnSKUAndSize(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	update, err := svc.Add(ctx, "c1", "DRS-001", 1, "M", "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if update.Status != "added" || update.ItemCount != 1 {
		t.Fatalf("unexpected update: %+v", update)
	}

	update, err = svc.Add(ctx, "c1", "DRS-001", 2, "M", "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if update.Status != "updated" || update.ItemCount != 3 {
		t.Fatalf("expected quantity merge, got %+v", update)
	}

	// Same SKU in another size is a separate line.
	update, err = svc.Add(ctx, "c1", "DRS-001", 1, "L", "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if update.Status != "added" || update.ItemCount != 4 {
		t.Fatalf("expected separate line, got %+v", update)
	}

	summary, err := svc.Summary(ctx, "c1")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(summary.Items))
	}
}

func TestAddDefaults(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	if _, err := svc.Add(context.Background(), "c1", "DRS-001", 0, "", ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	summary, err := svc.Summary(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	item := summary.Items[0]
	if item.Quantity != 1 || item.Size != "M" {
		t.Fatalf("expected defaults qty=1 size=M, got %+v", item)
	}
	if item.Color != "black" {
		t.Fatalf("expected product base color, got %q", item.Color)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "c1", "DRS-001", 1, "M", ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	update, err := svc.Remove(ctx, "c1", "DRS-001", "M")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if update.Status != "removed" || update.ItemCount != 0 {
		t.Fatalf("unexpected update: %+v", update)
	}

	if _, err := svc.Remove(ctx, "c1", "DRS-001", "M"); !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(nil)
	if totals.Subtotal != 0 || totals.Tax != 0 || totals.Shipping != 0 || totals.Total != 0 {
		t.Fatalf("empty cart must total to zero, got %+v", totals)
	}
}

func TestComputeTotalsFlatShipping(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals([]contractx.CartItem{
		{SKU: "TSH-001", Price: 699, Quantity: 1},
	})
	if !almostEqual(totals.Subtotal, 699) {
		t.Fatalf("unexpected subtotal: %v", totals.Subtotal)
	}
	if !almostEqual(totals.Tax, 125.82) {
		t.Fatalf("unexpected tax: %v", totals.Tax)
	}
	if !almostEqual(totals.Shipping, 200) {
		t.Fatalf("expected flat shipping, got %v", totals.Shipping)
	}
	if !almostEqual(totals.Total, 1024.82) {
		t.Fatalf("unexpected total: %v", totals.Total)
	}
}

func TestComputeTotalsReducedShipping(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals([]contractx.CartItem{
		{SKU: "DRS-001", Price: 2499, Quantity: 1},
	})
	if !almostEqual(totals.Shipping, 100) {
		t.Fatalf("expected reduced shipping above threshold, got %v", totals.Shipping)
	}
	if !almostEqual(totals.Total, 2499+2499*0.18+100) {
		t.Fatalf("unexpected total: %v", totals.Total)
	}
	if totals.ItemCount != 1 {
		t.Fatalf("unexpected item count: %d", totals.ItemCount)
	}
}

func TestCartsAreIsolatedPerCustomer(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "c1", "DRS-001", 1, "M", ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	summary, err := svc.Summary(ctx, "c2")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("expected empty cart for other customer, got %v", summary.Items)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "c1", "DRS-001", 2, "M", ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	svc.Clear(ctx, "c1")

	summary, err := svc.Summary(ctx, "c1")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summary.Items) != 0 || summary.Totals.Total != 0 {
		t.Fatalf("expected cleared cart, got %+v", summary)
	}
}
