package task

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/wearly/concierge/agent/contract"
)

type fakeRecs struct {
	recs  []contractx.Recommendation
	err   error
	calls int
}

func (f *fakeRecs) Recommend(ctx context.Context, customerID string, params map[string]any, rawMessage string) ([]contractx.Recommendation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

type fakeCarts struct {
	update  contractx.CartUpdate
	summary contractx.CartSummary
	addErr  error
	sumErr  error
	added   []string
}

func (f *fakeCarts) Add(ctx context.Context, customerID, sku string, quantity int, size, color string) (contractx.CartUpdate, error) {
	if f.addErr != nil {
		return contractx.CartUpdate{}, f.addErr
	}
	f.added = append(f.added, sku)
	return f.update, nil
}

func (f *fakeCarts) Remove(ctx context.Context, customerID, sku, size string) (contractx.CartUpdate, error) {
	return contractx.CartUpdate{}, nil
}

func (f *fakeCarts) Summary(ctx context.Context, customerID string) (contractx.CartSummary, error) {
	if f.sumErr != nil {
		return contractx.CartSummary{}, f.sumErr
	}
	return f.summary, nil
}

type fakeOrders struct {
	order     contractx.Order
	payment   contractx.PaymentInit
	result    contractx.PaymentResult
	createErr error
	initErr   error
	initCalls int
}

func (f *fakeOrders) Create(ctx context.Context, customerID string, items []contractx.CartItem, totals contractx.CartTotals) (contractx.Order, error) {
	if f.createErr != nil {
		return contractx.Order{}, f.createErr
	}
	return f.order, nil
}

func (f *fakeOrders) InitPayment(ctx context.Context, orderID, method string) (contractx.PaymentInit, error) {
	f.initCalls++
	if f.initErr != nil {
		return contractx.PaymentInit{}, f.initErr
	}
	return f.payment, nil
}

func (f *fakeOrders) ProcessPayment(ctx context.Context, paymentID string, details map[string]any) (contractx.PaymentResult, error) {
	return f.result, nil
}

func (f *fakeOrders) Get(ctx context.Context, orderID string) (contractx.Order, error) {
	return f.order, nil
}

type fakeLoyalty struct {
	eligibility contractx.Eligibility
	err         error
}

func (f *fakeLoyalty) CheckEligibility(ctx context.Context, customerID string, items []contractx.CartItem) (contractx.Eligibility, error) {
	if f.err != nil {
		return contractx.Eligibility{}, f.err
	}
	return f.eligibility, nil
}

func newTestProcessor(t *testing.T, recs *fakeRecs, carts *fakeCarts, orders *fakeOrders, loyalty *fakeLoyalty) *Processor {
	t.Helper()
	p, err := NewProcessor(recs, carts, orders, loyalty)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	return p
}

func TestProcessSkipsTaskMissingRequiredParams(t *testing.T) {
	t.Parallel()

	recs := &fakeRecs{recs: []contractx.Recommendation{{SKU: "DRS-001"}}}
	carts := &fakeCarts{}
	p := newTestProcessor(t, recs, carts, &fakeOrders{}, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "add a dress", []contractx.Task{
		{Type: contractx.TaskAddToCart, Params: map[string]any{"quantity": 2}},
		{Type: contractx.TaskRecommendProducts},
	})

	if _, ok := results["cart_update"]; ok {
		t.Fatalf("skipped task must leave no result, got %v", results)
	}
	if _, ok := results["error_ADD_TO_CART"]; ok {
		t.Fatalf("skipped task must leave no error entry, got %v", results)
	}
	if len(carts.added) != 0 {
		t.Fatalf("cart must not be touched, got %v", carts.added)
	}
	if _, ok := results["recommendations"]; !ok {
		t.Fatalf("later task must still run, got %v", results)
	}
}

func TestProcessIsolatesTaskFailures(t *testing.T) {
	t.Parallel()

	recs := &fakeRecs{err: errors.New("catalog down")}
	carts := &fakeCarts{update: contractx.CartUpdate{Status: "added", SKU: "DRS-001", ItemCount: 1}}
	p := newTestProcessor(t, recs, carts, &fakeOrders{}, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "msg", []contractx.Task{
		{Type: contractx.TaskRecommendProducts},
		{Type: contractx.TaskAddToCart, Params: map[string]any{"sku": "DRS-001"}},
	})

	if results["error_RECOMMEND_PRODUCTS"] != "catalog down" {
		t.Fatalf("expected isolated error entry, got %v", results)
	}
	update, ok := results["cart_update"].(contractx.CartUpdate)
	if !ok || update.SKU != "DRS-001" {
		t.Fatalf("expected add to proceed after failure, got %v", results)
	}
}

func TestProcessIgnoresUnknownTaskType(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t, &fakeRecs{}, &fakeCarts{}, &fakeOrders{}, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "msg", []contractx.Task{
		{Type: contractx.TaskType("TELEPORT_ITEMS")},
	})
	if len(results) != 0 {
		t.Fatalf("unknown task must be inert, got %v", results)
	}
}

func TestProcessAddToCartDefaults(t *testing.T) {
	t.Parallel()

	carts := &fakeCarts{update: contractx.CartUpdate{Status: "added", SKU: "TSH-001", ItemCount: 1}}
	p := newTestProcessor(t, &fakeRecs{}, carts, &fakeOrders{}, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "msg", []contractx.Task{
		{Type: contractx.TaskAddToCart, Params: map[string]any{"sku": "TSH-001", "quantity": float64(3)}},
	})
	if _, ok := results["cart_update"]; !ok {
		t.Fatalf("expected cart_update, got %v", results)
	}
	if len(carts.added) != 1 {
		t.Fatalf("expected one add, got %d", len(carts.added))
	}
}

func TestProcessCreateOrderCompound(t *testing.T) {
	t.Parallel()

	carts := &fakeCarts{summary: contractx.CartSummary{
		Items:  []contractx.CartItem{{SKU: "DRS-001", Price: 2499, Quantity: 1}},
		Totals: contractx.CartTotals{Subtotal: 2499, Total: 3048.82},
	}}
	orders := &fakeOrders{
		order:   contractx.Order{OrderID: "ORD-20260831-ABCDEF", Status: "pending_payment"},
		payment: contractx.PaymentInit{PaymentID: "PAY-12345678", Status: "initiated"},
	}
	p := newTestProcessor(t, &fakeRecs{}, carts, orders, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "checkout", []contractx.Task{
		{Type: contractx.TaskCreateOrder},
	})

	order, ok := results["order"].(contractx.Order)
	if !ok || order.OrderID != "ORD-20260831-ABCDEF" {
		t.Fatalf("expected order result, got %v", results)
	}
	payment, ok := results["payment"].(contractx.PaymentInit)
	if !ok || payment.Status != "initiated" {
		t.Fatalf("expected payment init result, got %v", results)
	}
}

func TestProcessCreateOrderFailureSkipsPaymentInit(t *testing.T) {
	t.Parallel()

	carts := &fakeCarts{}
	orders := &fakeOrders{createErr: contractx.ErrEmptyCart}
	p := newTestProcessor(t, &fakeRecs{}, carts, orders, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "checkout", []contractx.Task{
		{Type: contractx.TaskCreateOrder},
	})

	if _, ok := results["error_CREATE_ORDER"]; !ok {
		t.Fatalf("expected create order error entry, got %v", results)
	}
	if orders.initCalls != 0 {
		t.Fatalf("payment init must not run after failed create, got %d calls", orders.initCalls)
	}
	if _, ok := results["order"]; ok {
		t.Fatalf("failed create must leave no order entry, got %v", results)
	}
}

func TestProcessCreateOrderPaymentInitFailureRecorded(t *testing.T) {
	t.Parallel()

	carts := &fakeCarts{summary: contractx.CartSummary{
		Items: []contractx.CartItem{{SKU: "DRS-001", Price: 2499, Quantity: 1}},
	}}
	orders := &fakeOrders{
		order:   contractx.Order{OrderID: "ORD-1"},
		initErr: errors.New("gateway down"),
	}
	p := newTestProcessor(t, &fakeRecs{}, carts, orders, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "checkout", []contractx.Task{
		{Type: contractx.TaskCreateOrder},
	})

	if _, ok := results["order"]; !ok {
		t.Fatalf("created order must stay in results, got %v", results)
	}
	errMsg, ok := results["error_CREATE_ORDER"].(string)
	if !ok {
		t.Fatalf("expected error entry, got %v", results)
	}
	if errMsg == "" {
		t.Fatalf("expected non-empty error message")
	}
}

func TestProcessPaymentRequiresID(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{result: contractx.PaymentResult{Status: "success"}}
	p := newTestProcessor(t, &fakeRecs{}, &fakeCarts{}, orders, &fakeLoyalty{})

	results := p.Process(context.Background(), "c1", "pay", []contractx.Task{
		{Type: contractx.TaskProcessPayment},
	})
	if len(results) != 0 {
		t.Fatalf("expected silent skip, got %v", results)
	}

	results = p.Process(context.Background(), "c1", "pay", []contractx.Task{
		{Type: contractx.TaskProcessPayment, Params: map[string]any{"payment_id": "PAY-1"}},
	})
	if _, ok := results["payment_result"]; !ok {
		t.Fatalf("expected payment_result, got %v", results)
	}
}

func TestProcessApplyDiscount(t *testing.T) {
	t.Parallel()

	loyalty := &fakeLoyalty{eligibility: contractx.Eligibility{Eligible: true, Tier: "Gold", DiscountAmount: 250}}
	p := newTestProcessor(t, &fakeRecs{}, &fakeCarts{}, &fakeOrders{}, loyalty)

	results := p.Process(context.Background(), "c1", "discount?", []contractx.Task{
		{Type: contractx.TaskApplyDiscount},
	})
	eligibility, ok := results["discount"].(contractx.Eligibility)
	if !ok || eligibility.Tier != "Gold" {
		t.Fatalf("expected discount result, got %v", results)
	}
}

func TestNewProcessorRejectsNilCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewProcessor(nil, &fakeCarts{}, &fakeOrders{}, &fakeLoyalty{}); err == nil {
		t.Fatalf("expected error for nil recommendation service")
	}
	if _, err := NewProcessor(&fakeRecs{}, &fakeCarts{}, &fakeOrders{}, nil); err == nil {
		t.Fatalf("expected error for nil loyalty service")
	}
}
