package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/wearly/concierge/agent/contract"
)

const defaultCurrency = "INR"

type paymentRecord struct {
	PaymentID string
	OrderID   string
	Amount    float64
	Currency  string
	Method    string
	Status    string
	CreatedAt time.Time
}

type Option func(*Service)

// WithGateway routes ProcessPayment through an external processor
// instead of the offline simulation.
func WithGateway(gateway contractx.PaymentGateway) Option {
	return func(s *Service) {
		s.gateway = gateway
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service owns orders and their payment records.
type Service struct {
	mu       sync.Mutex
	orders   map[string]*contractx.Order
	payments map[string]*paymentRecord
	gateway  contractx.PaymentGateway
	now      func() time.Time
}

var _ contractx.OrderService = (*Service)(nil)

func NewService(opts ...Option) *Service {
	s := &Service{
		orders:   make(map[string]*contractx.Order),
		payments: make(map[string]*paymentRecord),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Create(ctx context.Context, customerID string, items []contractx.CartItem, totals contractx.CartTotals) (contractx.Order, error) {
	if len(items) == 0 {
		return contractx.Order{}, fmt.Errorf("%w: cannot create order", contractx.ErrEmptyCart)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	order := &contractx.Order{
		OrderID:    newOrderID(now),
		CustomerID: customerID,
		Items:      append([]contractx.CartItem(nil), items...),
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Shipping:   totals.Shipping,
		Total:      totals.Total,
		Status:     "pending_payment",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.orders[order.OrderID] = order
	return *order, nil
}

func (s *Service) InitPayment(ctx context.Context, orderID, method string) (contractx.PaymentInit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return contractx.PaymentInit{}, fmt.Errorf("%w: order %s", contractx.ErrNotFound, orderID)
	}

	if strings.TrimSpace(method) == "" {
		method = "paypal"
	}

	payment := &paymentRecord{
		PaymentID: newPaymentID(),
		OrderID:   orderID,
		Amount:    order.Total,
		Currency:  defaultCurrency,
		Method:    method,
		Status:    "initiated",
		CreatedAt: s.now().UTC(),
	}
	s.payments[payment.PaymentID] = payment

	return contractx.PaymentInit{
		PaymentID:   payment.PaymentID,
		OrderID:     orderID,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Method:      method,
		Status:      payment.Status,
		RedirectURL: fmt.Sprintf("/api/payments/%s/capture", payment.PaymentID),
	}, nil
}

func (s *Service) ProcessPayment(ctx context.Context, paymentID string, details map[string]any) (contractx.PaymentResult, error) {
	s.mu.Lock()
	payment, ok := s.payments[paymentID]
	s.mu.Unlock()
	if !ok {
		return contractx.PaymentResult{}, fmt.Errorf("%w: payment %s", contractx.ErrNotFound, paymentID)
	}

	status, err := s.capture(ctx, payment, details)
	if err != nil {
		return contractx.PaymentResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if status != "success" {
		payment.Status = "failed"
		return contractx.PaymentResult{
			Status:    "failed",
			PaymentID: paymentID,
			OrderID:   payment.OrderID,
			Message:   "Payment failed. Please try again.",
		}, nil
	}

	payment.Status = "completed"
	if order, ok := s.orders[payment.OrderID]; ok {
		order.Status = "confirmed"
		order.PaymentID = paymentID
		order.UpdatedAt = s.now().UTC()
	}

	return contractx.PaymentResult{
		Status:    "success",
		PaymentID: paymentID,
		OrderID:   payment.OrderID,
		Message:   "Payment successful! Your order has been confirmed.",
	}, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (contractx.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return contractx.Order{}, fmt.Errorf("%w: order %s", contractx.ErrNotFound, orderID)
	}
	return *order, nil
}

func (s *Service) capture(ctx context.Context, payment *paymentRecord, details map[string]any) (string, error) {
	if s.gateway != nil {
		return s.gateway.Capture(ctx, payment.PaymentID, payment.Amount, payment.Currency, details)
	}
	// Offline simulation: caller-provided status wins, default success.
	if v, ok := details["status"].(string); ok && v != "" {
		return v, nil
	}
	return "success", nil
}

func newOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}

func newPaymentID() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}
