package contract

import "context"

// LLMClient is the language-model boundary: a list of chat messages in,
// raw completion text out.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type RecommendationService interface {
	Recommend(ctx context.Context, customerID string, params map[string]any, rawMessage string) ([]Recommendation, error)
}

type CartService interface {
	Add(ctx context.Context, customerID, sku string, quantity int, size, color string) (CartUpdate, error)
	Remove(ctx context.Context, customerID, sku, size string) (CartUpdate, error)
	Summary(ctx context.Context, customerID string) (CartSummary, error)
}

type OrderService interface {
	Create(ctx context.Context, customerID string, items []CartItem, totals CartTotals) (Order, error)
	InitPayment(ctx context.Context, orderID, method string) (PaymentInit, error)
	ProcessPayment(ctx context.Context, paymentID string, details map[string]any) (PaymentResult, error)
	Get(ctx context.Context, orderID string) (Order, error)
}

type LoyaltyService interface {
	CheckEligibility(ctx context.Context, customerID string, items []CartItem) (Eligibility, error)
}

// PaymentGateway is the external processor behind ProcessPayment. Capture
// returns the gateway-side status for the attempt.
type PaymentGateway interface {
	Capture(ctx context.Context, paymentID string, amount float64, currency string, details map[string]any) (string, error)
}
