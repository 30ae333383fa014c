package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/wearly/concierge/agent/contract"
)

// errSkip marks a task whose required parameters are missing. Skipped
// tasks leave no result entry and no error entry.
var errSkip = errors.New("task skipped")

// turnContext carries the per-turn inputs every handler may need.
type turnContext struct {
	CustomerID string
	RawMessage string
}

type handler func(ctx context.Context, tc turnContext, params map[string]any, results contractx.TaskResults) error

// Processor executes a router-given task list strictly in order. Each
// task runs inside its own failure boundary: a failing collaborator call
// records error_<type> and execution continues with the next task.
type Processor struct {
	handlers map[contractx.TaskType]handler
}

func NewProcessor(
	recommendations contractx.RecommendationService,
	carts contractx.CartService,
	orders contractx.OrderService,
	loyalty contractx.LoyaltyService,
) (*Processor, error) {
	if recommendations == nil {
		return nil, errors.New("recommendation service is required")
	}
	if carts == nil {
		return nil, errors.New("cart service is required")
	}
	if orders == nil {
		return nil, errors.New("order service is required")
	}
	if loyalty == nil {
		return nil, errors.New("loyalty service is required")
	}

	p := &Processor{}
	p.handlers = map[contractx.TaskType]handler{
		contractx.TaskRecommendProducts: recommendHandler(recommendations),
		contractx.TaskAddToCart:         addToCartHandler(carts),
		contractx.TaskViewCart:          viewCartHandler(carts),
		contractx.TaskCreateOrder:       createOrderHandler(carts, orders),
		contractx.TaskProcessPayment:    processPaymentHandler(orders),
		contractx.TaskTrackOrder:        trackOrderHandler(orders),
		contractx.TaskApplyDiscount:     applyDiscountHandler(carts, loyalty),
	}
	return p, nil
}

// Process runs the tasks in router order and returns the result set.
// Unknown task types are inert.
func (p *Processor) Process(ctx context.Context, customerID, rawMessage string, tasks []contractx.Task) contractx.TaskResults {
	results := contractx.TaskResults{}
	tc := turnContext{CustomerID: customerID, RawMessage: rawMessage}

	for _, t := range tasks {
		h, ok := p.handlers[t.Type]
		if !ok {
			log.Debug().Str("type", string(t.Type)).Msg("ignoring unknown task type")
			continue
		}

		if err := h(ctx, tc, t.Params, results); err != nil {
			if errors.Is(err, errSkip) {
				log.Debug().Str("type", string(t.Type)).Msg("task skipped, missing required params")
				continue
			}
			log.Warn().Err(err).Str("type", string(t.Type)).Msg("task failed")
			results.SetError(t.Type, err)
		}
	}

	return results
}

func recommendHandler(svc contractx.RecommendationService) handler {
	return func(ctx context.Context, tc turnContext, params map[string]any, results contractx.TaskResults) error {
		recs, err := svc.Recommend(ctx, tc.CustomerID, params, tc.RawMessage)
		if err != nil {
			return err
		}
		results["recommendations"] = recs
		return nil
	}
}

func addToCartHandler(svc contractx.CartService) handler {
	return func(ctx context.Context, tc turnContext, params map[string]any, results contractx.TaskResults) error {
		sku := stringParam(params, "sku")
		if sku == "" {
			return errSkip
		}

		quantity := intParam(params, "quantity")
		if quantity <= 0 {
			quantity = 1
		}
		size := stringParam(params, "size")
		if size == "" {
			size = "M"
		}

		update, err := svc.Add(ctx, tc.CustomerID, sku, quantity, size, stringParam(params, "color"))
		if err != nil {
			return err
		}
		results["cart_update"] = update
		return nil
	}
}

func viewCartHandler(svc contractx.CartService) handler {
	return func(ctx context.Context, tc turnContext, _ map[string]any, results contractx.TaskResults) error {
		summary, err := svc.Summary(ctx, tc.CustomerID)
		if err != nil {
			return err
		}
		results["cart"] = summary
		return nil
	}
}

// createOrderHandler is a deliberate compound step: a successfully
// created order must immediately get a payment-intent record, and payment
// initialization is never attempted when order creation failed.
func createOrderHandler(carts contractx.CartService, orders contractx.OrderService) handler {
	return func(ctx context.Context, tc turnContext, _ map[string]any, results contractx.TaskResults) error {
		summary, err := carts.Summary(ctx, tc.CustomerID)
		if err != nil {
			return err
		}

		order, err := orders.Create(ctx, tc.CustomerID, summary.Items, summary.Totals)
		if err != nil {
			return err
		}
		results["order"] = order

		payment, err := orders.InitPayment(ctx, order.OrderID, "paypal")
		if err != nil {
			return fmt.Errorf("order %s created but payment init failed: %w", order.OrderID, err)
		}
		results["payment"] = payment
		return nil
	}
}

func processPaymentHandler(orders contractx.OrderService) handler {
	return func(ctx context.Context, tc turnContext, params map[string]any, results contractx.TaskResults) error {
		paymentID := stringParam(params, "payment_id")
		if paymentID == "" {
			return errSkip
		}

		details, _ := params["details"].(map[string]any)
		result, err := orders.ProcessPayment(ctx, paymentID, details)
		if err != nil {
			return err
		}
		results["payment_result"] = result
		return nil
	}
}

func trackOrderHandler(orders contractx.OrderService) handler {
	return func(ctx context.Context, tc turnContext, params map[string]any, results contractx.TaskResults) error {
		orderID := stringParam(params, "order_id")
		if orderID == "" {
			return errSkip
		}

		order, err := orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		results["order_details"] = order
		return nil
	}
}

func applyDiscountHandler(carts contractx.CartService, loyalty contractx.LoyaltyService) handler {
	return func(ctx context.Context, tc turnContext, _ map[string]any, results contractx.TaskResults) error {
		summary, err := carts.Summary(ctx, tc.CustomerID)
		if err != nil {
			return err
		}

		eligibility, err := loyalty.CheckEligibility(ctx, tc.CustomerID, summary.Items)
		if err != nil {
			return err
		}
		results["discount"] = eligibility
		return nil
	}
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intParam(params map[string]any, key string) int {
	if params == nil {
		return 0
	}
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
