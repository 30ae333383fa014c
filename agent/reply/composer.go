package reply

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/wearly/concierge/agent/contract"
	promptx "github.com/wearly/concierge/agent/prompt"
)

const maxSummaryRecommendations = 3

// Composer turns the turn's result set into a short conversational reply.
// Model failures degrade to a canned sentence; Compose never fails the
// turn.
type Composer struct {
	llm          contractx.LLMClient
	systemPrompt string
}

func NewComposer(llm contractx.LLMClient) *Composer {
	return &Composer{
		llm:          llm,
		systemPrompt: promptx.LoadPromptSet().Reply,
	}
}

func (c *Composer) Compose(ctx context.Context, userMessage string, results contractx.TaskResults) string {
	summary := Summarize(results)

	raw, err := c.llm.Complete(ctx, []contractx.ChatMessage{
		{Role: contractx.RoleSystem, Content: c.systemPrompt},
		{Role: contractx.RoleUser, Content: buildUserPrompt(userMessage, summary)},
	})
	if err != nil {
		log.Warn().Err(err).Msg("reply model call failed, using canned fallback")
		return FallbackReply(results)
	}

	cleaned := Cleanup(raw)
	if cleaned == "" {
		return FallbackReply(results)
	}
	return cleaned
}

func buildUserPrompt(userMessage, summary string) string {
	var b strings.Builder
	b.WriteString("User said: ")
	b.WriteString(userMessage)
	b.WriteString("\n\nTool results:\n")
	if summary == "" {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(summary)
	}
	b.WriteString("\nNow write the reply to send back to the user.")
	return b.String()
}

// Summarize renders the result set as a deterministic plain-text summary
// for the reply model: up to three recommendations, cart lines with line
// totals, fresh order and payment identifiers, and discount terms.
func Summarize(results contractx.TaskResults) string {
	var b strings.Builder

	if recs, ok := results["recommendations"].([]contractx.Recommendation); ok && len(recs) > 0 {
		b.WriteString("Recommended products:\n")
		for i, r := range recs {
			if i == maxSummaryRecommendations {
				break
			}
			fmt.Fprintf(&b, "- %s by %s, %s %d (sku %s)\n", r.Name, r.Brand, r.Currency, r.Price, r.SKU)
		}
	}

	if update, ok := results["cart_update"].(contractx.CartUpdate); ok {
		fmt.Fprintf(&b, "Cart %s: %s, %d item(s) in cart now.\n", update.Status, update.SKU, update.ItemCount)
	}

	if cart, ok := results["cart"].(contractx.CartSummary); ok {
		b.WriteString("Cart contents:\n")
		for _, item := range cart.Items {
			fmt.Fprintf(&b, "- %s x%d (%s) = %.0f\n", item.Name, item.Quantity, item.Size, float64(item.Price*item.Quantity))
		}
		fmt.Fprintf(&b, "Subtotal %.0f, tax %.0f, shipping %.0f, total %.0f.\n",
			cart.Totals.Subtotal, cart.Totals.Tax, cart.Totals.Shipping, cart.Totals.Total)
	}

	if order, ok := results["order"].(contractx.Order); ok {
		fmt.Fprintf(&b, "Order %s created, amount %.0f, status %s.\n", order.OrderID, order.Total, order.Status)
	}

	if payment, ok := results["payment"].(contractx.PaymentInit); ok {
		fmt.Fprintf(&b, "Payment %s initiated, pay at %s.\n", payment.PaymentID, payment.RedirectURL)
	}

	if result, ok := results["payment_result"].(contractx.PaymentResult); ok {
		fmt.Fprintf(&b, "Payment %s: %s. %s\n", result.PaymentID, result.Status, result.Message)
	}

	if order, ok := results["order_details"].(contractx.Order); ok {
		fmt.Fprintf(&b, "Order %s is %s, amount %.0f.\n", order.OrderID, order.Status, order.Total)
	}

	if discount, ok := results["discount"].(contractx.Eligibility); ok {
		if discount.Eligible {
			fmt.Fprintf(&b, "Discount: %.0f%% off (%.0f), payable %.0f. %s\n",
				discount.DiscountPercent, discount.DiscountAmount, discount.PayableAfter, discount.Message)
		} else {
			fmt.Fprintf(&b, "No discount available. %s\n", discount.Message)
		}
	}

	var errKeys []string
	for key := range results {
		if strings.HasPrefix(key, "error_") {
			errKeys = append(errKeys, key)
		}
	}
	sort.Strings(errKeys)
	for _, key := range errKeys {
		fmt.Fprintf(&b, "Problem with %s: %v\n", strings.TrimPrefix(key, "error_"), results[key])
	}

	return b.String()
}

// FallbackReply derives a canned sentence from result counts when the
// reply model is unavailable.
func FallbackReply(results contractx.TaskResults) string {
	if recs, ok := results["recommendations"].([]contractx.Recommendation); ok && len(recs) > 0 {
		return fmt.Sprintf("I found %d products you might like. Want details on any of them?", len(recs))
	}
	if payment, ok := results["payment"].(contractx.PaymentInit); ok {
		return fmt.Sprintf("Your order is in! Complete the payment at %s.", payment.RedirectURL)
	}
	if cart, ok := results["cart"].(contractx.CartSummary); ok {
		return fmt.Sprintf("Your cart has %d item(s) totalling %.0f.", cart.Totals.ItemCount, cart.Totals.Total)
	}
	if _, ok := results["cart_update"].(contractx.CartUpdate); ok {
		return "Done, I've updated your cart. Anything else?"
	}
	return "Got it. How else can I help you shop today?"
}
