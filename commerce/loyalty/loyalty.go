package loyalty

import (
	"context"
	"fmt"

	contractx "github.com/wearly/concierge/agent/contract"
)

type tierRule struct {
	MinSubtotal float64
	Percent     float64
	Cap         float64
}

var tierRules = map[string]tierRule{
	"Bronze": {MinSubtotal: 2000, Percent: 5, Cap: 500},
	"Silver": {MinSubtotal: 1500, Percent: 7.5, Cap: 750},
	"Gold":   {MinSubtotal: 1000, Percent: 10, Cap: 1000},
}

// Service decides per-tier discount eligibility against the cart subtotal.
// Unknown customers are treated as Bronze.
type Service struct {
	tiers map[string]string
}

var _ contractx.LoyaltyService = (*Service)(nil)

func NewService(tiers map[string]string) *Service {
	if tiers == nil {
		tiers = make(map[string]string)
	}
	return &Service{tiers: tiers}
}

func (s *Service) CheckEligibility(ctx context.Context, customerID string, items []contractx.CartItem) (contractx.Eligibility, error) {
	tier, ok := s.tiers[customerID]
	if !ok {
		tier = "Bronze"
	}
	rule, ok := tierRules[tier]
	if !ok {
		tier = "Bronze"
		rule = tierRules[tier]
	}

	var subtotal float64
	for _, item := range items {
		subtotal += float64(item.Price * item.Quantity)
	}

	if subtotal < rule.MinSubtotal {
		return contractx.Eligibility{
			Eligible: false,
			Tier:     tier,
			Message:  fmt.Sprintf("Add items worth %.0f more to unlock your %s discount.", rule.MinSubtotal-subtotal, tier),
		}, nil
	}

	discount := subtotal * rule.Percent / 100
	if discount > rule.Cap {
		discount = rule.Cap
	}

	return contractx.Eligibility{
		Eligible:        true,
		Tier:            tier,
		DiscountPercent: rule.Percent,
		DiscountAmount:  discount,
		PayableAfter:    subtotal - discount,
		Message:         fmt.Sprintf("%s member discount of %.2f applied.", tier, discount),
	}, nil
}
