package recommend

import (
	"context"
	"sort"
	"strings"

	contractx "github.com/wearly/concierge/agent/contract"
	catalogx "github.com/wearly/concierge/commerce/catalog"
)

const defaultLimit = 5

// Service ranks catalog products against the extracted filters.
type Service struct {
	repo  catalogx.Repository
	limit int
}

var _ contractx.RecommendationService = (*Service)(nil)

func NewService(repo catalogx.Repository) *Service {
	return &Service{repo: repo, limit: defaultLimit}
}

func (s *Service) Recommend(ctx context.Context, customerID string, params map[string]any, rawMessage string) ([]contractx.Recommendation, error) {
	products, err := s.repo.List(ctx, filterFromParams(params))
	if err != nil {
		return nil, err
	}

	type scored struct {
		score   int
		product catalogx.Product
	}
	ranked := make([]scored, 0, len(products))
	for _, p := range products {
		score := 0
		for _, tag := range p.Tags {
			switch tag {
			case "bestseller":
				score += 10
			case "new_arrival":
				score += 5
			}
		}
		ranked = append(ranked, scored{score: score, product: p})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	limit := s.limit
	if len(ranked) < limit {
		limit = len(ranked)
	}

	out := make([]contractx.Recommendation, 0, limit)
	for _, r := range ranked[:limit] {
		rec := contractx.Recommendation{
			SKU:      r.product.SKU,
			Name:     r.product.Name,
			Brand:    r.product.Brand,
			Price:    r.product.Price,
			Currency: r.product.Currency,
		}
		if len(r.product.Images) > 0 {
			rec.Image = r.product.Images[0]
		}
		out = append(out, rec)
	}
	return out, nil
}

func filterFromParams(params map[string]any) catalogx.Filter {
	return catalogx.Filter{
		Category:    stringValue(params, "category"),
		SubCategory: stringValue(params, "sub_category"),
		Color:       stringValue(params, "color"),
		MaxPrice:    intValue(params, "max_price"),
	}
}

func stringValue(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intValue(params map[string]any, key string) int {
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
