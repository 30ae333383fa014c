package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/wearly/concierge/agent/contract"
	routerx "github.com/wearly/concierge/agent/router"
)

func RouteIntent(ctx context.Context, in *GraphState, rtr *routerx.Router) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Decision = rtr.Route(ctx, in.Req.Message, in.Req.CustomerID, in.Req.Channel)
	return in, nil
}
