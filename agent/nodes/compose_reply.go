package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/wearly/concierge/agent/contract"
	replyx "github.com/wearly/concierge/agent/reply"
)

func ComposeReply(ctx context.Context, in *GraphState, composer *replyx.Composer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Reply = composer.Compose(ctx, in.Req.Message, in.Results)
	return in, nil
}
