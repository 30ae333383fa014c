package turnnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/wearly/concierge/agent/contract"
	sessionx "github.com/wearly/concierge/agent/session"
)

// LoadSession fetches the conversation state, creating a fresh record on
// first contact. A store outage is fatal to the turn.
func LoadSession(ctx context.Context, in *GraphState, store sessionx.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Get(ctx, in.Req.SessionID)
	if err != nil {
		if !errors.Is(err, contractx.ErrNotFound) {
			return nil, err
		}
		sess = sessionx.New(in.Req.SessionID, in.Req.CustomerID, in.Req.Channel, in.Now)
	}

	// Channel can change between turns for the same session.
	sess.Channel = in.Req.Channel
	in.Session = sess
	return in, nil
}
