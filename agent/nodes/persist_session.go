package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/wearly/concierge/agent/contract"
	sessionx "github.com/wearly/concierge/agent/session"
)

// PersistSession appends the turn's messages and saves the session. A
// save failure does not fail the turn: the reply is already composed, so
// the failure is logged and flagged on the result instead. An expired
// turn deadline never persists a partial turn.
func PersistSession(ctx context.Context, in *GraphState, store sessionx.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: turn deadline expired before persistence", contractx.ErrTimeout)
	}

	in.Session.AppendMessage(contractx.RoleUser, in.Req.Message)
	in.Session.AppendMessage(contractx.RoleAssistant, in.Reply)
	in.Session.LastIntent = in.Decision.Intent
	in.Session.LastResults = in.Results
	in.Session.Touch(in.Now)

	if err := store.Save(ctx, in.Session); err != nil {
		log.Error().Err(err).Str("session_id", in.Req.SessionID).
			Msg("session save failed, continuity for the next turn is compromised")
		in.PersistFailed = true
	}
	return in, nil
}
