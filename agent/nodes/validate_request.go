package turnnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/wearly/concierge/agent/contract"
	sessionx "github.com/wearly/concierge/agent/session"
)

var (
	ErrInvalidMessage  = errors.New("message is empty")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrInvalidCustomer = errors.New("customer id is empty")
)

type GraphInput struct {
	Req contractx.TurnRequest
}

type GraphOutput struct {
	Result contractx.TurnResult
}

// GraphState is the evolving turn context handed from stage to stage.
type GraphState struct {
	Req contractx.TurnRequest
	Now time.Time

	Session  *sessionx.Session
	Decision contractx.RouterDecision
	Results  contractx.TaskResults

	Reply         string
	PersistFailed bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	req := contractx.TurnRequest{
		SessionID:  strings.TrimSpace(in.Req.SessionID),
		CustomerID: strings.TrimSpace(in.Req.CustomerID),
		Channel:    strings.TrimSpace(in.Req.Channel),
		Message:    strings.TrimSpace(in.Req.Message),
	}

	if req.SessionID == "" {
		return nil, ErrInvalidSession
	}
	if req.CustomerID == "" {
		return nil, ErrInvalidCustomer
	}
	if req.Message == "" {
		return nil, ErrInvalidMessage
	}
	if req.Channel == "" {
		req.Channel = "chat"
	}

	return &GraphState{
		Req: req,
		Now: nowFn().UTC(),
	}, nil
}
