package turn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/wearly/concierge/agent/contract"
	turnnode "github.com/wearly/concierge/agent/nodes"
	replyx "github.com/wearly/concierge/agent/reply"
	routerx "github.com/wearly/concierge/agent/router"
	sessionx "github.com/wearly/concierge/agent/session"
	taskx "github.com/wearly/concierge/agent/task"
)

var (
	ErrInvalidMessage  = turnnode.ErrInvalidMessage
	ErrInvalidSession  = turnnode.ErrInvalidSession
	ErrInvalidCustomer = turnnode.ErrInvalidCustomer
)

const defaultTurnTimeout = 30 * time.Second

type Config struct {
	// TurnTimeout bounds one whole pipeline pass. On expiry the caller
	// gets a timeout error and nothing is persisted.
	TurnTimeout time.Duration
}

// Orchestrator runs one pipeline pass per incoming message:
// routing -> processing -> replying -> done, single pass, no retries.
type Orchestrator struct {
	store    sessionx.Store
	router   *routerx.Router
	tasks    *taskx.Processor
	composer *replyx.Composer

	graphRunner compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput]
	turnTimeout time.Duration
	now         func() time.Time
}

func New(
	store sessionx.Store,
	rtr *routerx.Router,
	proc *taskx.Processor,
	composer *replyx.Composer,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if rtr == nil {
		return nil, errors.New("intent router is required")
	}
	if proc == nil {
		return nil, errors.New("task processor is required")
	}
	if composer == nil {
		return nil, errors.New("reply composer is required")
	}

	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}

	o := &Orchestrator{
		store:       store,
		router:      rtr,
		tasks:       proc,
		composer:    composer,
		turnTimeout: timeout,
		now:         time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn runs one request/reply cycle. Stage-local failures (router
// parse, individual tasks, reply model) degrade inside the graph;
// whole-pipeline outages and the outer timeout surface here.
func (o *Orchestrator) HandleTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	out, err := o.graphRunner.Invoke(ctx, turnnode.GraphInput{Req: req})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return contractx.TurnResult{}, fmt.Errorf("%w: turn exceeded %s", contractx.ErrTimeout, o.turnTimeout)
		}
		return contractx.TurnResult{}, err
	}
	return out.Result, nil
}
