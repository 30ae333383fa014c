package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/wearly/concierge/agent/contract"
	taskx "github.com/wearly/concierge/agent/task"
)

func ProcessTasks(ctx context.Context, in *GraphState, proc *taskx.Processor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Results = proc.Process(ctx, in.Req.CustomerID, in.Req.Message, in.Decision.Tasks)
	return in, nil
}
