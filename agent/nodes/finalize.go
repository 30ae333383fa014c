package turnnode

import (
	"fmt"

	contractx "github.com/wearly/concierge/agent/contract"
)

func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	results := in.Results
	if results == nil {
		results = contractx.TaskResults{}
	}

	return GraphOutput{
		Result: contractx.TurnResult{
			Reply:         in.Reply,
			Intent:        in.Decision.Intent,
			Tasks:         in.Decision.Tasks,
			Results:       results,
			PersistFailed: in.PersistFailed,
		},
	}, nil
}
