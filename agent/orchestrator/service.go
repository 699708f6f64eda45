package orchestrator

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
	toolservicex "github.com/seaharbor/procure-agent/agent/toolservice"
)

var (
	ErrInvalidItem     = errors.New("item is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNoApprovalGate  = errors.New("approval policy is required")
)

// Orchestrator drives one procurement through the fixed phase order
// DISCOVER -> RECALL_HISTORY -> NEGOTIATE -> APPROVE -> RECORD -> DONE.
// Judgment lives in the decision-makers; the orchestrator only sequences
// them, moves Tool Service results between phases, and holds the approval
// gate. Every run leaves a full phase trace.
type Orchestrator struct {
	tools   *toolservicex.Service
	gateway contractx.ToolGateway
	models  contractx.Registry

	graphRunner compose.Runnable[RunRequest, RunResult]
}

func New(tools *toolservicex.Service, models contractx.Registry) (*Orchestrator, error) {
	if tools == nil {
		return nil, errors.New("tool service is required")
	}
	if models == nil {
		return nil, errors.New("decision-maker registry is required")
	}

	o := &Orchestrator{
		tools:   tools,
		gateway: tools,
		models:  models,
	}

	graphRunner, err := o.compileRunGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Run executes one procurement. Phase failures come back as a CANCELLED
// result with the failing phase recorded in the trace, not as an error; the
// returned error covers invalid requests and context cancellation only.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	defer o.tools.CloseSessions()

	out, err := o.graphRunner.Invoke(ctx, req)
	if err != nil {
		return RunResult{}, err
	}
	return out, nil
}
