package contract

import "context"

type DecisionMaker interface {
	Decide(ctx context.Context, dc DecisionContext) (Decision, error)
}

type Registry interface {
	Scout() DecisionMaker
	Analyst() DecisionMaker
	Negotiator() DecisionMaker
	Clerk() DecisionMaker
}

type ToolGateway interface {
	Execute(ctx context.Context, phase string, reqs []ToolRequest) ([]ToolResult, error)
}

// ApprovalPolicy decides whether a negotiated deal may be persisted.
// Implementations range from an auto-approve flag to a human prompt.
type ApprovalPolicy interface {
	Approve(ctx context.Context, proposal DealProposal) (bool, error)
}

type ApprovalFunc func(ctx context.Context, proposal DealProposal) (bool, error)

func (f ApprovalFunc) Approve(ctx context.Context, proposal DealProposal) (bool, error) {
	return f(ctx, proposal)
}

// AutoApprove approves every proposal when allow is true, rejects otherwise.
func AutoApprove(allow bool) ApprovalPolicy {
	return ApprovalFunc(func(context.Context, DealProposal) (bool, error) {
		return allow, nil
	})
}
