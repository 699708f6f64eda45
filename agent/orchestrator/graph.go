package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (o *Orchestrator) compileRunGraph(
	ctx context.Context,
) (compose.Runnable[RunRequest, RunResult], error) {
	graph := compose.NewGraph[RunRequest, RunResult]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in RunRequest) (*graphState, error) {
			return validateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("discover",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return o.discover(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node discover: %w", err)
	}

	if err := graph.AddLambdaNode("recall_history",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return o.recallHistory(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node recall_history: %w", err)
	}

	if err := graph.AddLambdaNode("negotiate",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return o.negotiate(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node negotiate: %w", err)
	}

	if err := graph.AddLambdaNode("approve",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return o.approve(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node approve: %w", err)
	}

	if err := graph.AddLambdaNode("record",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return o.record(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (RunResult, error) {
			return finalize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "discover"},
		{"discover", "recall_history"},
		{"recall_history", "negotiate"},
		{"negotiate", "approve"},
		{"approve", "record"},
		{"record", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.run"))
	if err != nil {
		return nil, fmt.Errorf("compile run graph: %w", err)
	}
	return runner, nil
}
