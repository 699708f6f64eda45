package toolservice

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

// Tool names exposed to decision-makers.
const (
	ToolFindVendors = "catalog.find_vendors"
	ToolOffer       = "negotiation.offer"
	ToolInsights    = "history.insights"
	ToolRecord      = "history.record"
	ToolHistory     = "history.list"
)

// Execute implements contract.ToolGateway. Tool-level problems (bad args,
// rejected validation) come back inside the ToolResult so the decision-maker
// can react; only infrastructure failures surface as errors.
func (s *Service) Execute(ctx context.Context, phase string, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.executeOne(ctx, req)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) executeOne(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	switch req.Tool {
	case ToolFindVendors:
		item := stringArg(req.Args, "item")
		quantity := intArg(req.Args, "quantity")
		snaps, err := s.FindVendors(ctx, item, quantity)
		return wrap(req.Tool, snaps, err)

	case ToolOffer:
		res, err := s.Offer(ctx, OfferInput{
			Vendor:        stringArg(req.Args, "vendor"),
			Item:          stringArg(req.Args, "item"),
			Quantity:      intArg(req.Args, "quantity"),
			ProposedPrice: floatArg(req.Args, "proposed_price"),
		})
		return wrap(req.Tool, res, err)

	case ToolInsights:
		insight, err := s.Insights(ctx, stringArg(req.Args, "item"))
		return wrap(req.Tool, insight, err)

	case ToolRecord:
		res, err := s.Record(ctx, RecordInput{
			Vendor:    stringArg(req.Args, "vendor"),
			Item:      stringArg(req.Args, "item"),
			Quantity:  intArg(req.Args, "quantity"),
			Price:     floatArg(req.Args, "price"),
			Freshness: floatArg(req.Args, "freshness"),
		})
		return wrap(req.Tool, res, err)

	case ToolHistory:
		recs, err := s.History(ctx, stringArg(req.Args, "item"))
		return wrap(req.Tool, recs, err)

	default:
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: fmt.Sprintf("tool=%s is not available", req.Tool),
		}, nil
	}
}

// wrap folds domain errors into the result; persistence failures stay errors
// because the orchestrator must abort rather than guess at state.
func wrap(tool string, result any, err error) (contractx.ToolResult, error) {
	if err != nil {
		if errors.Is(err, contractx.ErrPersistence) {
			return contractx.ToolResult{}, err
		}
		return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
	}
	return contractx.ToolResult{Tool: tool, Result: result}, nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
