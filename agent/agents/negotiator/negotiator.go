// Package negotiator implements the production decision-makers: LLM-backed
// reasoning agents that choose which Tool Service operations to invoke. The
// core never depends on this package directly, only on contract.DecisionMaker.
package negotiator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
	toolservicex "github.com/seaharbor/procure-agent/agent/toolservice"
)

type decisionMakerImpl struct {
	role             contractx.Role
	toolRunner       compose.Runnable[map[string]any, *schema.Message]
	structuredRunner compose.Runnable[map[string]any, decisionLLMOutput]
	allowedTools     map[string]struct{}
}

type decisionLLMOutput struct {
	Summary      string  `json:"summary"`
	ChosenVendor string  `json:"chosen_vendor,omitempty"`
	TargetPrice  float64 `json:"target_price,omitempty"`
}

func newDecisionMaker(
	ctx context.Context,
	role contractx.Role,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
) (*decisionMakerImpl, error) {
	tools := toolservicex.InfosForRole(role)
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for role=%s: %v", contractx.ErrModelInvoke, role, err)
	}

	toolRunner, err := compileToolPlanningGraph(ctx, toolModel, systemPrompt, string(role)+".tool_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	structuredRunner, err := compileStructuredGraph[decisionLLMOutput](ctx, chatModel, systemPrompt, string(role)+".summary_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	allowedTools := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowedTools[t.Name] = struct{}{}
	}

	return &decisionMakerImpl{
		role:             role,
		toolRunner:       toolRunner,
		structuredRunner: structuredRunner,
		allowedTools:     allowedTools,
	}, nil
}

func (d *decisionMakerImpl) Decide(ctx context.Context, dc contractx.DecisionContext) (contractx.Decision, error) {
	input, err := json.Marshal(dc)
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: marshal decision context: %v", contractx.ErrValidation, err)
	}
	payload := map[string]any{"input": string(input)}

	msg, err := d.toolRunner.Invoke(ctx, payload)
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: role=%s invoke: %v", contractx.ErrModelInvoke, d.role, err)
	}
	if msg == nil {
		return contractx.Decision{}, fmt.Errorf("%w: empty response from role=%s", contractx.ErrSchemaViolation, d.role)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return contractx.Decision{}, err
	}
	if len(toolRequests) > 0 {
		for _, tr := range toolRequests {
			if _, ok := d.allowedTools[tr.Tool]; !ok {
				return contractx.Decision{}, fmt.Errorf("%w: tool=%s is not allowed for role=%s", contractx.ErrSchemaViolation, tr.Tool, d.role)
			}
		}
		return contractx.Decision{ToolRequests: toolRequests}, nil
	}

	out, err := d.structuredRunner.Invoke(ctx, payload)
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: role=%s summary invoke: %v", contractx.ErrModelInvoke, d.role, err)
	}
	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return contractx.Decision{}, fmt.Errorf("%w: role=%s returned no tool calls and no summary", contractx.ErrSchemaViolation, d.role)
	}

	return contractx.Decision{
		Summary:      summary,
		ChosenVendor: strings.TrimSpace(out.ChosenVendor),
		TargetPrice:  out.TargetPrice,
	}, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
