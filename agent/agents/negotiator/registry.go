package negotiator

import (
	"context"
	"fmt"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
	llmx "github.com/seaharbor/procure-agent/agent/llm"
	promptx "github.com/seaharbor/procure-agent/agent/prompt"
)

type registryImpl struct {
	scout      contractx.DecisionMaker
	analyst    contractx.DecisionMaker
	negotiator contractx.DecisionMaker
	clerk      contractx.DecisionMaker
}

func (r *registryImpl) Scout() contractx.DecisionMaker      { return r.scout }
func (r *registryImpl) Analyst() contractx.DecisionMaker    { return r.analyst }
func (r *registryImpl) Negotiator() contractx.DecisionMaker { return r.negotiator }
func (r *registryImpl) Clerk() contractx.DecisionMaker      { return r.clerk }

func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	build := func(role contractx.Role, systemPrompt string) (contractx.DecisionMaker, error) {
		modelCfg := cfg.OpenRouterFor(role)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for role=%s: %v", contractx.ErrModelInvoke, role, err)
		}
		return newDecisionMaker(ctx, role, chatModel, systemPrompt)
	}

	scout, err := build(contractx.RoleScout, prompts.Scout)
	if err != nil {
		return nil, err
	}
	analyst, err := build(contractx.RoleAnalyst, prompts.Analyst)
	if err != nil {
		return nil, err
	}
	neg, err := build(contractx.RoleNegotiator, prompts.Negotiator)
	if err != nil {
		return nil, err
	}
	clerk, err := build(contractx.RoleClerk, prompts.Clerk)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		scout:      scout,
		analyst:    analyst,
		negotiator: neg,
		clerk:      clerk,
	}, nil
}
