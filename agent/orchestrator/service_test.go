package orchestrator

import (
	"context"
	"fmt"
	"testing"

	catalogx "github.com/seaharbor/procure-agent/agent/catalog"
	contractx "github.com/seaharbor/procure-agent/agent/contract"
	historyx "github.com/seaharbor/procure-agent/agent/history"
	learningx "github.com/seaharbor/procure-agent/agent/learning"
	toolservicex "github.com/seaharbor/procure-agent/agent/toolservice"
)

// fakeDecisionMaker replays a scripted sequence of decisions.
type fakeDecisionMaker struct {
	role    contractx.Role
	script  []contractx.Decision
	cursor  int
	lastCtx contractx.DecisionContext
}

func (f *fakeDecisionMaker) Decide(_ context.Context, dc contractx.DecisionContext) (contractx.Decision, error) {
	f.lastCtx = dc
	if f.cursor >= len(f.script) {
		return contractx.Decision{}, fmt.Errorf("%s: script exhausted after %d decisions", f.role, f.cursor)
	}
	d := f.script[f.cursor]
	f.cursor++
	return d, nil
}

type fakeRegistry struct {
	scout      *fakeDecisionMaker
	analyst    *fakeDecisionMaker
	negotiator *fakeDecisionMaker
	clerk      *fakeDecisionMaker
}

func (r *fakeRegistry) Scout() contractx.DecisionMaker      { return r.scout }
func (r *fakeRegistry) Analyst() contractx.DecisionMaker    { return r.analyst }
func (r *fakeRegistry) Negotiator() contractx.DecisionMaker { return r.negotiator }
func (r *fakeRegistry) Clerk() contractx.DecisionMaker      { return r.clerk }

func offerDecision(vendor string, price float64) contractx.Decision {
	return contractx.Decision{ToolRequests: []contractx.ToolRequest{{
		Tool: toolservicex.ToolOffer,
		Args: map[string]any{
			"vendor":         vendor,
			"item":           "salmon",
			"quantity":       float64(10),
			"proposed_price": price,
		},
	}}}
}

func newTestRegistry(t *testing.T, offers []float64) *fakeRegistry {
	t.Helper()

	negotiatorScript := make([]contractx.Decision, 0, len(offers)+1)
	for _, price := range offers {
		negotiatorScript = append(negotiatorScript, offerDecision("Tsukiji Direct", price))
	}
	negotiatorScript = append(negotiatorScript, contractx.Decision{Summary: "negotiation closed"})

	return &fakeRegistry{
		scout: &fakeDecisionMaker{role: contractx.RoleScout, script: []contractx.Decision{
			{ToolRequests: []contractx.ToolRequest{{
				Tool: toolservicex.ToolFindVendors,
				Args: map[string]any{"item": "salmon", "quantity": float64(10)},
			}}},
			{Summary: "Tsukiji Direct carries the freshest salmon", ChosenVendor: "Tsukiji Direct"},
		}},
		analyst: &fakeDecisionMaker{role: contractx.RoleAnalyst, script: []contractx.Decision{
			{ToolRequests: []contractx.ToolRequest{{
				Tool: toolservicex.ToolInsights,
				Args: map[string]any{"item": "salmon"},
			}}},
			{Summary: "no prior purchases for salmon"},
		}},
		negotiator: &fakeDecisionMaker{role: contractx.RoleNegotiator, script: negotiatorScript},
		clerk: &fakeDecisionMaker{role: contractx.RoleClerk, script: []contractx.Decision{
			{ToolRequests: []contractx.ToolRequest{{
				Tool: toolservicex.ToolRecord,
				Args: map[string]any{
					"vendor":    "Tsukiji Direct",
					"item":      "salmon",
					"quantity":  float64(10),
					"price":     26.43,
					"freshness": 9.2,
				},
			}}},
			{Summary: "deal recorded"},
		}},
	}
}

func newTestOrchestrator(t *testing.T, registry contractx.Registry) (*Orchestrator, *toolservicex.Service) {
	t.Helper()

	tools, err := toolservicex.New(catalogx.NewStaticCatalog(catalogx.DefaultSeed()), historyx.NewMemStore())
	if err != nil {
		t.Fatalf("toolservice.New() error = %v", err)
	}
	orch, err := New(tools, registry)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return orch, tools
}

func TestRunCompleted(t *testing.T) {
	registry := newTestRegistry(t, []float64{23.80, 24.85, 26.43})
	orch, tools := newTestOrchestrator(t, registry)

	result, err := orch.Run(context.Background(), RunRequest{
		Item:        "salmon",
		Quantity:    10,
		Budget:      300,
		TargetPrice: 24,
		Approval:    contractx.AutoApprove(true),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != RunCompleted {
		t.Fatalf("expected COMPLETED, got %s (trace: %+v)", result.Status, result.Trace)
	}
	if result.FinalDeal == nil {
		t.Fatal("expected a final deal")
	}
	if result.FinalDeal.Vendor != "Tsukiji Direct" || result.FinalDeal.UnitPrice != 26.43 {
		t.Fatalf("unexpected deal: %+v", result.FinalDeal)
	}
	if result.FinalDeal.Total != 264.3 {
		t.Fatalf("expected total 264.3, got %v", result.FinalDeal.Total)
	}
	if result.FinalDeal.RecordID == "" {
		t.Fatal("expected a record id on the final deal")
	}

	wantPhases := []Phase{PhaseDiscover, PhaseRecallHistory, PhaseNegotiate, PhaseApprove, PhaseRecord}
	if len(result.Trace) != len(wantPhases) {
		t.Fatalf("expected %d trace entries, got %d: %+v", len(wantPhases), len(result.Trace), result.Trace)
	}
	for i, phase := range wantPhases {
		if result.Trace[i].Phase != phase {
			t.Fatalf("trace[%d] = %s, want %s", i, result.Trace[i].Phase, phase)
		}
		if result.Trace[i].Err != "" {
			t.Fatalf("trace[%d] carries error %q", i, result.Trace[i].Err)
		}
	}

	// The recorded deal now feeds future runs through the learning store.
	insight, err := tools.Insights(context.Background(), "salmon")
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if insight.Status != learningx.HasHistory || insight.Count != 1 {
		t.Fatalf("expected HAS_HISTORY count 1, got %+v", insight)
	}
	if insight.BestVendor != "Tsukiji Direct" || insight.AvgPrice != 26.43 {
		t.Fatalf("unexpected insight: %+v", insight)
	}
}

func TestRunDeclinedByApproval(t *testing.T) {
	registry := newTestRegistry(t, []float64{28.00})
	orch, tools := newTestOrchestrator(t, registry)

	result, err := orch.Run(context.Background(), RunRequest{
		Item:     "salmon",
		Quantity: 10,
		Budget:   300,
		Approval: contractx.AutoApprove(false),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != RunCancelled {
		t.Fatalf("expected CANCELLED, got %s", result.Status)
	}
	if result.FinalDeal != nil {
		t.Fatalf("expected no final deal, got %+v", result.FinalDeal)
	}
	for _, pt := range result.Trace {
		if pt.Phase == PhaseRecord {
			t.Fatalf("RECORD must not run after a declined approval: %+v", result.Trace)
		}
	}

	recs, err := tools.History(context.Background(), "")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty history after decline, got %d records", len(recs))
	}
	if registry.clerk.cursor != 0 {
		t.Fatalf("clerk must not be consulted after decline, made %d decisions", registry.clerk.cursor)
	}
}

func TestRunNegotiationRejected(t *testing.T) {
	// One offer below the vendor floor ends the session with REJECTED.
	registry := newTestRegistry(t, []float64{20.00})
	orch, tools := newTestOrchestrator(t, registry)

	result, err := orch.Run(context.Background(), RunRequest{
		Item:     "salmon",
		Quantity: 10,
		Approval: contractx.AutoApprove(true),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != RunCancelled {
		t.Fatalf("expected CANCELLED, got %s", result.Status)
	}
	last := result.Trace[len(result.Trace)-1]
	if last.Phase != PhaseNegotiate || last.Err == "" {
		t.Fatalf("expected failing NEGOTIATE trace, got %+v", last)
	}

	recs, err := tools.History(context.Background(), "")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty history, got %d records", len(recs))
	}
}

func TestRunIgnoresOffersToOtherVendors(t *testing.T) {
	// The negotiator bargains with the wrong vendor; its accepted offer must
	// not become the chosen vendor's price.
	registry := newTestRegistry(t, nil)
	registry.negotiator = &fakeDecisionMaker{role: contractx.RoleNegotiator, script: []contractx.Decision{
		offerDecision("Pacific Catch Co", 25.50),
		{Summary: "negotiation closed"},
	}}
	orch, tools := newTestOrchestrator(t, registry)

	result, err := orch.Run(context.Background(), RunRequest{
		Item:     "salmon",
		Quantity: 10,
		Approval: contractx.AutoApprove(true),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != RunCancelled {
		t.Fatalf("expected CANCELLED, got %s", result.Status)
	}
	if result.FinalDeal != nil {
		t.Fatalf("expected no final deal, got %+v", result.FinalDeal)
	}
	last := result.Trace[len(result.Trace)-1]
	if last.Phase != PhaseNegotiate || last.Err == "" {
		t.Fatalf("expected failing NEGOTIATE trace, got %+v", last)
	}

	recs, err := tools.History(context.Background(), "")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty history, got %d records", len(recs))
	}
}

func TestRunValidatesRequest(t *testing.T) {
	registry := newTestRegistry(t, nil)
	orch, _ := newTestOrchestrator(t, registry)

	cases := []RunRequest{
		{Item: "  ", Quantity: 10, Approval: contractx.AutoApprove(true)},
		{Item: "salmon", Quantity: 0, Approval: contractx.AutoApprove(true)},
		{Item: "salmon", Quantity: 10, Approval: nil},
	}
	for _, req := range cases {
		if _, err := orch.Run(context.Background(), req); err == nil {
			t.Fatalf("Run(%+v): expected an error", req)
		}
	}
	if registry.scout.cursor != 0 {
		t.Fatalf("scout must not run for invalid requests, made %d decisions", registry.scout.cursor)
	}
}
