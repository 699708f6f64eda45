package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	catalogx "github.com/seaharbor/procure-agent/agent/catalog"
	contractx "github.com/seaharbor/procure-agent/agent/contract"
	learningx "github.com/seaharbor/procure-agent/agent/learning"
	negotiationx "github.com/seaharbor/procure-agent/agent/negotiation"
	toolservicex "github.com/seaharbor/procure-agent/agent/toolservice"
)

// graphState is threaded through the phase graph. Once failed or declined is
// set, the remaining phase nodes pass through untouched so the trace built so
// far survives into the result.
type graphState struct {
	req   RunRequest
	trace []PhaseTrace

	vendors      []catalogx.Snapshot
	chosenVendor string
	targetPrice  float64
	insight      learningx.Insight

	negotiatedPrice float64
	freshness       float64

	declined bool
	failed   bool
	recordID string
}

func validateRequest(req RunRequest) (*graphState, error) {
	if strings.TrimSpace(req.Item) == "" {
		return nil, ErrInvalidItem
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Approval == nil {
		return nil, ErrNoApprovalGate
	}
	return &graphState{req: req, targetPrice: req.TargetPrice}, nil
}

// runPhase drives one decision-maker: decide, execute its tool calls, feed
// the results back, and repeat until it closes with a summary. The loop is
// bounded so a misbehaving decision-maker cannot stall the run.
func (o *Orchestrator) runPhase(
	ctx context.Context,
	phase Phase,
	dm contractx.DecisionMaker,
	dc contractx.DecisionContext,
) (PhaseTrace, contractx.Decision, error) {
	trace := PhaseTrace{Phase: phase}
	maxTurns := negotiationx.DefaultMaxRounds + 2

	log.Debug().Str("phase", string(phase)).Msg("phase started")

	for turn := 0; turn < maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return trace, contractx.Decision{}, err
		}

		decision, err := dm.Decide(ctx, dc)
		if err != nil {
			trace.Err = err.Error()
			return trace, contractx.Decision{}, fmt.Errorf("%s: %w", phase, err)
		}

		if len(decision.ToolRequests) == 0 {
			trace.Summary = decision.Summary
			return trace, decision, nil
		}

		results, err := o.gateway.Execute(ctx, string(phase), decision.ToolRequests)
		if err != nil {
			trace.Err = err.Error()
			return trace, contractx.Decision{}, fmt.Errorf("%s: %w", phase, err)
		}

		for i, req := range decision.ToolRequests {
			trace.Calls = append(trace.Calls, ToolCall{Request: req, Result: results[i]})
		}
		dc.ToolResults = append(dc.ToolResults, results...)
	}

	trace.Err = "decision-maker did not conclude the phase"
	return trace, contractx.Decision{}, fmt.Errorf("%s: %w: phase exceeded %d turns", phase, contractx.ErrSchemaViolation, maxTurns)
}

func (o *Orchestrator) discover(ctx context.Context, st *graphState) (*graphState, error) {
	dc := contractx.DecisionContext{
		Phase:       string(PhaseDiscover),
		Item:        st.req.Item,
		Quantity:    st.req.Quantity,
		Budget:      st.req.Budget,
		TargetPrice: st.targetPrice,
		VendorHint:  st.req.VendorHint,
	}

	trace, decision, err := o.runPhase(ctx, PhaseDiscover, o.models.Scout(), dc)
	st.trace = append(st.trace, trace)
	if err != nil {
		return failRun(st, err)
	}

	for _, call := range trace.Calls {
		if snaps, ok := call.Result.Result.([]catalogx.Snapshot); ok {
			st.vendors = snaps
		}
	}
	if len(st.vendors) == 0 {
		return failPhase(st, "no vendors discovered")
	}

	st.chosenVendor = pickVendor(decision, st.vendors, st.req.VendorHint)
	if decision.TargetPrice > 0 {
		st.targetPrice = decision.TargetPrice
	}
	st.freshness = freshnessOf(st.vendors, st.chosenVendor)
	return st, nil
}

func (o *Orchestrator) recallHistory(ctx context.Context, st *graphState) (*graphState, error) {
	if st.failed {
		return st, nil
	}

	dc := contractx.DecisionContext{
		Phase:    string(PhaseRecallHistory),
		Item:     st.req.Item,
		Quantity: st.req.Quantity,
		Vendor:   st.chosenVendor,
		Vendors:  st.vendors,
	}

	trace, _, err := o.runPhase(ctx, PhaseRecallHistory, o.models.Analyst(), dc)
	st.trace = append(st.trace, trace)
	if err != nil {
		return failRun(st, err)
	}

	for _, call := range trace.Calls {
		if insight, ok := call.Result.Result.(learningx.Insight); ok {
			st.insight = insight
		}
	}
	return st, nil
}

func (o *Orchestrator) negotiate(ctx context.Context, st *graphState) (*graphState, error) {
	if st.failed {
		return st, nil
	}

	dc := contractx.DecisionContext{
		Phase:       string(PhaseNegotiate),
		Item:        st.req.Item,
		Quantity:    st.req.Quantity,
		Budget:      st.req.Budget,
		TargetPrice: st.targetPrice,
		Vendor:      st.chosenVendor,
		Insight:     st.insight,
		Vendors:     st.vendors,
	}

	trace, _, err := o.runPhase(ctx, PhaseNegotiate, o.models.Negotiator(), dc)
	st.trace = append(st.trace, trace)
	if err != nil {
		return failRun(st, err)
	}

	// The agreed price is read from the session's own offer results, never
	// from the decision-maker's summary. Offers addressed to any other vendor
	// are ignored so a stray negotiation cannot price the chosen vendor's deal.
	accepted := false
	for _, call := range trace.Calls {
		res, ok := call.Result.Result.(toolservicex.OfferResult)
		if !ok {
			continue
		}
		if vendor, _ := call.Request.Args["vendor"].(string); vendor != st.chosenVendor {
			continue
		}
		if res.Status == string(negotiationx.DecisionAccepted) {
			st.negotiatedPrice = res.Price
			accepted = true
		}
	}
	if !accepted {
		return failPhase(st, "negotiation ended without an accepted offer from the chosen vendor")
	}
	return st, nil
}

func (o *Orchestrator) approve(ctx context.Context, st *graphState) (*graphState, error) {
	if st.failed {
		return st, nil
	}

	proposal := contractx.DealProposal{
		Vendor:    st.chosenVendor,
		Item:      st.req.Item,
		Quantity:  st.req.Quantity,
		UnitPrice: st.negotiatedPrice,
		Total:     st.negotiatedPrice * float64(st.req.Quantity),
		Freshness: st.freshness,
	}

	approved, err := st.req.Approval.Approve(ctx, proposal)
	if err != nil {
		st.trace = append(st.trace, PhaseTrace{Phase: PhaseApprove, Err: err.Error()})
		return failRun(st, err)
	}

	if !approved {
		st.trace = append(st.trace, PhaseTrace{Phase: PhaseApprove, Summary: "deal declined by approval policy"})
		st.declined = true
		log.Info().Str("vendor", st.chosenVendor).Msg("approval declined, skipping record")
		return st, nil
	}

	st.trace = append(st.trace, PhaseTrace{Phase: PhaseApprove, Summary: "deal approved"})
	return st, nil
}

func (o *Orchestrator) record(ctx context.Context, st *graphState) (*graphState, error) {
	if st.failed || st.declined {
		return st, nil
	}

	dc := contractx.DecisionContext{
		Phase:    string(PhaseRecord),
		Item:     st.req.Item,
		Quantity: st.req.Quantity,
		Vendor:   st.chosenVendor,
		Deal: contractx.DealProposal{
			Vendor:    st.chosenVendor,
			Item:      st.req.Item,
			Quantity:  st.req.Quantity,
			UnitPrice: st.negotiatedPrice,
			Total:     st.negotiatedPrice * float64(st.req.Quantity),
			Freshness: st.freshness,
		},
	}

	trace, _, err := o.runPhase(ctx, PhaseRecord, o.models.Clerk(), dc)
	st.trace = append(st.trace, trace)
	if err != nil {
		return failRun(st, err)
	}

	for _, call := range trace.Calls {
		if res, ok := call.Result.Result.(toolservicex.RecordResult); ok {
			st.recordID = res.RecordID
		}
	}
	if st.recordID == "" {
		return failPhase(st, "deal was not recorded")
	}
	return st, nil
}

func finalize(st *graphState) (RunResult, error) {
	if st.failed || st.declined {
		return RunResult{Status: RunCancelled, Trace: st.trace}, nil
	}

	deal := &Deal{
		Vendor:    st.chosenVendor,
		Item:      st.req.Item,
		Quantity:  st.req.Quantity,
		UnitPrice: st.negotiatedPrice,
		Total:     st.negotiatedPrice * float64(st.req.Quantity),
		Freshness: st.freshness,
		RecordID:  st.recordID,
	}
	return RunResult{Status: RunCompleted, FinalDeal: deal, Trace: st.trace}, nil
}

// failRun marks the run failed after an infrastructure or decision-maker
// error; the trace entry carrying the error is already appended.
func failRun(st *graphState, err error) (*graphState, error) {
	st.failed = true
	log.Warn().Err(err).Msg("run cancelled")
	return st, nil
}

// failPhase marks the run failed for a phase that finished cleanly but did
// not produce what the next phase needs.
func failPhase(st *graphState, reason string) (*graphState, error) {
	if n := len(st.trace); n > 0 && st.trace[n-1].Err == "" {
		st.trace[n-1].Err = reason
	}
	st.failed = true
	log.Warn().Str("reason", reason).Msg("run cancelled")
	return st, nil
}

// pickVendor prefers the decision-maker's explicit choice, then the caller's
// hint, then the top-ranked snapshot. A choice not present in the discovered
// snapshots is ignored.
func pickVendor(decision contractx.Decision, vendors []catalogx.Snapshot, hint string) string {
	for _, candidate := range []string{strings.TrimSpace(decision.ChosenVendor), strings.TrimSpace(hint)} {
		if candidate == "" {
			continue
		}
		for _, s := range vendors {
			if s.Vendor == candidate {
				return candidate
			}
		}
	}
	return vendors[0].Vendor
}

func freshnessOf(vendors []catalogx.Snapshot, vendor string) float64 {
	for _, s := range vendors {
		if s.Vendor == vendor {
			return s.Freshness
		}
	}
	return 0
}
