package orchestrator

import (
	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

type Phase string

const (
	PhaseDiscover      Phase = "DISCOVER"
	PhaseRecallHistory Phase = "RECALL_HISTORY"
	PhaseNegotiate     Phase = "NEGOTIATE"
	PhaseApprove       Phase = "APPROVE"
	PhaseRecord        Phase = "RECORD"
	PhaseDone          Phase = "DONE"
)

type RunStatus string

const (
	RunCompleted RunStatus = "COMPLETED"
	RunCancelled RunStatus = "CANCELLED"
)

// ToolCall pairs one Tool Service invocation with its result.
type ToolCall struct {
	Request contractx.ToolRequest `json:"request"`
	Result  contractx.ToolResult  `json:"result"`
}

// PhaseTrace is the audit record of one phase: every Tool Service call it
// made, the decision-maker's closing summary, and any error that ended it.
type PhaseTrace struct {
	Phase   Phase      `json:"phase"`
	Calls   []ToolCall `json:"calls,omitempty"`
	Summary string     `json:"summary,omitempty"`
	Err     string     `json:"error,omitempty"`
}

// Deal is the final purchased (or declined) bargain.
type Deal struct {
	Vendor    string  `json:"vendor"`
	Item      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	Freshness float64 `json:"freshness"`
	RecordID  string  `json:"record_id,omitempty"`
}

type RunRequest struct {
	Item        string
	Quantity    int
	Budget      float64
	TargetPrice float64
	VendorHint  string
	Approval    contractx.ApprovalPolicy
}

type RunResult struct {
	Status    RunStatus    `json:"status"`
	FinalDeal *Deal        `json:"final_deal,omitempty"`
	Trace     []PhaseTrace `json:"phase_trace"`
}
