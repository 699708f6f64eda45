package contract

type Role string

const (
	RoleScout      Role = "scout"
	RoleAnalyst    Role = "analyst"
	RoleNegotiator Role = "negotiator"
	RoleClerk      Role = "clerk"
)

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DecisionContext is everything a decision-maker may look at for one phase.
// The orchestrator fills the fields that exist by the time the phase runs.
type DecisionContext struct {
	Phase       string         `json:"phase"`
	Item        string         `json:"item"`
	Quantity    int            `json:"quantity"`
	Budget      float64        `json:"budget,omitempty"`
	TargetPrice float64        `json:"target_price,omitempty"`
	VendorHint  string         `json:"vendor_hint,omitempty"`
	Vendor      string         `json:"vendor,omitempty"`
	Insight     any            `json:"insight,omitempty"`
	Vendors     any            `json:"vendors,omitempty"`
	Deal        any            `json:"deal,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Decision is the only output shape the core accepts from a decision-maker:
// zero or more tool invocations, or a final summary with the typed fields the
// next phase needs.
type Decision struct {
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	ChosenVendor string        `json:"chosen_vendor,omitempty"`
	TargetPrice  float64       `json:"target_price,omitempty"`
}

// DealProposal is what the approval gate sees before anything is persisted.
type DealProposal struct {
	Vendor    string  `json:"vendor"`
	Item      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	Freshness float64 `json:"freshness"`
}
