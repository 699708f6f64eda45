package toolservice

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

// InfosForRole lists the tool definitions a decision-maker role may bind.
// The façade executes every tool; the role split only narrows what a model
// is offered, mirroring the phase it serves.
func InfosForRole(role contractx.Role) []*schema.ToolInfo {
	switch role {
	case contractx.RoleScout:
		return []*schema.ToolInfo{findVendorsInfo()}
	case contractx.RoleAnalyst:
		return []*schema.ToolInfo{insightsInfo(), historyInfo()}
	case contractx.RoleNegotiator:
		return []*schema.ToolInfo{offerInfo()}
	case contractx.RoleClerk:
		return []*schema.ToolInfo{recordInfo(), historyInfo()}
	default:
		return nil
	}
}

func findVendorsInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolFindVendors,
		Desc: "List vendors carrying an item, sorted by freshness then price.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"item":     {Type: schema.String, Desc: "Item to source", Required: true},
			"quantity": {Type: schema.Integer, Desc: "Units needed", Required: true},
		}),
	}
}

func offerInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolOffer,
		Desc: "Make a price offer to a vendor. Returns ACCEPTED, COUNTER, or REJECTED with the relevant price.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"vendor":         {Type: schema.String, Desc: "Vendor name", Required: true},
			"item":           {Type: schema.String, Desc: "Item under negotiation", Required: true},
			"quantity":       {Type: schema.Integer, Desc: "Units needed", Required: true},
			"proposed_price": {Type: schema.Number, Desc: "Offered unit price in dollars", Required: true},
		}),
	}
}

func insightsInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolInsights,
		Desc: "Summarize past purchases of an item: best vendor, average price, count.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"item": {Type: schema.String, Desc: "Item to look up", Required: true},
		}),
	}
}

func recordInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolRecord,
		Desc: "Record an approved, accepted deal in the purchase history.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"vendor":    {Type: schema.String, Desc: "Vendor name", Required: true},
			"item":      {Type: schema.String, Desc: "Purchased item", Required: true},
			"quantity":  {Type: schema.Integer, Desc: "Units purchased", Required: true},
			"price":     {Type: schema.Number, Desc: "Agreed unit price in dollars", Required: true},
			"freshness": {Type: schema.Number, Desc: "Freshness at purchase time", Required: true},
		}),
	}
}

func historyInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolHistory,
		Desc: "List purchase records, optionally filtered by item.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"item": {Type: schema.String, Desc: "Optional item filter"},
		}),
	}
}
