package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/scout.txt
	scoutRaw string

	//go:embed template/analyst.txt
	analystRaw string

	//go:embed template/negotiator.txt
	negotiatorRaw string

	//go:embed template/clerk.txt
	clerkRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Scout      string
	Analyst    string
	Negotiator string
	Clerk      string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Scout:      strings.TrimSpace(scoutRaw),
		Analyst:    strings.TrimSpace(analystRaw),
		Negotiator: strings.TrimSpace(negotiatorRaw),
		Clerk:      strings.TrimSpace(clerkRaw),
	}
}
