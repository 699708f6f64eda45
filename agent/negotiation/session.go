package negotiation

import (
	"fmt"
	"math"
)

// DefaultMaxRounds caps how many counter-offers a session may issue.
const DefaultMaxRounds = 5

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

type RoundDecision string

const (
	DecisionCounter  RoundDecision = "COUNTER"
	DecisionAccepted RoundDecision = "ACCEPTED"
	DecisionRejected RoundDecision = "REJECTED"
)

// Key identifies one negotiation: a single vendor bargaining over one item.
type Key struct {
	Vendor string `json:"vendor"`
	Item   string `json:"item"`
}

func (k Key) String() string {
	return k.Vendor + "|" + k.Item
}

type Round struct {
	Index      int           `json:"index"`
	OfferCents int64         `json:"offer_cents"`
	ReplyCents int64         `json:"reply_cents"`
	Decision   RoundDecision `json:"decision"`
}

// Session holds all mutable negotiation state for one key. Prices are kept in
// integer cents so midpoint arithmetic is exact; dollars exist only at the
// service edge. MinPriceCents is fixed at creation and never re-derived.
type Session struct {
	Key            Key     `json:"key"`
	Quantity       int     `json:"quantity"`
	ListPriceCents int64   `json:"list_price_cents"`
	CostBasisCents int64   `json:"cost_basis_cents"`
	MinPriceCents  int64   `json:"min_price_cents"`
	Rounds         []Round `json:"rounds,omitempty"`
	Status         Status  `json:"status"`
	MaxRounds      int     `json:"max_rounds"`
	Recorded       bool    `json:"recorded"`
}

func NewSession(key Key, quantity int, listPriceCents, costBasisCents int64, minMargin float64) (*Session, error) {
	if key.Vendor == "" || key.Item == "" {
		return nil, fmt.Errorf("session key requires vendor and item")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if listPriceCents <= 0 || costBasisCents <= 0 {
		return nil, fmt.Errorf("list price and cost basis must be positive")
	}
	if minMargin < 0 {
		return nil, fmt.Errorf("margin must be >= 0, got %f", minMargin)
	}

	return &Session{
		Key:            key,
		Quantity:       quantity,
		ListPriceCents: listPriceCents,
		CostBasisCents: costBasisCents,
		MinPriceCents:  roundCents(float64(costBasisCents) * (1 + minMargin)),
		Status:         StatusOpen,
		MaxRounds:      DefaultMaxRounds,
	}, nil
}

func (s *Session) Terminal() bool {
	return s.Status != StatusOpen
}

// LastCounter returns the most recent counter-offer, if any round issued one.
func (s *Session) LastCounter() (int64, bool) {
	for i := len(s.Rounds) - 1; i >= 0; i-- {
		if s.Rounds[i].Decision == DecisionCounter {
			return s.Rounds[i].ReplyCents, true
		}
	}
	return 0, false
}

// Expire marks an abandoned session terminal once its counters are exhausted.
// Offers themselves never produce EXPIRED: the deadline rule forces an accept
// or reject instead.
func (s *Session) Expire() bool {
	if s.Status != StatusOpen || len(s.Rounds) < s.MaxRounds {
		return false
	}
	s.Status = StatusExpired
	return true
}

// Cents converts a dollar amount to integer cents, rounding half away from zero.
func Cents(dollars float64) int64 {
	return roundCents(dollars * 100)
}

// Dollars converts integer cents back to a dollar amount.
func Dollars(cents int64) float64 {
	return float64(cents) / 100
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
