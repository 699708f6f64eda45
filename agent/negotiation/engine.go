package negotiation

import (
	"fmt"
	"math"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

// Outcome is the engine's answer to a single offer.
type Outcome struct {
	Decision   RoundDecision `json:"decision"`
	PriceCents int64         `json:"price_cents"`
	Round      int           `json:"round"`
}

// Decide applies one buyer offer to a session and mutates it accordingly.
//
// The rules run in strict precedence order:
//  1. offer >= list price            -> accept at list price
//  2. offer >= last counter (if any) -> accept at the last counter
//  3. counters exhausted, offer >= floor -> accept at the offer (deadline)
//  4. offer >= floor                 -> counter at midpoint(offer, list)
//  5. otherwise                      -> reject, terminally
//
// The midpoint halves the gap to the list price every round, so any caller
// converges within MaxRounds. Identical session state plus identical offer
// always yields an identical outcome.
func Decide(s *Session, offerCents int64) (Outcome, error) {
	if s == nil {
		return Outcome{}, fmt.Errorf("%w: nil session", contractx.ErrValidation)
	}
	if offerCents <= 0 {
		return Outcome{}, fmt.Errorf("%w: offer must be positive", contractx.ErrValidation)
	}
	if s.Terminal() {
		return Outcome{}, fmt.Errorf("%w: session %s is %s", contractx.ErrInvalidRound, s.Key, s.Status)
	}

	if offerCents >= s.ListPriceCents {
		return settle(s, offerCents, s.ListPriceCents, DecisionAccepted), nil
	}

	if last, ok := s.LastCounter(); ok && offerCents >= last {
		return settle(s, offerCents, last, DecisionAccepted), nil
	}

	if len(s.Rounds) >= s.MaxRounds {
		if offerCents >= s.MinPriceCents {
			return settle(s, offerCents, offerCents, DecisionAccepted), nil
		}
		return settle(s, offerCents, offerCents, DecisionRejected), nil
	}

	if offerCents >= s.MinPriceCents {
		counter := midpoint(offerCents, s.ListPriceCents)
		s.Rounds = append(s.Rounds, Round{
			Index:      len(s.Rounds) + 1,
			OfferCents: offerCents,
			ReplyCents: counter,
			Decision:   DecisionCounter,
		})
		return Outcome{Decision: DecisionCounter, PriceCents: counter, Round: len(s.Rounds)}, nil
	}

	return settle(s, offerCents, offerCents, DecisionRejected), nil
}

func settle(s *Session, offerCents, priceCents int64, decision RoundDecision) Outcome {
	s.Rounds = append(s.Rounds, Round{
		Index:      len(s.Rounds) + 1,
		OfferCents: offerCents,
		ReplyCents: priceCents,
		Decision:   decision,
	})
	if decision == DecisionAccepted {
		s.Status = StatusAccepted
	} else {
		s.Status = StatusRejected
	}
	return Outcome{Decision: decision, PriceCents: priceCents, Round: len(s.Rounds)}
}

func midpoint(a, b int64) int64 {
	return int64(math.Round(float64(a+b) / 2))
}
