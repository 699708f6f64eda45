package negotiation

import (
	"errors"
	"testing"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(
		Key{Vendor: "Tsukiji Direct", Item: "salmon"},
		10,
		Cents(28.00),
		Cents(18.00),
		0.20,
	)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestNewSessionFixesMinimumPrice(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if s.MinPriceCents != 2160 {
		t.Fatalf("expected min price 2160 cents, got %d", s.MinPriceCents)
	}
	if s.Status != StatusOpen {
		t.Fatalf("expected OPEN, got %s", s.Status)
	}
}

func TestDecideScenario(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	out, err := Decide(s, Cents(23.80))
	if err != nil {
		t.Fatalf("round 1 error = %v", err)
	}
	if out.Decision != DecisionCounter || out.PriceCents != 2590 || out.Round != 1 {
		t.Fatalf("round 1 = %+v, want COUNTER 2590 round 1", out)
	}

	out, err = Decide(s, Cents(24.85))
	if err != nil {
		t.Fatalf("round 2 error = %v", err)
	}
	if out.Decision != DecisionCounter || out.PriceCents != 2643 || out.Round != 2 {
		t.Fatalf("round 2 = %+v, want COUNTER 2643 round 2", out)
	}

	out, err = Decide(s, Cents(26.43))
	if err != nil {
		t.Fatalf("round 3 error = %v", err)
	}
	if out.Decision != DecisionAccepted || out.PriceCents != 2643 || out.Round != 3 {
		t.Fatalf("round 3 = %+v, want ACCEPTED 2643 round 3", out)
	}
	if s.Status != StatusAccepted {
		t.Fatalf("expected session ACCEPTED, got %s", s.Status)
	}
}

func TestDecideAcceptsAtListPrice(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	out, err := Decide(s, Cents(30.00))
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if out.Decision != DecisionAccepted || out.PriceCents != s.ListPriceCents {
		t.Fatalf("expected accept at list price, got %+v", out)
	}
}

func TestDecideRejectsBelowFloorTerminally(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	out, err := Decide(s, Cents(20.00))
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if out.Decision != DecisionRejected {
		t.Fatalf("expected REJECTED, got %+v", out)
	}
	if s.Status != StatusRejected {
		t.Fatalf("expected session REJECTED, got %s", s.Status)
	}

	if _, err := Decide(s, Cents(27.00)); !errors.Is(err, contractx.ErrInvalidRound) {
		t.Fatalf("expected ErrInvalidRound on terminal session, got %v", err)
	}
}

func TestDecideRoundCap(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	// Lowball above the floor to force a counter every round.
	counters := 0
	for i := 0; i < s.MaxRounds; i++ {
		out, err := Decide(s, s.MinPriceCents)
		if err != nil {
			t.Fatalf("counter round %d error = %v", i+1, err)
		}
		if out.Decision != DecisionCounter {
			t.Fatalf("round %d = %+v, want COUNTER", i+1, out)
		}
		counters++
	}
	if counters != s.MaxRounds {
		t.Fatalf("expected %d counters, got %d", s.MaxRounds, counters)
	}

	// Counters are exhausted: the next offer at or above the floor settles.
	out, err := Decide(s, s.MinPriceCents)
	if err != nil {
		t.Fatalf("deadline round error = %v", err)
	}
	if out.Decision != DecisionAccepted || out.PriceCents != s.MinPriceCents {
		t.Fatalf("expected deadline accept at floor, got %+v", out)
	}
	if out.Round != s.MaxRounds+1 {
		t.Fatalf("expected round %d, got %d", s.MaxRounds+1, out.Round)
	}
}

func TestDecideDeadlineRejectBelowFloor(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	for i := 0; i < s.MaxRounds; i++ {
		if _, err := Decide(s, s.MinPriceCents); err != nil {
			t.Fatalf("counter round %d error = %v", i+1, err)
		}
	}

	out, err := Decide(s, s.MinPriceCents-1)
	if err != nil {
		t.Fatalf("deadline round error = %v", err)
	}
	if out.Decision != DecisionRejected {
		t.Fatalf("expected deadline reject, got %+v", out)
	}
}

func TestDecideConvergence(t *testing.T) {
	t.Parallel()

	for _, start := range []float64{21.60, 22.50, 24.00, 26.00, 27.99} {
		s := newTestSession(t)

		offer := Cents(start)
		accepted := false
		for i := 0; i < s.MaxRounds+1; i++ {
			out, err := Decide(s, offer)
			if err != nil {
				t.Fatalf("start %.2f: Decide() error = %v", start, err)
			}
			if out.Decision == DecisionAccepted {
				accepted = true
				break
			}
			if out.Decision == DecisionRejected {
				t.Fatalf("start %.2f: unexpected rejection at %+v", start, out)
			}
			// Concede halfway toward the counter each round.
			offer = midpoint(offer, out.PriceCents)
		}
		if !accepted {
			t.Fatalf("start %.2f: no acceptance within %d rounds", start, s.MaxRounds+1)
		}

		counters := 0
		for _, r := range s.Rounds {
			if r.Decision == DecisionCounter {
				counters++
			}
		}
		if counters > s.MaxRounds {
			t.Fatalf("start %.2f: %d counters exceed cap %d", start, counters, s.MaxRounds)
		}
	}
}

func TestDecideAcceptsAtLastCounter(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	out, err := Decide(s, Cents(22.00))
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	counter := out.PriceCents

	out, err = Decide(s, counter+50)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if out.Decision != DecisionAccepted || out.PriceCents != counter {
		t.Fatalf("expected accept at last counter %d, got %+v", counter, out)
	}
}

func TestExpire(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if s.Expire() {
		t.Fatal("fresh session must not expire")
	}

	for i := 0; i < s.MaxRounds; i++ {
		if _, err := Decide(s, s.MinPriceCents); err != nil {
			t.Fatalf("counter round %d error = %v", i+1, err)
		}
	}
	if !s.Expire() {
		t.Fatal("session with exhausted counters should expire")
	}
	if s.Status != StatusExpired {
		t.Fatalf("expected EXPIRED, got %s", s.Status)
	}
	if s.Expire() {
		t.Fatal("terminal session must not expire twice")
	}
}

func TestCentsRounding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		dollars float64
		cents   int64
	}{
		{28.00, 2800},
		{23.80, 2380},
		{26.43, 2643},
		{0.01, 1},
	}
	for _, tc := range cases {
		if got := Cents(tc.dollars); got != tc.cents {
			t.Fatalf("Cents(%v) = %d, want %d", tc.dollars, got, tc.cents)
		}
	}
}
