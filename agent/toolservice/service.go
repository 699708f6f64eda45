package toolservice

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	catalogx "github.com/seaharbor/procure-agent/agent/catalog"
	contractx "github.com/seaharbor/procure-agent/agent/contract"
	historyx "github.com/seaharbor/procure-agent/agent/history"
	learningx "github.com/seaharbor/procure-agent/agent/learning"
	negotiationx "github.com/seaharbor/procure-agent/agent/negotiation"
)

// Service is the façade over catalog, negotiation, learning, and history. It
// holds no business logic of its own: it validates inputs, serializes offers
// per session key, and delegates. All state mutation funnels through here.
type Service struct {
	catalog catalogx.Catalog
	history historyx.Store

	mu       sync.Mutex
	sessions map[string]*negotiationx.Session
	locks    map[string]*sync.Mutex
}

func New(catalog catalogx.Catalog, history historyx.Store) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if history == nil {
		return nil, fmt.Errorf("history store is required")
	}
	return &Service{
		catalog:  catalog,
		history:  history,
		sessions: make(map[string]*negotiationx.Session),
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

type OfferInput struct {
	Vendor        string  `json:"vendor"`
	Item          string  `json:"item"`
	Quantity      int     `json:"quantity"`
	ProposedPrice float64 `json:"proposed_price"`
}

type OfferResult struct {
	Status string  `json:"status"`
	Price  float64 `json:"price"`
	Round  int     `json:"round"`
}

type RecordInput struct {
	Vendor    string  `json:"vendor"`
	Item      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Freshness float64 `json:"freshness"`
}

type RecordResult struct {
	RecordID string                  `json:"record_id"`
	Record   historyx.PurchaseRecord `json:"record"`
}

func (s *Service) FindVendors(ctx context.Context, item string, quantity int) ([]catalogx.Snapshot, error) {
	if strings.TrimSpace(item) == "" {
		return nil, fmt.Errorf("%w: item is required", contractx.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", contractx.ErrValidation, quantity)
	}
	return s.catalog.FindVendors(ctx, item, quantity)
}

// Offer applies one buyer offer, creating the session on first contact for
// its (vendor, item) key. Offers for the same key are strictly ordered; other
// keys proceed independently. Each transition is a single atomic step.
func (s *Service) Offer(ctx context.Context, in OfferInput) (OfferResult, error) {
	if strings.TrimSpace(in.Vendor) == "" || strings.TrimSpace(in.Item) == "" {
		return OfferResult{}, fmt.Errorf("%w: vendor and item are required", contractx.ErrValidation)
	}
	if in.Quantity <= 0 {
		return OfferResult{}, fmt.Errorf("%w: quantity must be positive, got %d", contractx.ErrValidation, in.Quantity)
	}
	if in.ProposedPrice <= 0 {
		return OfferResult{}, fmt.Errorf("%w: proposed price must be positive", contractx.ErrValidation)
	}

	key := negotiationx.Key{Vendor: in.Vendor, Item: in.Item}
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessionFor(ctx, key, in.Quantity)
	if err != nil {
		return OfferResult{}, err
	}

	outcome, err := negotiationx.Decide(session, negotiationx.Cents(in.ProposedPrice))
	if err != nil {
		return OfferResult{}, err
	}

	log.Debug().
		Str("vendor", in.Vendor).
		Str("item", in.Item).
		Str("decision", string(outcome.Decision)).
		Int("round", outcome.Round).
		Int64("price_cents", outcome.PriceCents).
		Msg("negotiation offer applied")

	return OfferResult{
		Status: string(outcome.Decision),
		Price:  negotiationx.Dollars(outcome.PriceCents),
		Round:  outcome.Round,
	}, nil
}

func (s *Service) Insights(ctx context.Context, item string) (learningx.Insight, error) {
	if strings.TrimSpace(item) == "" {
		return learningx.Insight{}, fmt.Errorf("%w: item is required", contractx.ErrValidation)
	}
	return learningx.Insights(ctx, s.history, item)
}

// Record persists an approved deal. It requires a prior ACCEPTED session for
// the (vendor, item) key and rejects a second record of the same session.
func (s *Service) Record(ctx context.Context, in RecordInput) (RecordResult, error) {
	if strings.TrimSpace(in.Vendor) == "" || strings.TrimSpace(in.Item) == "" {
		return RecordResult{}, fmt.Errorf("%w: vendor and item are required", contractx.ErrValidation)
	}
	if in.Quantity <= 0 {
		return RecordResult{}, fmt.Errorf("%w: quantity must be positive, got %d", contractx.ErrValidation, in.Quantity)
	}
	if in.Price <= 0 {
		return RecordResult{}, fmt.Errorf("%w: price must be positive", contractx.ErrValidation)
	}

	key := negotiationx.Key{Vendor: in.Vendor, Item: in.Item}
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	session := s.sessions[key.String()]
	s.mu.Unlock()

	if session == nil || session.Status != negotiationx.StatusAccepted {
		return RecordResult{}, fmt.Errorf("%w: no accepted negotiation for %s", contractx.ErrValidation, key)
	}
	if session.Recorded {
		return RecordResult{}, fmt.Errorf("%w: %s", contractx.ErrDuplicateRecord, key)
	}

	priceCents := negotiationx.Cents(in.Price)
	rec := historyx.PurchaseRecord{
		Vendor:         in.Vendor,
		Item:           in.Item,
		Quantity:       in.Quantity,
		UnitPriceCents: priceCents,
		Freshness:      in.Freshness,
		TotalCents:     priceCents * int64(in.Quantity),
	}

	id, err := s.history.Append(ctx, rec)
	if err != nil {
		return RecordResult{}, err
	}
	session.Recorded = true
	rec.ID = id

	log.Info().
		Str("record_id", id).
		Str("vendor", in.Vendor).
		Str("item", in.Item).
		Int("quantity", in.Quantity).
		Int64("unit_price_cents", priceCents).
		Msg("purchase recorded")

	return RecordResult{RecordID: id, Record: rec}, nil
}

func (s *Service) History(ctx context.Context, itemFilter string) ([]historyx.PurchaseRecord, error) {
	return s.history.All(ctx, itemFilter)
}

// CloseSessions ends the in-memory negotiation state at the end of a run.
// OPEN sessions that exhausted their counters become EXPIRED before being
// dropped; everything durable already lives in the history store. Lock entries
// are kept so a concurrent Offer holding one still excludes the next offer for
// its key.
func (s *Service) CloseSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, session := range s.sessions {
		if session.Expire() {
			log.Debug().Str("session", key).Msg("negotiation session expired")
		}
		delete(s.sessions, key)
	}
}

// Session exposes a copy of the current session for a key, for audit.
func (s *Service) Session(key negotiationx.Key) (negotiationx.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[key.String()]
	if session == nil {
		return negotiationx.Session{}, false
	}
	cp := *session
	cp.Rounds = append([]negotiationx.Round(nil), session.Rounds...)
	return cp, true
}

func (s *Service) lockFor(key negotiationx.Key) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock := s.locks[key.String()]
	if lock == nil {
		lock = &sync.Mutex{}
		s.locks[key.String()] = lock
	}
	return lock
}

func (s *Service) sessionFor(ctx context.Context, key negotiationx.Key, quantity int) (*negotiationx.Session, error) {
	s.mu.Lock()
	session := s.sessions[key.String()]
	s.mu.Unlock()
	if session != nil {
		return session, nil
	}

	vendor, err := s.catalog.Vendor(ctx, key.Vendor, key.Item)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown vendor %q for item %q", contractx.ErrValidation, key.Vendor, key.Item)
	}

	session, err = negotiationx.NewSession(
		key,
		quantity,
		negotiationx.Cents(vendor.UnitPrice),
		negotiationx.Cents(vendor.CostBasis),
		vendor.MinMargin,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	s.mu.Lock()
	s.sessions[key.String()] = session
	s.mu.Unlock()
	return session, nil
}
