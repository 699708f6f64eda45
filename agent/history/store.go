package history

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PurchaseRecord is one completed, approved purchase. Records are append-only
// and never edited; learning stays monotonic with respect to new data only.
type PurchaseRecord struct {
	bun.BaseModel `bun:"table:purchase_records" json:"-"`

	ID             string    `bun:"id,pk" json:"id"`
	Vendor         string    `bun:"vendor,notnull" json:"vendor"`
	Item           string    `bun:"item,notnull" json:"item"`
	Quantity       int       `bun:"quantity,notnull" json:"quantity"`
	UnitPriceCents int64     `bun:"unit_price_cents,notnull" json:"unit_price_cents"`
	Freshness      float64   `bun:"freshness,notnull" json:"freshness"`
	TotalCents     int64     `bun:"total_cents,notnull" json:"total_cents"`
	PurchasedAt    time.Time `bun:"purchased_at,notnull" json:"purchased_at"`
}

// Store is the durable append-only purchase ledger. All returns records
// ordered by purchase time ascending; an empty itemFilter returns everything.
type Store interface {
	Append(ctx context.Context, rec PurchaseRecord) (string, error)
	All(ctx context.Context, itemFilter string) ([]PurchaseRecord, error)
}

// MemStore keeps records in memory behind a mutex. It serves tests and local
// runs; durability comes from BunStore.
type MemStore struct {
	mu   sync.RWMutex
	recs []PurchaseRecord
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Append(ctx context.Context, rec PurchaseRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PurchasedAt.IsZero() {
		rec.PurchasedAt = time.Now().UTC()
	}
	s.recs = append(s.recs, rec)
	return rec.ID, nil
}

func (s *MemStore) All(ctx context.Context, itemFilter string) ([]PurchaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := strings.ToLower(strings.TrimSpace(itemFilter))
	out := make([]PurchaseRecord, 0, len(s.recs))
	for _, r := range s.recs {
		if filter != "" && strings.ToLower(r.Item) != filter {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PurchasedAt.Before(out[j].PurchasedAt)
	})
	return out, nil
}
