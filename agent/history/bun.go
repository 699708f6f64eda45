package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

type BunConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// BunStore persists purchase records in Postgres. A fresh process opening the
// same DSN observes every record appended before the restart.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(cfg BunConfig) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("history dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	return &BunStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// NewBunStoreFromDB wraps an existing handle; the caller keeps ownership.
func NewBunStoreFromDB(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

// Provision creates the purchase_records table if it does not exist.
func (s *BunStore) Provision(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*PurchaseRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: create purchase_records: %v", contractx.ErrPersistence, err)
	}
	return nil
}

func (s *BunStore) Append(ctx context.Context, rec PurchaseRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PurchasedAt.IsZero() {
		rec.PurchasedAt = time.Now().UTC()
	}

	if _, err := s.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: append purchase record: %v", contractx.ErrPersistence, err)
	}
	return rec.ID, nil
}

func (s *BunStore) All(ctx context.Context, itemFilter string) ([]PurchaseRecord, error) {
	var recs []PurchaseRecord
	q := s.db.NewSelect().Model(&recs).OrderExpr("purchased_at ASC")
	if filter := strings.ToLower(strings.TrimSpace(itemFilter)); filter != "" {
		q = q.Where("lower(item) = ?", filter)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list purchase records: %v", contractx.ErrPersistence, err)
	}
	return recs, nil
}
