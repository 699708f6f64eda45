package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

type vendorRow struct {
	bun.BaseModel `bun:"table:vendor_offers"`

	ID           int64   `bun:"id,pk,autoincrement"`
	Name         string  `bun:"name,notnull"`
	Item         string  `bun:"item,notnull"`
	UnitPrice    float64 `bun:"unit_price,notnull"`
	Freshness    float64 `bun:"freshness,notnull"`
	CostBasis    float64 `bun:"cost_basis,notnull"`
	MinMargin    float64 `bun:"min_margin,notnull"`
	Reliability  float64 `bun:"reliability,notnull"`
	ShippingDays int     `bun:"shipping_days,notnull"`
}

type BunConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// BunCatalog reads vendor reference data from Postgres. The catalog is opened
// from a DSN so a restarted process reconstructs identical behavior.
type BunCatalog struct {
	db *bun.DB
}

func NewBunCatalog(cfg BunConfig) (*BunCatalog, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("catalog dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	return &BunCatalog{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// NewBunCatalogFromDB wraps an existing handle; the caller keeps ownership.
func NewBunCatalogFromDB(db *bun.DB) *BunCatalog {
	return &BunCatalog{db: db}
}

func (c *BunCatalog) Close() error {
	return c.db.Close()
}

func (c *BunCatalog) FindVendors(ctx context.Context, item string, quantity int) ([]Snapshot, error) {
	key := strings.ToLower(strings.TrimSpace(item))

	exists, err := c.db.NewSelect().
		Model((*vendorRow)(nil)).
		Where("lower(item) = ?", key).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: check item %q: %v", contractx.ErrPersistence, item, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: item %q is not in the catalog", contractx.ErrNotFound, item)
	}

	var rows []vendorRow
	if err := c.db.NewSelect().
		Model(&rows).
		Where("lower(item) = ?", key).
		OrderExpr("freshness DESC, unit_price ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list vendors for %q: %v", contractx.ErrPersistence, item, err)
	}

	out := make([]Snapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, snapshotOf(vendorOf(r)))
	}
	return out, nil
}

func (c *BunCatalog) Vendor(ctx context.Context, name, item string) (Vendor, error) {
	var row vendorRow
	err := c.db.NewSelect().
		Model(&row).
		Where("name = ?", name).
		Where("lower(item) = ?", strings.ToLower(strings.TrimSpace(item))).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Vendor{}, fmt.Errorf("%w: vendor %q does not carry %q", contractx.ErrNotFound, name, item)
	}
	if err != nil {
		return Vendor{}, fmt.Errorf("%w: load vendor %q: %v", contractx.ErrPersistence, name, err)
	}
	return vendorOf(row), nil
}

// Provision creates the vendor_offers table and inserts seed rows that are
// not already present. Reference data is provisioned once, never mutated.
func (c *BunCatalog) Provision(ctx context.Context, seed []Vendor) error {
	if _, err := c.db.NewCreateTable().
		Model((*vendorRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: create vendor_offers: %v", contractx.ErrPersistence, err)
	}

	for _, v := range seed {
		exists, err := c.db.NewSelect().
			Model((*vendorRow)(nil)).
			Where("name = ?", v.Name).
			Where("item = ?", v.Item).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("%w: check seed row: %v", contractx.ErrPersistence, err)
		}
		if exists {
			continue
		}
		row := rowOf(v)
		if _, err := c.db.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("%w: insert seed row: %v", contractx.ErrPersistence, err)
		}
	}
	return nil
}

func vendorOf(r vendorRow) Vendor {
	return Vendor{
		Name:         r.Name,
		Item:         r.Item,
		UnitPrice:    r.UnitPrice,
		Freshness:    r.Freshness,
		CostBasis:    r.CostBasis,
		MinMargin:    r.MinMargin,
		Reliability:  r.Reliability,
		ShippingDays: r.ShippingDays,
	}
}

func rowOf(v Vendor) vendorRow {
	return vendorRow{
		Name:         v.Name,
		Item:         v.Item,
		UnitPrice:    v.UnitPrice,
		Freshness:    v.Freshness,
		CostBasis:    v.CostBasis,
		MinMargin:    v.MinMargin,
		Reliability:  v.Reliability,
		ShippingDays: v.ShippingDays,
	}
}
