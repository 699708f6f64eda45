package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
)

// StaticCatalog serves reference data from a fixed slice. It backs local runs
// and tests; production uses BunCatalog against the same contract.
type StaticCatalog struct {
	vendors []Vendor
	items   map[string]struct{}
}

func NewStaticCatalog(vendors []Vendor) *StaticCatalog {
	items := make(map[string]struct{}, len(vendors))
	for _, v := range vendors {
		items[strings.ToLower(v.Item)] = struct{}{}
	}
	return &StaticCatalog{
		vendors: append([]Vendor(nil), vendors...),
		items:   items,
	}
}

func (c *StaticCatalog) FindVendors(ctx context.Context, item string, quantity int) ([]Snapshot, error) {
	key := strings.ToLower(strings.TrimSpace(item))
	if _, ok := c.items[key]; !ok {
		return nil, fmt.Errorf("%w: item %q is not in the catalog", contractx.ErrNotFound, item)
	}

	var out []Snapshot
	for _, v := range c.vendors {
		if strings.ToLower(v.Item) == key {
			out = append(out, snapshotOf(v))
		}
	}
	SortSnapshots(out)
	return out, nil
}

func (c *StaticCatalog) Vendor(ctx context.Context, name, item string) (Vendor, error) {
	key := strings.ToLower(strings.TrimSpace(item))
	for _, v := range c.vendors {
		if v.Name == name && strings.ToLower(v.Item) == key {
			return v, nil
		}
	}
	return Vendor{}, fmt.Errorf("%w: vendor %q does not carry %q", contractx.ErrNotFound, name, item)
}

// SortSnapshots orders by freshness descending, then unit price ascending.
func SortSnapshots(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Freshness != snaps[j].Freshness {
			return snaps[i].Freshness > snaps[j].Freshness
		}
		return snaps[i].UnitPrice < snaps[j].UnitPrice
	})
}

// DefaultSeed provisions a small seafood catalog for local runs.
func DefaultSeed() []Vendor {
	return []Vendor{
		{Name: "Tsukiji Direct", Item: "salmon", UnitPrice: 28.00, Freshness: 9.2, CostBasis: 18.00, MinMargin: 0.20, Reliability: 0.97, ShippingDays: 1},
		{Name: "Pacific Catch Co", Item: "salmon", UnitPrice: 25.50, Freshness: 8.4, CostBasis: 17.00, MinMargin: 0.18, Reliability: 0.93, ShippingDays: 2},
		{Name: "North Wharf Traders", Item: "salmon", UnitPrice: 22.75, Freshness: 6.8, CostBasis: 15.50, MinMargin: 0.15, Reliability: 0.88, ShippingDays: 3},
		{Name: "Tsukiji Direct", Item: "tuna", UnitPrice: 34.00, Freshness: 9.5, CostBasis: 24.00, MinMargin: 0.22, Reliability: 0.97, ShippingDays: 1},
		{Name: "North Wharf Traders", Item: "tuna", UnitPrice: 29.00, Freshness: 7.1, CostBasis: 21.00, MinMargin: 0.16, Reliability: 0.88, ShippingDays: 3},
		{Name: "Pacific Catch Co", Item: "mackerel", UnitPrice: 12.25, Freshness: 8.9, CostBasis: 8.00, MinMargin: 0.25, Reliability: 0.93, ShippingDays: 2},
		{Name: "Bayline Seafoods", Item: "mackerel", UnitPrice: 10.80, Freshness: 5.6, CostBasis: 7.25, MinMargin: 0.20, Reliability: 0.81, ShippingDays: 4},
		{Name: "Bayline Seafoods", Item: "uni", UnitPrice: 88.00, Freshness: 9.0, CostBasis: 62.00, MinMargin: 0.30, Reliability: 0.81, ShippingDays: 2},
	}
}
