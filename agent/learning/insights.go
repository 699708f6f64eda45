package learning

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
	historyx "github.com/seaharbor/procure-agent/agent/history"
	negotiationx "github.com/seaharbor/procure-agent/agent/negotiation"
)

type InsightStatus string

const (
	NoHistory  InsightStatus = "NO_HISTORY"
	HasHistory InsightStatus = "HAS_HISTORY"
)

// priceEpsilon guards the value-score division against a zero price.
const priceEpsilon = 0.01

// Insight is a pure projection over the purchase history: deterministic for a
// fixed store snapshot and recomputed fresh on every call.
type Insight struct {
	Status        InsightStatus `json:"status"`
	Item          string        `json:"item"`
	BestVendor    string        `json:"best_vendor,omitempty"`
	AvgPrice      float64       `json:"avg_price,omitempty"`
	Count         int           `json:"count,omitempty"`
	BestFreshness float64       `json:"best_freshness,omitempty"`
}

// Insights scores each vendor by the mean of freshness/price across its
// purchases of the item and reports the best scorer, alongside the average
// price and best freshness over all matching records. The aggregation is
// order-insensitive.
func Insights(ctx context.Context, store historyx.Store, item string) (Insight, error) {
	if strings.TrimSpace(item) == "" {
		return Insight{}, fmt.Errorf("%w: item is required", contractx.ErrValidation)
	}

	recs, err := store.All(ctx, item)
	if err != nil {
		return Insight{}, err
	}
	if len(recs) == 0 {
		return Insight{Status: NoHistory, Item: item}, nil
	}

	type vendorAgg struct {
		scoreSum float64
		count    int
	}
	byVendor := make(map[string]*vendorAgg)

	var priceSum, bestFreshness float64
	for _, r := range recs {
		price := negotiationx.Dollars(r.UnitPriceCents)
		priceSum += price
		if r.Freshness > bestFreshness {
			bestFreshness = r.Freshness
		}

		agg := byVendor[r.Vendor]
		if agg == nil {
			agg = &vendorAgg{}
			byVendor[r.Vendor] = agg
		}
		agg.scoreSum += r.Freshness / max(price, priceEpsilon)
		agg.count++
	}

	best := ""
	bestScore := -1.0
	for vendor, agg := range byVendor {
		score := agg.scoreSum / float64(agg.count)
		// Ties break lexicographically so the result is stable under map order.
		if score > bestScore || (score == bestScore && vendor < best) {
			best = vendor
			bestScore = score
		}
	}

	return Insight{
		Status:        HasHistory,
		Item:          item,
		BestVendor:    best,
		AvgPrice:      priceSum / float64(len(recs)),
		Count:         len(recs),
		BestFreshness: bestFreshness,
	}, nil
}
