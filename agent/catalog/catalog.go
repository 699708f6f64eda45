package catalog

import "context"

type QualityGrade string

const (
	GradeExcellent QualityGrade = "EXCELLENT"
	GradeGood      QualityGrade = "GOOD"
	GradeFair      QualityGrade = "FAIR"
	GradePoor      QualityGrade = "POOR"
)

// Vendor is one row of immutable reference data: a vendor's terms for a
// single item.
type Vendor struct {
	Name         string  `json:"name"`
	Item         string  `json:"item"`
	UnitPrice    float64 `json:"unit_price"`
	Freshness    float64 `json:"freshness"`
	CostBasis    float64 `json:"cost_basis"`
	MinMargin    float64 `json:"min_margin"`
	Reliability  float64 `json:"reliability"`
	ShippingDays int     `json:"shipping_days"`
}

// Snapshot is the read-model handed to callers of FindVendors.
type Snapshot struct {
	Vendor                string       `json:"vendor"`
	UnitPrice             float64      `json:"unit_price"`
	Freshness             float64      `json:"freshness"`
	QualityGrade          QualityGrade `json:"quality_grade"`
	SashimiEligible       bool         `json:"sashimi_eligible"`
	EstimatedShippingDays int          `json:"estimated_shipping_days"`
	Reliability           float64      `json:"reliability"`
}

// Catalog is the read-only vendor inventory. FindVendors returns snapshots
// sorted by freshness descending, price ascending on ties. An unknown item is
// an error; a known item nobody carries is an empty result.
type Catalog interface {
	FindVendors(ctx context.Context, item string, quantity int) ([]Snapshot, error)
	Vendor(ctx context.Context, name, item string) (Vendor, error)
}

// GradeFor maps a freshness score to its quality grade.
func GradeFor(freshness float64) QualityGrade {
	switch {
	case freshness >= 9:
		return GradeExcellent
	case freshness >= 7:
		return GradeGood
	case freshness >= 5:
		return GradeFair
	default:
		return GradePoor
	}
}

// SashimiEligible reports whether freshness clears the raw-consumption bar.
func SashimiEligible(freshness float64) bool {
	return freshness >= 8
}

func snapshotOf(v Vendor) Snapshot {
	return Snapshot{
		Vendor:                v.Name,
		UnitPrice:             v.UnitPrice,
		Freshness:             v.Freshness,
		QualityGrade:          GradeFor(v.Freshness),
		SashimiEligible:       SashimiEligible(v.Freshness),
		EstimatedShippingDays: v.ShippingDays,
		Reliability:           v.Reliability,
	}
}
