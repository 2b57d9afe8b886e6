// Package scoring derives the displayed metrics from aggregated totals.
// Every function here is total: degenerate inputs resolve to 0, 50 or the
// neutral heat color, never to NaN.
package scoring

import (
	"math"

	"smartbizmap.kr/internal/registry"
)

// Investment holds the constants of the yield model, in 10,000 KRW.
type Investment struct {
	BaseCost          float64
	StoreSizeUnits    float64
	DepositMultiplier float64
}

func DefaultInvestment() Investment {
	return Investment{BaseCost: 5000, StoreSizeUnits: 10, DepositMultiplier: 10}
}

// Total is the up-front investment for a store paying rent per area unit.
func (inv Investment) Total(rent float64) float64 {
	return inv.BaseCost + rent*inv.StoreSizeUnits*inv.DepositMultiplier
}

type Params struct {
	Investment Investment
	Overrides  *registry.Overrides
	// Industry is the canonical industry the figures were filtered by, empty
	// for the all-industry view. It selects the override constants.
	Industry string
}

const (
	compositeRevenueWeight    = 0.7
	compositePopulationWeight = 0.3
	competitionOpeningWeight  = 0.6
	competitionClosureWeight  = 0.4
)

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ratio is v/max, or 0 when max carries no information.
func ratio(v, max float64) float64 {
	if max <= 0 || math.IsNaN(max) || math.IsInf(max, 0) {
		return 0
	}
	return finite(v / max)
}

// Clamp100 bounds v to [0, 100].
func Clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, finite(v)))
}

func round1(v float64) float64 {
	return math.Round(finite(v)*10) / 10
}

// MinMax scales v into [0, 100] over [min, max]. A flat extent scores 50.
func MinMax(v, min, max float64) float64 {
	if max == min {
		return 50
	}
	return finite((v - min) / (max - min) * 100)
}

func extent(values []float64) (min, max float64) {
	for i, v := range values {
		v = finite(v)
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
	}
	return min, max
}
