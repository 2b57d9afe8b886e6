package scoring

import (
	"math"
	"sort"
)

// RankedEntity is an entity scored for how well it fits an amount of capital.
type RankedEntity struct {
	EntityMetrics
	Rank         int     `json:"rank"`
	CapitalScore float64 `json:"capitalScore"`
	OpeningScore float64 `json:"openingScore"`
	TrafficScore float64 `json:"trafficScore"`
	TotalScore   float64 `json:"totalScore"`
}

const (
	capitalWeight = 0.2
	openingWeight = 0.3
	trafficWeight = 0.5
)

// capitalScore rewards rent well under the budget's purchasing power and
// drops steeply once rent exceeds it.
func capitalScore(rent, budget float64) float64 {
	power := budget / 100
	if power <= 0 {
		power = 1
	}
	if rent <= power {
		return finite(100 - rent/power*20)
	}
	return math.Max(0, finite(100-rent/power*50))
}

// Rank scores items for budget (10,000 KRW) and orders them by total score.
// Ties keep the input order. Ranks start at 1.
func Rank(items []EntityMetrics, budget float64) []RankedEntity {
	openings := make([]float64, len(items))
	traffic := make([]float64, len(items))
	for i, m := range items {
		openings[i] = m.Openings
		traffic[i] = m.Population
	}
	minOpen, maxOpen := extent(openings)
	minTraffic, maxTraffic := extent(traffic)

	out := make([]RankedEntity, len(items))
	for i, m := range items {
		r := RankedEntity{
			EntityMetrics: m,
			CapitalScore:  round1(capitalScore(m.RentPerAreaUnit, budget)),
			OpeningScore:  round1(MinMax(openings[i], minOpen, maxOpen)),
			TrafficScore:  round1(MinMax(traffic[i], minTraffic, maxTraffic)),
		}
		r.TotalScore = round1(capitalScore(m.RentPerAreaUnit, budget)*capitalWeight +
			MinMax(openings[i], minOpen, maxOpen)*openingWeight +
			MinMax(traffic[i], minTraffic, maxTraffic)*trafficWeight)
		out[i] = r
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalScore > out[j].TotalScore })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
