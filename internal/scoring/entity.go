package scoring

import (
	"math"

	"smartbizmap.kr/internal/aggregate"
	"smartbizmap.kr/internal/registry"
)

// EntityMetrics is the derived view of one geo entity. Monetary values are
// in 10,000 KRW; rent is per area unit per month.
type EntityMetrics struct {
	EntityID           string            `json:"id"`
	Name               string            `json:"name"`
	District           string            `json:"district"`
	Lat                float64           `json:"lat"`
	Lng                float64           `json:"lng"`
	RentPerAreaUnit    float64           `json:"rentPerAreaUnit"`
	Population         float64           `json:"population"`
	Openings           float64           `json:"openings"`
	Closures           float64           `json:"closures"`
	StoreCount         float64           `json:"storeCount"`
	Revenue            float64           `json:"revenue"`
	TransactionCount   float64           `json:"transactionCount"`
	CompositeScore     float64           `json:"compositeScore"`
	CompetitionScore   float64           `json:"competitionScore"`
	YieldPercent       float64           `json:"yieldPercent"`
	ClosureRatePercent float64           `json:"closureRatePercent"`
	SurvivalPercent    float64           `json:"survivalPercent"`
	TotalInvestment    float64           `json:"totalInvestment"`
	ClosureRateSource  ClosureRateSource `json:"closureRateSource"`
}

// MonthlyRevenue converts a sales total into revenue per store per month in
// 10,000 KRW.
func MonthlyRevenue(acc *aggregate.Accumulator) float64 {
	if acc == nil || acc.Revenue <= 0 {
		return 0
	}
	stores := math.Max(acc.StoreCount(), 1)
	return finite(math.Round(acc.Revenue / stores / acc.RevenueMonths() / 10000))
}

// Yield is the annualised return on the total investment, in percent with
// one decimal. Missing revenue or rent yields 0; losses stay negative.
func Yield(revenue, rent float64, inv Investment) float64 {
	if revenue == 0 || rent == 0 {
		return 0
	}
	total := inv.Total(rent)
	if total <= 0 {
		return 0
	}
	return round1((revenue - rent) * 12 / total * 100)
}

// Derive computes one EntityMetrics per registry entity, in registry order.
// Entities absent from the result are derived from zero totals.
func Derive(result aggregate.Result, reg *registry.Registry, params Params) []EntityMetrics {
	entities := reg.Entities()
	out := make([]EntityMetrics, len(entities))

	salesOverride, hasSalesOverride := params.Overrides.MonthlySalesFor(params.Industry)
	var rateOverride float64
	var hasRateOverride bool
	if params.Industry != "" {
		rateOverride, hasRateOverride = params.Overrides.ClosureRateFor(params.Industry)
	}

	accs := make([]*aggregate.Accumulator, len(entities))
	for i, e := range entities {
		acc := result.Entities[e.ID]
		if acc == nil {
			acc = &aggregate.Accumulator{}
		}
		accs[i] = acc

		m := EntityMetrics{
			EntityID:         e.ID,
			Name:             e.Name,
			District:         e.District,
			Lat:              e.Lat,
			Lng:              e.Lng,
			RentPerAreaUnit:  finite(acc.Rent),
			Population:       finite(acc.Population),
			Openings:         finite(acc.Openings),
			Closures:         finite(acc.Closures),
			StoreCount:       finite(acc.StoreCount()),
			Revenue:          MonthlyRevenue(acc),
			TransactionCount: finite(acc.Transactions),
		}
		if hasSalesOverride && m.Revenue > 0 {
			m.Revenue = salesOverride
		}
		out[i] = m
	}

	var maxRevenue, maxPopulation, maxOpenings, maxClosures float64
	for _, m := range out {
		maxRevenue = math.Max(maxRevenue, m.Revenue)
		maxPopulation = math.Max(maxPopulation, m.Population)
		maxOpenings = math.Max(maxOpenings, m.Openings)
		maxClosures = math.Max(maxClosures, m.Closures)
	}

	for i := range out {
		m := &out[i]
		m.CompositeScore = math.Round(Clamp100((ratio(m.Revenue, maxRevenue)*compositeRevenueWeight +
			ratio(m.Population, maxPopulation)*compositePopulationWeight) * 100))
		m.CompetitionScore = math.Round(Clamp100((ratio(m.Openings, maxOpenings)*competitionOpeningWeight +
			ratio(m.Closures, maxClosures)*competitionClosureWeight) * 100))
		m.YieldPercent = Yield(m.Revenue, m.RentPerAreaUnit, params.Investment)
		m.TotalInvestment = math.Round(finite(params.Investment.Total(m.RentPerAreaUnit)))
		m.ClosureRatePercent, m.ClosureRateSource = closureRate(accs[i].ClosureRate(), rateOverride, hasRateOverride, m.Name)
		m.SurvivalPercent = round1(100 - m.ClosureRatePercent)
	}
	return out
}

// Affordable reports whether an entity fits within budget. A budget of 0 or
// less means no limit.
func Affordable(m EntityMetrics, budget float64) bool {
	return budget <= 0 || m.TotalInvestment <= budget
}

func FilterAffordable(items []EntityMetrics, budget float64) []EntityMetrics {
	out := make([]EntityMetrics, 0, len(items))
	for _, m := range items {
		if Affordable(m, budget) {
			out = append(out, m)
		}
	}
	return out
}
