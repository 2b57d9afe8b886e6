package scoring

import (
	"math"
	"strings"

	"smartbizmap.kr/internal/aggregate"
	"smartbizmap.kr/internal/registry"
)

// RadarAxis is one of the five comparison axes, scaled over the set it was
// normalised with.
type RadarAxis struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
	Raw   float64 `json:"raw"`
}

const (
	AxisScale     = "매출규모"
	AxisGrowth    = "성장성"
	AxisDensity   = "밀집도"
	AxisTicket    = "객단가"
	AxisStability = "안정성"
)

var radarAxes = [5]string{AxisScale, AxisGrowth, AxisDensity, AxisTicket, AxisStability}

// IndustryMetrics is the city-wide view of one industry. MonthlySales and
// StartupCost are in 10,000 KRW, TicketSize in KRW.
type IndustryMetrics struct {
	Name               string            `json:"name"`
	Category           registry.Category `json:"category"`
	CategoryLabel      string            `json:"categoryLabel"`
	MonthlySales       float64           `json:"monthlySales"`
	Growth             float64           `json:"growth"`
	Density            float64           `json:"density"`
	TicketSize         float64           `json:"ticketSize"`
	ClosureRatePercent float64           `json:"closureRatePercent"`
	StabilityScore     float64           `json:"stabilityScore"`
	ClosureRateSource  ClosureRateSource `json:"closureRateSource"`
	StartupCost        float64           `json:"startupCost"`
	RadarAxes          [5]RadarAxis      `json:"radar"`
}

func (m IndustryMetrics) axisValues() [5]float64 {
	return [5]float64{m.MonthlySales, m.Growth, m.Density, m.TicketSize, m.StabilityScore}
}

// IndustryMonthlySales is sales per store per month in 10,000 KRW, the unit
// of the monthly_sales override table. Sales are spread over the months the
// rows cover and then over the mean store count of a row.
func IndustryMonthlySales(acc *aggregate.IndustryAccumulator) float64 {
	if acc == nil || acc.SalesSum <= 0 || acc.SalesRows == 0 {
		return 0
	}
	stores := math.Max(acc.StoresPerRow(), 1)
	return finite(math.Round(acc.SalesSum / acc.MonthsCovered() / stores / 10000))
}

// DeriveIndustry computes per-industry averages for every industry with
// sales, in registry order. Radar axes are normalised over the returned set.
func DeriveIndustry(result aggregate.Result, reg *registry.Registry, overrides *registry.Overrides) []IndustryMetrics {
	var out []IndustryMetrics
	for _, ind := range reg.Industries() {
		acc := result.Industries[ind.CanonicalName]
		if acc == nil {
			acc = &aggregate.IndustryAccumulator{}
		}

		m := IndustryMetrics{
			Name:          ind.CanonicalName,
			Category:      ind.Category,
			CategoryLabel: ind.Category.Label(),
		}

		m.MonthlySales = IndustryMonthlySales(acc)
		if v, ok := overrides.MonthlySalesFor(ind.CanonicalName); ok && acc.SalesRows > 0 {
			m.MonthlySales = v
		}
		if acc.TxnSum > 0 {
			m.TicketSize = finite(math.Round(acc.SalesSum / acc.TxnSum))
		}

		if acc.StoreRows > 0 {
			m.Growth = round1(acc.OpenSum / float64(acc.StoreRows))
			m.Density = round1(acc.StoresPerRow())
		}
		avgRate := acc.ClosureRate()
		override, hasOverride := overrides.ClosureRateFor(ind.CanonicalName)
		m.ClosureRatePercent, m.ClosureRateSource = closureRate(avgRate, override, hasOverride, ind.CanonicalName)
		m.StabilityScore = round1(100 - m.ClosureRatePercent)

		switch v, ok := overrides.StartupCostFor(ind.CanonicalName); {
		case acc.HasCost && acc.Cost > 0:
			m.StartupCost = acc.Cost
		case ok:
			m.StartupCost = v
		default:
			m.StartupCost = registry.DefaultStartupCost
		}

		if m.MonthlySales <= 0 {
			continue
		}
		out = append(out, m)
	}
	return NormalizeRadar(out)
}

// IndustryFilter narrows the industry view. Zero values disable a criterion.
// MinStartupCost and MinSales are in 10,000 KRW.
type IndustryFilter struct {
	Category       registry.Category
	MinStartupCost float64
	MinSales       float64
	Search         string
}

func (f IndustryFilter) match(m IndustryMetrics) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if m.StartupCost < f.MinStartupCost || m.MonthlySales < f.MinSales {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" && !strings.Contains(m.Name, q) {
		return false
	}
	return true
}

// FilterIndustries applies f and rescales the radar axes over what remains.
func FilterIndustries(items []IndustryMetrics, f IndustryFilter) []IndustryMetrics {
	out := make([]IndustryMetrics, 0, len(items))
	for _, m := range items {
		if f.match(m) {
			out = append(out, m)
		}
	}
	return NormalizeRadar(out)
}

// NormalizeRadar recomputes every radar axis by min-max scaling over items.
// The input slice is not modified.
func NormalizeRadar(items []IndustryMetrics) []IndustryMetrics {
	out := make([]IndustryMetrics, len(items))
	copy(out, items)
	for axis := range radarAxes {
		values := make([]float64, len(out))
		for i, m := range out {
			values[i] = finite(m.axisValues()[axis])
		}
		min, max := extent(values)
		for i := range out {
			out[i].RadarAxes[axis] = RadarAxis{
				Axis:  radarAxes[axis],
				Value: round1(MinMax(values[i], min, max)),
				Raw:   values[i],
			}
		}
	}
	return out
}
