package aggregate

import (
	"slices"
)

// Accumulator holds the running figures of one geo entity.
type Accumulator struct {
	// Rent is the maximum converted rent seen across rows.
	Rent               float64 `json:"rent"`
	Population         float64 `json:"population"`
	Openings           float64 `json:"openings"`
	Closures           float64 `json:"closures"`
	Revenue            float64 `json:"revenue"`
	WeekendRevenue     float64 `json:"weekendRevenue"`
	Transactions       float64 `json:"transactions"`
	ClosureRateSum     float64 `json:"closureRateSum"`
	ClosureRateSamples int     `json:"closureRateSamples"`
	// StoresByIndustry keeps the largest store count seen per industry, since
	// store counts are stock figures repeated every quarter.
	StoresByIndustry map[string]float64 `json:"storesByIndustry"`
	RevenueQuarters  map[string]bool    `json:"revenueQuarters"`
}

func newAccumulator() *Accumulator {
	return &Accumulator{
		StoresByIndustry: make(map[string]float64),
		RevenueQuarters:  make(map[string]bool),
	}
}

// StoreCount is the total of the per-industry store counts, summed in
// industry name order.
func (a *Accumulator) StoreCount() float64 {
	total := 0.0
	industries := make([]string, 0, len(a.StoresByIndustry))
	for ind := range a.StoresByIndustry {
		industries = append(industries, ind)
	}
	slices.Sort(industries)
	for _, ind := range industries {
		total += a.StoresByIndustry[ind]
	}
	return total
}

// ClosureRate is the mean of the sampled closure-rate cells, 0 without samples.
func (a *Accumulator) ClosureRate() float64 {
	if a.ClosureRateSamples == 0 {
		return 0
	}
	return a.ClosureRateSum / float64(a.ClosureRateSamples)
}

// RevenueMonths is the number of months the revenue figures cover, assuming
// a full year when rows carry no quarter codes.
func (a *Accumulator) RevenueMonths() float64 {
	if len(a.RevenueQuarters) == 0 {
		return 12
	}
	return float64(3 * len(a.RevenueQuarters))
}

func (a *Accumulator) merge(o *Accumulator) {
	if o.Rent > a.Rent {
		a.Rent = o.Rent
	}
	a.Population += o.Population
	a.Openings += o.Openings
	a.Closures += o.Closures
	a.Revenue += o.Revenue
	a.WeekendRevenue += o.WeekendRevenue
	a.Transactions += o.Transactions
	a.ClosureRateSum += o.ClosureRateSum
	a.ClosureRateSamples += o.ClosureRateSamples
	for ind, n := range o.StoresByIndustry {
		if n > a.StoresByIndustry[ind] {
			a.StoresByIndustry[ind] = n
		}
	}
	for q := range o.RevenueQuarters {
		a.RevenueQuarters[q] = true
	}
}

func (a *Accumulator) clone() *Accumulator {
	c := *a
	c.StoresByIndustry = make(map[string]float64, len(a.StoresByIndustry))
	for k, v := range a.StoresByIndustry {
		c.StoresByIndustry[k] = v
	}
	c.RevenueQuarters = make(map[string]bool, len(a.RevenueQuarters))
	for k, v := range a.RevenueQuarters {
		c.RevenueQuarters[k] = v
	}
	return &c
}

// IndustryAccumulator holds city-wide running figures of one industry.
// SalesMonths is the number of months the sales rows cover, summed over
// rows: 3 for a row with a quarter code, 12 otherwise.
type IndustryAccumulator struct {
	SalesSum           float64 `json:"salesSum"`
	WeekendSum         float64 `json:"weekendSum"`
	TxnSum             float64 `json:"txnSum"`
	SalesRows          int     `json:"salesRows"`
	SalesMonths        float64 `json:"salesMonths"`
	StoreSum           float64 `json:"storeSum"`
	OpenSum            float64 `json:"openSum"`
	ClosureRateSum     float64 `json:"closureRateSum"`
	ClosureRateSamples int     `json:"closureRateSamples"`
	StoreRows          int     `json:"storeRows"`
	Cost               float64 `json:"cost"`
	HasCost            bool    `json:"hasCost"`
}

// MonthsCovered is SalesMonths, or a full year per row when the rows were
// counted without it.
func (a *IndustryAccumulator) MonthsCovered() float64 {
	if a.SalesMonths > 0 {
		return a.SalesMonths
	}
	return float64(12 * a.SalesRows)
}

// StoresPerRow is the mean store count of one (location, quarter) row, 0
// without store rows.
func (a *IndustryAccumulator) StoresPerRow() float64 {
	if a.StoreRows == 0 {
		return 0
	}
	return a.StoreSum / float64(a.StoreRows)
}

// ClosureRate is the mean of the sampled closure-rate cells, 0 without samples.
func (a *IndustryAccumulator) ClosureRate() float64 {
	if a.ClosureRateSamples == 0 {
		return 0
	}
	return a.ClosureRateSum / float64(a.ClosureRateSamples)
}

func (a *IndustryAccumulator) merge(o *IndustryAccumulator) {
	a.SalesSum += o.SalesSum
	a.WeekendSum += o.WeekendSum
	a.TxnSum += o.TxnSum
	a.SalesRows += o.SalesRows
	a.SalesMonths += o.SalesMonths
	a.StoreSum += o.StoreSum
	a.OpenSum += o.OpenSum
	a.ClosureRateSum += o.ClosureRateSum
	a.ClosureRateSamples += o.ClosureRateSamples
	a.StoreRows += o.StoreRows
	if o.HasCost {
		a.Cost = o.Cost
		a.HasCost = true
	}
}
