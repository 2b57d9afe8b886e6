package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbizmap.kr/internal/aggregate"
	"smartbizmap.kr/internal/registry"
)

func industryResult() aggregate.Result {
	return aggregate.Result{Industries: map[string]*aggregate.IndustryAccumulator{
		"커피-음료": {
			SalesSum: 8e9, SalesRows: 4, SalesMonths: 12, TxnSum: 400000,
			StoreSum: 400, OpenSum: 40, ClosureRateSum: 16, ClosureRateSamples: 4, StoreRows: 4,
			Cost: 9800, HasCost: true,
		},
		"한식음식점": {
			SalesSum: 5e9, SalesRows: 1, SalesMonths: 3,
			StoreSum: 200, OpenSum: 10, ClosureRateSum: 4.5, ClosureRateSamples: 1, StoreRows: 1,
		},
		"제과점": {SalesSum: 1.2e9, SalesRows: 1, SalesMonths: 3, StoreSum: 50, StoreRows: 1},
		"양식음식점": {StoreSum: 10, StoreRows: 1},
	}}
}

func industryByName(t *testing.T, items []IndustryMetrics, name string) IndustryMetrics {
	t.Helper()
	for _, m := range items {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("industry %s not found", name)
	return IndustryMetrics{}
}

func TestDeriveIndustry(t *testing.T) {
	reg := testRegistry(t)
	out := DeriveIndustry(industryResult(), reg, reg.Overrides())

	require.Len(t, out, 3, "industries without sales are dropped")
	assert.Equal(t, []string{"한식음식점", "제과점", "커피-음료"}, []string{out[0].Name, out[1].Name, out[2].Name})

	coffee := industryByName(t, out, "커피-음료")
	assert.Equal(t, 1650.0, coffee.MonthlySales, "override, same unit as the computed figure")
	assert.Equal(t, 20000.0, coffee.TicketSize)
	assert.Equal(t, 10.0, coffee.Growth)
	assert.Equal(t, 100.0, coffee.Density)
	assert.Equal(t, 3.8, coffee.ClosureRatePercent)
	assert.Equal(t, 96.2, coffee.StabilityScore)
	assert.Equal(t, 9800.0, coffee.StartupCost, "cost file wins over the override table")
	assert.Equal(t, registry.CategoryFood, coffee.Category)

	korean := industryByName(t, out, "한식음식점")
	assert.Equal(t, 833.0, korean.MonthlySales, "5e9 over 3 months and 200 stores")
	assert.Equal(t, 0.0, korean.TicketSize)
	assert.Equal(t, ClosureFromData, korean.ClosureRateSource)
	assert.Equal(t, 95.5, korean.StabilityScore)
	assert.Equal(t, 12000.0, korean.StartupCost)

	bakery := industryByName(t, out, "제과점")
	assert.Equal(t, 800.0, bakery.MonthlySales)
	assert.Equal(t, ClosureFromHash, bakery.ClosureRateSource)
	assert.Equal(t, HashBand("제과점"), bakery.ClosureRatePercent)

	assert.Equal(t, AxisScale, korean.RadarAxes[0].Axis)
	assert.Equal(t, 100.0, coffee.RadarAxes[0].Value)
	assert.Equal(t, 3.9, korean.RadarAxes[0].Value)
	assert.Equal(t, 0.0, bakery.RadarAxes[0].Value)
}

func TestDeriveIndustryDefaultStartupCost(t *testing.T) {
	reg := testRegistry(t)
	out := DeriveIndustry(aggregate.Result{Industries: map[string]*aggregate.IndustryAccumulator{
		"안경": {SalesSum: 1e8, SalesRows: 1},
	}}, reg, nil)
	require.Len(t, out, 1)
	assert.Equal(t, registry.DefaultStartupCost, out[0].StartupCost)
}

func TestIndustryMonthlySales(t *testing.T) {
	tests := []struct {
		name string
		acc  *aggregate.IndustryAccumulator
		want float64
	}{
		{"nil", nil, 0},
		{"no rows", &aggregate.IndustryAccumulator{}, 0},
		{"per store per month", &aggregate.IndustryAccumulator{SalesSum: 6e9, SalesRows: 2, SalesMonths: 6, StoreSum: 200, StoreRows: 2}, 1000},
		{"no store rows counts one store", &aggregate.IndustryAccumulator{SalesSum: 3e7, SalesRows: 1, SalesMonths: 3}, 1000},
		{"rows without month counts cover a year", &aggregate.IndustryAccumulator{SalesSum: 1.2e8, SalesRows: 1}, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndustryMonthlySales(tt.acc))
		})
	}
}

func TestIndustrySalesMatchEntityRevenueUnit(t *testing.T) {
	// one location, one quarter, one industry: both views see the same stores
	entity := &aggregate.Accumulator{
		Revenue:          5e9,
		StoresByIndustry: map[string]float64{"한식음식점": 200},
		RevenueQuarters:  map[string]bool{"20241": true},
	}
	industry := &aggregate.IndustryAccumulator{SalesSum: 5e9, SalesRows: 1, SalesMonths: 3, StoreSum: 200, StoreRows: 1}
	assert.Equal(t, MonthlyRevenue(entity), IndustryMonthlySales(industry))
}

func TestFilterIndustries(t *testing.T) {
	reg := testRegistry(t)
	all := DeriveIndustry(industryResult(), reg, reg.Overrides())

	t.Run("search rescales radar over the filtered set", func(t *testing.T) {
		out := FilterIndustries(all, IndustryFilter{Search: "커피"})
		require.Len(t, out, 1)
		for _, axis := range out[0].RadarAxes {
			assert.Equal(t, 50.0, axis.Value, axis.Axis)
		}
		assert.Equal(t, 100.0, industryByName(t, all, "커피-음료").RadarAxes[0].Value, "input is not modified")
	})

	t.Run("min startup cost", func(t *testing.T) {
		out := FilterIndustries(all, IndustryFilter{MinStartupCost: 10000})
		assert.Len(t, out, 2)
		for _, m := range out {
			assert.NotEqual(t, "커피-음료", m.Name)
		}
	})

	t.Run("min sales", func(t *testing.T) {
		out := FilterIndustries(all, IndustryFilter{MinSales: 810})
		require.Len(t, out, 2)
		assert.Equal(t, []string{"한식음식점", "커피-음료"}, []string{out[0].Name, out[1].Name})
	})

	t.Run("category", func(t *testing.T) {
		assert.Len(t, FilterIndustries(all, IndustryFilter{Category: registry.CategoryFood}), 3)
		assert.Empty(t, FilterIndustries(all, IndustryFilter{Category: registry.CategoryMedical}))
	})
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 50.0, MinMax(3, 3, 3))
	assert.Equal(t, 0.0, MinMax(1, 1, 5))
	assert.Equal(t, 100.0, MinMax(5, 1, 5))
	assert.Equal(t, 25.0, MinMax(2, 1, 5))
}
