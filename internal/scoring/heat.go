package scoring

import (
	"fmt"
	"math"
)

// HeatMetric selects the figure the map is colored by.
type HeatMetric string

const (
	HeatRent       HeatMetric = "rent"
	HeatRevenue    HeatMetric = "revenue"
	HeatPopulation HeatMetric = "population"
)

// ParseHeatMetric accepts the metric names above; empty selects revenue.
func ParseHeatMetric(s string) (HeatMetric, error) {
	switch HeatMetric(s) {
	case "":
		return HeatRevenue, nil
	case HeatRent, HeatRevenue, HeatPopulation:
		return HeatMetric(s), nil
	}
	return "", fmt.Errorf("unknown heat metric %q", s)
}

func (h HeatMetric) Value(m EntityMetrics) float64 {
	switch h {
	case HeatRent:
		return m.RentPerAreaUnit
	case HeatPopulation:
		return m.Population
	default:
		return m.Revenue
	}
}

// NoDataColor is used for 0 or missing values and never appears on the ramp.
const NoDataColor = "#cbd5e1"

type rgb struct{ r, g, b float64 }

// violet, blue, green, yellow, red
var heatStops = []rgb{
	{0x8b, 0x5c, 0xf6},
	{0x3b, 0x82, 0xf6},
	{0x22, 0xc5, 0x5e},
	{0xea, 0xb3, 0x08},
	{0xef, 0x44, 0x44},
}

// HeatScale maps values onto the ramp. A positive Ceiling caps the top of the
// scale so a single outlier does not wash out the rest of the map.
type HeatScale struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Ceiling float64 `json:"ceiling,omitempty"`
}

// NewHeatScale spans the positive finite values. Zeros are no-data and do not
// widen the extent.
func NewHeatScale(values []float64, ceiling float64) HeatScale {
	s := HeatScale{Ceiling: ceiling}
	first := true
	for _, v := range values {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if first || v < s.Min {
			s.Min = v
		}
		if first || v > s.Max {
			s.Max = v
		}
		first = false
	}
	return s
}

func (s HeatScale) upper() float64 {
	if s.Ceiling > 0 && s.Ceiling < s.Max {
		return s.Ceiling
	}
	return s.Max
}

// Ratio positions v in [0, 1]. A flat extent places every value mid-ramp.
func (s HeatScale) Ratio(v float64) float64 {
	lo, hi := s.Min, s.upper()
	if hi <= lo {
		return 0.5
	}
	r := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, finite(r)))
}

// Color returns the #rrggbb color for v.
func (s HeatScale) Color(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return NoDataColor
	}
	pos := s.Ratio(v) * float64(len(heatStops)-1)
	i := int(math.Floor(pos))
	if i >= len(heatStops)-1 {
		i = len(heatStops) - 2
	}
	t := pos - float64(i)
	a, b := heatStops[i], heatStops[i+1]
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(a.r+(b.r-a.r)*t)),
		int(math.Round(a.g+(b.g-a.g)*t)),
		int(math.Round(a.b+(b.b-a.b)*t)))
}
