package aggregate

import (
	"math"
	"strconv"
	"strings"
)

var numberCleaner = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\"", "", "%", "", "원", "")

// ParseNumber reads a numeric cell, ignoring thousands separators, quotes,
// percent signs and currency suffixes. Anything unparsable is 0.
func ParseNumber(s string) float64 {
	v, _ := ParseOptionalNumber(s)
	return v
}

// ParseOptionalNumber is ParseNumber that also reports whether the cell held
// a number at all, so blank and placeholder cells can be left out of averages.
func ParseOptionalNumber(s string) (float64, bool) {
	s = numberCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// RentConversion turns a raw rent figure into rent per area unit:
// round(raw * Factor / Divisor).
type RentConversion struct {
	Factor  float64
	Divisor float64
}

func DefaultRentConversion() RentConversion {
	return RentConversion{Factor: 3.3, Divisor: 10}
}

func (c RentConversion) PerAreaUnit(raw float64) float64 {
	if c.Divisor == 0 {
		return 0
	}
	return math.Round(raw * c.Factor / c.Divisor)
}
