package scoring

import (
	"math"
	"unicode/utf16"
)

// ClosureRateSource records where a closure rate came from.
type ClosureRateSource string

const (
	ClosureFromData     ClosureRateSource = "data"
	ClosureFromOverride ClosureRateSource = "override"
	ClosureFromHash     ClosureRateSource = "hash"
)

const (
	hashBandBase  = 2.0
	hashBandSteps = 21
	hashBandStep  = 0.1
)

// HashBand maps a name to a closure rate in [2.0, 4.0] in steps of 0.1. It
// sums the UTF-16 code units of the name so the value is stable across
// runtimes.
func HashBand(name string) float64 {
	sum := 0
	for _, u := range utf16.Encode([]rune(name)) {
		sum += int(u)
	}
	n := sum % hashBandSteps
	return math.Round((hashBandBase+float64(n)*hashBandStep)*10) / 10
}

// closureRate applies the substitute policy: a measured rate of exactly 0 is
// treated as missing, and a configured override always wins.
func closureRate(measured float64, override float64, hasOverride bool, name string) (float64, ClosureRateSource) {
	if hasOverride {
		return override, ClosureFromOverride
	}
	measured = finite(measured)
	if measured == 0 {
		return HashBand(name), ClosureFromHash
	}
	return round1(measured), ClosureFromData
}
