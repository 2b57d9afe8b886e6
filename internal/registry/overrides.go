package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

//go:embed overrides.toml
var defaultOverrides []byte

// DefaultStartupCost is used for industries with no cost figure anywhere,
// in 10,000 KRW.
const DefaultStartupCost = 10000.0

// Overrides is the versioned table of configured constants that replace
// source fields known to be unreliable.
type Overrides struct {
	Version      string             `toml:"version"`
	ClosureRate  map[string]float64 `toml:"closure_rate"`
	MonthlySales map[string]float64 `toml:"monthly_sales"`
	StartupCost  map[string]float64 `toml:"startup_cost"`
}

// DefaultOverrides returns the table embedded in the binary.
func DefaultOverrides() (*Overrides, error) {
	return ParseOverrides(bytes.NewReader(defaultOverrides))
}

// LoadOverrides reads a table from path, or the embedded one when path is empty.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return DefaultOverrides()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening overrides: %w", err)
	}
	defer f.Close() // nolint
	return ParseOverrides(f)
}

// ParseOverrides decodes a TOML override table and checks that every key
// names a known industry.
func ParseOverrides(r io.Reader) (*Overrides, error) {
	var o Overrides
	if err := toml.NewDecoder(r).Decode(&o); err != nil {
		return nil, fmt.Errorf("decoding overrides: %w", err)
	}
	if o.Version == "" {
		return nil, errors.New("overrides version is required")
	}

	known := make(map[string]bool, len(industrySeeds))
	for _, ind := range industrySeeds {
		known[ind.CanonicalName] = true
	}
	var errs []error
	for table, values := range map[string]map[string]float64{
		"closure_rate":  o.ClosureRate,
		"monthly_sales": o.MonthlySales,
		"startup_cost":  o.StartupCost,
	} {
		for _, name := range sortedKeys(values) {
			if !known[name] {
				errs = append(errs, fmt.Errorf("%s: unknown industry %q", table, name))
			}
			if values[name] < 0 {
				errs = append(errs, fmt.Errorf("%s: negative value for %q", table, name))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &o, nil
}

// ClosureRateFor returns the configured closure rate for an industry.
func (o *Overrides) ClosureRateFor(industry string) (float64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o.ClosureRate[industry]
	return v, ok
}

// MonthlySalesFor returns the configured monthly sales per store.
func (o *Overrides) MonthlySalesFor(industry string) (float64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o.MonthlySales[industry]
	return v, ok
}

// StartupCostFor returns the configured startup cost of an industry.
func (o *Overrides) StartupCostFor(industry string) (float64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o.StartupCost[industry]
	return v, ok
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
