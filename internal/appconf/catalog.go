package appconf

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var defaultCatalog []byte

// SourceKinds lists the source kinds the ingestion layer has schemas for.
var SourceKinds = []string{"rent", "population", "stores", "revenue", "startup_cost"}

// Catalog describes where the pipeline reads its input tables from and the
// investment constants used by the yield model.
type Catalog struct {
	Version    string         `toml:"version"`
	Investment Investment     `toml:"investment"`
	Sources    []SourceConfig `toml:"sources"`
}

// Investment holds the constants of the yield model. Monetary values are in
// 10,000 KRW.
type Investment struct {
	BaseCost            float64 `toml:"base_cost"`
	StoreSizeUnits      float64 `toml:"store_size_units"`
	DepositMultiplier   float64 `toml:"deposit_multiplier"`
	RentFactor          float64 `toml:"rent_factor"`
	RentDivisor         float64 `toml:"rent_divisor"`
	RevenueColorCeiling float64 `toml:"revenue_color_ceiling"`
}

type SourceConfig struct {
	Name         string `toml:"name"`
	Kind         string `toml:"kind"`
	Path         string `toml:"path"`
	Encoding     string `toml:"encoding"`
	HeaderRow    int    `toml:"header_row"`
	DataStartRow int    `toml:"data_start_row"`
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(bytes.NewReader(defaultCatalog))
}

// LoadCatalog reads a catalog from path, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close() // nolint
	return ParseCatalog(f)
}

// ParseCatalog decodes and validates a TOML catalog.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog for missing or inconsistent entries. All
// problems are reported together.
func (c *Catalog) Validate() error {
	var errs []error
	if c.Version == "" {
		errs = append(errs, errors.New("catalog version is required"))
	}
	if c.Investment.RentDivisor == 0 {
		errs = append(errs, errors.New("investment.rent_divisor must be non-zero"))
	}
	if c.Investment.BaseCost < 0 || c.Investment.StoreSizeUnits < 0 || c.Investment.DepositMultiplier < 0 {
		errs = append(errs, errors.New("investment constants must be non-negative"))
	}
	seen := make(map[string]bool)
	for i, s := range c.Sources {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: name is required", i))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: path is required", i))
		}
		if !validKind(s.Kind) {
			errs = append(errs, fmt.Errorf("sources[%d]: unknown kind %q (want one of %s)", i, s.Kind, strings.Join(SourceKinds, ", ")))
		}
		if s.HeaderRow < 0 {
			errs = append(errs, fmt.Errorf("sources[%d]: header_row must be non-negative", i))
		}
		if s.DataStartRow != 0 && s.DataStartRow <= s.HeaderRow {
			errs = append(errs, fmt.Errorf("sources[%d]: data_start_row must come after header_row", i))
		}
	}
	return errors.Join(errs...)
}

func validKind(kind string) bool {
	for _, k := range SourceKinds {
		if k == kind {
			return true
		}
	}
	return false
}
