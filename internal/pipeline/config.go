package pipeline

import (
	"log/slog"
	"time"

	"smartbizmap.kr/internal/aggregate"
	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/scoring"
	"smartbizmap.kr/internal/telemetry"
)

const DefaultMemoSize = 128

type Config struct {
	Sources  []ingest.Source
	Registry *registry.Registry
	Loader   *ingest.Loader

	Investment scoring.Investment
	Rent       aggregate.RentConversion
	// RevenueColorCeiling caps the revenue heat scale; 0 disables it.
	RevenueColorCeiling float64

	// RefreshInterval enables periodic reloads of every source when positive.
	RefreshInterval time.Duration
	MemoSize        int

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// ApplyCatalog copies the sources and model constants of a data catalog.
func (c *Config) ApplyCatalog(cat *appconf.Catalog) {
	c.Sources = ingest.SourcesFromCatalog(cat)
	c.Investment = scoring.Investment{
		BaseCost:          cat.Investment.BaseCost,
		StoreSizeUnits:    cat.Investment.StoreSizeUnits,
		DepositMultiplier: cat.Investment.DepositMultiplier,
	}
	c.Rent = aggregate.RentConversion{
		Factor:  cat.Investment.RentFactor,
		Divisor: cat.Investment.RentDivisor,
	}
	c.RevenueColorCeiling = cat.Investment.RevenueColorCeiling
}
