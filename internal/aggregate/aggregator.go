// Package aggregate folds ingested records into per-entity and per-industry
// accumulators.
package aggregate

import (
	"sync"

	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/resolver"
)

// maxUnmatchedLabels bounds the labels kept per source for diagnostics.
const maxUnmatchedLabels = 20

type Options struct {
	// Industry restricts store and revenue rows to one canonical industry.
	// Empty aggregates every industry.
	Industry string
	Rent     RentConversion
}

// SourceStats describes how the rows of one source resolved.
type SourceStats struct {
	Kind            ingest.Kind `json:"kind"`
	Rows            int         `json:"rows"`
	Matched         int         `json:"matched"`
	Unmatched       int         `json:"unmatched"`
	Filtered        int         `json:"filtered"`
	UnmatchedLabels []string    `json:"unmatchedLabels"`
}

// Result is the aggregation output. Entities holds an accumulator for every
// registry entity, zero-filled when no row matched it.
type Result struct {
	Entities   map[string]*Accumulator
	Industries map[string]*IndustryAccumulator
	Sources    map[string]SourceStats
}

// Aggregator folds sources one at a time. Fold only reads the registries and
// may run concurrently; Merge and Add are serialised. Totals are float sums,
// so callers that need identical results across runs merge contributions in
// a fixed order.
type Aggregator struct {
	reg  *registry.Registry
	res  *resolver.Resolver
	opts Options

	mu         sync.Mutex
	entities   map[string]*Accumulator
	industries map[string]*IndustryAccumulator
	sources    map[string]SourceStats
}

func New(reg *registry.Registry, res *resolver.Resolver, opts Options) *Aggregator {
	if opts.Rent.Divisor == 0 {
		opts.Rent = DefaultRentConversion()
	}
	a := &Aggregator{
		reg:        reg,
		res:        res,
		opts:       opts,
		entities:   make(map[string]*Accumulator),
		industries: make(map[string]*IndustryAccumulator),
		sources:    make(map[string]SourceStats),
	}
	for _, e := range reg.Entities() {
		a.entities[e.ID] = newAccumulator()
	}
	return a
}

// Contribution is the folded content of one source, not yet merged.
type Contribution struct {
	source     string
	entities   map[string]*Accumulator
	industries map[string]*IndustryAccumulator
	stats      SourceStats
}

func (c *Contribution) entity(id string) *Accumulator {
	acc, ok := c.entities[id]
	if !ok {
		acc = newAccumulator()
		c.entities[id] = acc
	}
	return acc
}

func (c *Contribution) industry(name string) *IndustryAccumulator {
	acc, ok := c.industries[name]
	if !ok {
		acc = &IndustryAccumulator{}
		c.industries[name] = acc
	}
	return acc
}

func (c *Contribution) miss(label string) {
	c.stats.Unmatched++
	if len(c.stats.UnmatchedLabels) < maxUnmatchedLabels {
		c.stats.UnmatchedLabels = append(c.stats.UnmatchedLabels, label)
	}
}

// Fold resolves and totals the records of one source without touching the
// aggregator's state.
func (a *Aggregator) Fold(source string, kind ingest.Kind, records []ingest.Record) *Contribution {
	c := &Contribution{
		source:     source,
		entities:   make(map[string]*Accumulator),
		industries: make(map[string]*IndustryAccumulator),
		stats:      SourceStats{Kind: kind, Rows: len(records)},
	}
	for _, rec := range records {
		a.fold(c, kind, rec)
	}
	return c
}

// Merge adds a folded source to the totals in a single step, so a reader
// never sees half a file.
func (a *Aggregator) Merge(c *Contribution) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, acc := range c.entities {
		a.entities[id].merge(acc)
	}
	for name, acc := range c.industries {
		existing, ok := a.industries[name]
		if !ok {
			existing = &IndustryAccumulator{}
			a.industries[name] = existing
		}
		existing.merge(acc)
	}
	stats := c.stats
	prev := a.sources[c.source]
	stats.Rows += prev.Rows
	stats.Matched += prev.Matched
	stats.Unmatched += prev.Unmatched
	stats.Filtered += prev.Filtered
	labels := append(append([]string(nil), prev.UnmatchedLabels...), stats.UnmatchedLabels...)
	if len(labels) > maxUnmatchedLabels {
		labels = labels[:maxUnmatchedLabels]
	}
	stats.UnmatchedLabels = labels
	a.sources[c.source] = stats
}

// Add folds and merges the records of one source.
func (a *Aggregator) Add(source string, kind ingest.Kind, records []ingest.Record) {
	a.Merge(a.Fold(source, kind, records))
}

func (a *Aggregator) fold(c *Contribution, kind ingest.Kind, rec ingest.Record) {
	switch kind {
	case ingest.KindRent:
		entity, ok := a.resolveEntity(c, rec)
		if !ok {
			return
		}
		rent := a.opts.Rent.PerAreaUnit(ParseNumber(rec[ingest.FieldRent]))
		acc := c.entity(entity)
		if rent > acc.Rent {
			acc.Rent = rent
		}
		c.stats.Matched++

	case ingest.KindPopulation:
		entity, ok := a.resolveEntity(c, rec)
		if !ok {
			return
		}
		c.entity(entity).Population += ParseNumber(rec[ingest.FieldPopulation])
		c.stats.Matched++

	case ingest.KindStores, ingest.KindRevenue:
		industry, match := a.res.ResolveIndustry(rec[ingest.FieldIndustry])
		if match != resolver.None {
			a.foldIndustry(c, kind, industry.CanonicalName, rec)
		}
		entity, found := a.resolveEntity(c, rec)
		if !found {
			return
		}
		if match == resolver.None {
			c.miss(rec[ingest.FieldIndustry])
			return
		}
		if a.opts.Industry != "" && industry.CanonicalName != a.opts.Industry {
			c.stats.Filtered++
			return
		}
		a.foldEntityActivity(c.entity(entity), kind, industry.CanonicalName, rec)
		c.stats.Matched++

	case ingest.KindStartupCost:
		industry, match := a.res.ResolveIndustry(rec[ingest.FieldIndustry])
		if match == resolver.None {
			c.miss(rec[ingest.FieldIndustry])
			return
		}
		acc := c.industry(industry.CanonicalName)
		acc.Cost = ParseNumber(rec[ingest.FieldCost])
		acc.HasCost = true
		c.stats.Matched++
	}
}

func (a *Aggregator) resolveEntity(c *Contribution, rec ingest.Record) (string, bool) {
	label := rec[ingest.FieldLocation]
	e, kind := a.res.ResolveGeo(label)
	if kind == resolver.None {
		c.miss(label)
		return "", false
	}
	return e.ID, true
}

func (a *Aggregator) foldEntityActivity(acc *Accumulator, kind ingest.Kind, industry string, rec ingest.Record) {
	if kind == ingest.KindStores {
		if n := ParseNumber(rec[ingest.FieldStores]); n > acc.StoresByIndustry[industry] {
			acc.StoresByIndustry[industry] = n
		}
		acc.Openings += ParseNumber(rec[ingest.FieldOpenings])
		acc.Closures += ParseNumber(rec[ingest.FieldClosures])
		if v, ok := ParseOptionalNumber(rec[ingest.FieldClosureRate]); ok {
			acc.ClosureRateSum += v
			acc.ClosureRateSamples++
		}
		return
	}

	acc.Revenue += ParseNumber(rec[ingest.FieldSales])
	acc.WeekendRevenue += ParseNumber(rec[ingest.FieldWeekendSales])
	acc.Transactions += ParseNumber(rec[ingest.FieldTransactions])
	if q := rec[ingest.FieldQuarter]; q != "" {
		acc.RevenueQuarters[q] = true
	}
}

func (a *Aggregator) foldIndustry(c *Contribution, kind ingest.Kind, industry string, rec ingest.Record) {
	acc := c.industry(industry)
	if kind == ingest.KindStores {
		acc.StoreSum += ParseNumber(rec[ingest.FieldStores])
		acc.OpenSum += ParseNumber(rec[ingest.FieldOpenings])
		if v, ok := ParseOptionalNumber(rec[ingest.FieldClosureRate]); ok {
			acc.ClosureRateSum += v
			acc.ClosureRateSamples++
		}
		acc.StoreRows++
		return
	}
	acc.SalesSum += ParseNumber(rec[ingest.FieldSales])
	acc.WeekendSum += ParseNumber(rec[ingest.FieldWeekendSales])
	acc.TxnSum += ParseNumber(rec[ingest.FieldTransactions])
	acc.SalesRows++
	if rec[ingest.FieldQuarter] != "" {
		acc.SalesMonths += 3
	} else {
		acc.SalesMonths += 12
	}
}

// Result returns a copy of the current totals.
func (a *Aggregator) Result() Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := Result{
		Entities:   make(map[string]*Accumulator, len(a.entities)),
		Industries: make(map[string]*IndustryAccumulator, len(a.industries)),
		Sources:    make(map[string]SourceStats, len(a.sources)),
	}
	for id, acc := range a.entities {
		r.Entities[id] = acc.clone()
	}
	for name, acc := range a.industries {
		c := *acc
		r.Industries[name] = &c
	}
	for name, s := range a.sources {
		s.UnmatchedLabels = append([]string(nil), s.UnmatchedLabels...)
		r.Sources[name] = s
	}
	return r
}

// Unmatched is the number of rows skipped across all sources.
func (r Result) Unmatched() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Unmatched
	}
	return n
}
