// Package pipeline runs ingestion, aggregation and scoring, and keeps the
// loaded source data for repeated queries.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"smartbizmap.kr/internal/aggregate"
	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/resolver"
	"smartbizmap.kr/internal/scoring"
)

// Manager owns the loaded datasets. Each Load or Refresh bumps the data
// version, which invalidates every memoised snapshot.
type Manager struct {
	config   Config
	resolver *resolver.Resolver
	logger   *slog.Logger

	mu         sync.RWMutex
	datasets   []ingest.Result
	version    uint64
	lastLoaded time.Time

	memo  *lru.Cache[string, *Snapshot]
	group singleflight.Group

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func New(config Config) (*Manager, error) {
	if config.Registry == nil {
		return nil, errors.New("pipeline: registry is required")
	}
	if config.Loader == nil {
		return nil, errors.New("pipeline: loader is required")
	}
	if config.Investment == (scoring.Investment{}) {
		config.Investment = scoring.DefaultInvestment()
	}
	if config.MemoSize <= 0 {
		config.MemoSize = DefaultMemoSize
	}
	memo, err := lru.New[string, *Snapshot](config.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("creating memo: %w", err)
	}

	return &Manager{
		config:       config,
		resolver:     resolver.New(config.Registry),
		logger:       logging.Component(config.Logger, "pipeline"),
		memo:         memo,
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start performs the initial load and, when configured, starts the periodic
// refresh.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.Load(ctx); err != nil {
		return err
	}
	if m.config.RefreshInterval > 0 {
		m.wg.Add(1)
		go m.refreshPeriodically(m.config.RefreshInterval)
	}
	return nil
}

// Shutdown stops the periodic refresh. It is safe to call more than once.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		m.wg.Wait()
	})
}

// Load ingests every source concurrently, consulting the cache. Failed
// sources contribute no rows; only a cancelled context is an error.
func (m *Manager) Load(ctx context.Context) error {
	return m.load(ctx, false)
}

// Refresh fetches every source again, bypassing the cache. A source that
// fails to reload keeps its previous rows.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.load(ctx, true)
}

func (m *Manager) load(ctx context.Context, refresh bool) error {
	start := time.Now()
	sources := m.config.Sources
	results := make([]ingest.Result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if refresh {
				results[i] = m.config.Loader.Reload(gctx, src)
			} else {
				results[i] = m.config.Loader.Load(gctx, src)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	previous := make(map[string]ingest.Result, len(m.datasets))
	for _, d := range m.datasets {
		previous[d.Source.Name] = d
	}
	failed := 0
	for i, res := range results {
		if res.Err == nil {
			continue
		}
		failed++
		if old, ok := previous[res.Source.Name]; ok && refresh && old.Err == nil {
			results[i] = old
		}
	}
	m.datasets = results
	m.version++
	m.lastLoaded = time.Now()
	version := m.version
	m.memo.Purge()
	m.mu.Unlock()

	logging.LogOperation(m.logger, "datasets_loaded",
		slog.Uint64("data_version", version),
		slog.Int("sources", len(sources)),
		slog.Int("failed", failed),
		slog.Bool("refresh", refresh),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (m *Manager) refreshPeriodically(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := m.Refresh(ctx); err != nil {
				logging.LogError(m.logger, "periodic refresh failed", err)
			}
			cancel()
		case <-m.shutdownChan:
			logging.LogOperation(m.logger, "periodic_refresh_stopped")
			return
		}
	}
}

// Normalize resolves the query industry to its canonical name.
func (m *Manager) Normalize(q Query) (Query, error) {
	if q.Budget < 0 {
		q.Budget = 0
	}
	if q.Industry == "" {
		return q, nil
	}
	ind, match := m.resolver.ResolveIndustry(q.Industry)
	if match == resolver.None {
		return q, fmt.Errorf("%w: %q", ErrUnknownIndustry, q.Industry)
	}
	q.Industry = ind.CanonicalName
	return q, nil
}

// Run returns the snapshot for q, recomputing it from the loaded datasets
// unless an identical run for the current data version is memoised.
func (m *Manager) Run(ctx context.Context, q Query) (*Snapshot, error) {
	q, err := m.Normalize(q)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	version := m.version
	datasets := m.datasets
	m.mu.RUnlock()

	key := strconv.FormatUint(version, 10) + "|" + q.Key()
	if snap, ok := m.memo.Get(key); ok {
		return snap, nil
	}

	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap := m.compute(q, version, datasets)
		m.mu.RLock()
		if m.version == version {
			m.memo.Add(key, snap)
		}
		m.mu.RUnlock()
		return snap, nil
	})
	if err != nil {
		m.config.Metrics.ObservePipelineRun("error", 0)
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (m *Manager) compute(q Query, version uint64, datasets []ingest.Result) *Snapshot {
	start := time.Now()
	reg := m.config.Registry

	agg := aggregate.New(reg, m.resolver, aggregate.Options{Industry: q.Industry, Rent: m.config.Rent})
	// Sources fold in parallel but merge in catalog order, so float totals
	// come out the same on every run.
	contributions := make([]*aggregate.Contribution, len(datasets))
	var wg sync.WaitGroup
	for i, d := range datasets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contributions[i] = agg.Fold(d.Source.Name, d.Source.Kind, d.Records)
		}()
	}
	wg.Wait()
	for _, c := range contributions {
		agg.Merge(c)
	}
	result := agg.Result()

	params := scoring.Params{
		Investment: m.config.Investment,
		Overrides:  reg.Overrides(),
		Industry:   q.Industry,
	}
	entities := scoring.Derive(result, reg, params)

	snap := &Snapshot{
		Query:       q,
		DataVersion: version,
		GeneratedAt: time.Now(),
		Entities:    entities,
		Industries:  scoring.DeriveIndustry(result, reg, reg.Overrides()),
		Ranking:     scoring.Rank(entities, q.Budget),
		Heat:        heatScales(entities, m.config.RevenueColorCeiling),
		Diagnostics: diagnostics(datasets, result),
	}

	for _, s := range snap.Diagnostics.Sources {
		m.config.Metrics.AddUnmatched(s.Name, s.Unmatched)
	}
	duration := time.Since(start)
	m.config.Metrics.ObservePipelineRun("ok", duration)
	if snap.Diagnostics.Unmatched > 0 {
		m.logger.Info("rows skipped during resolution",
			slog.String("query", q.String()),
			slog.Int("unmatched", snap.Diagnostics.Unmatched))
	}
	logging.LogOperation(m.logger, "pipeline_run",
		slog.String("query", q.String()),
		slog.Uint64("data_version", version),
		slog.Duration("duration", duration))
	return snap
}

func heatScales(entities []scoring.EntityMetrics, revenueCeiling float64) map[scoring.HeatMetric]scoring.HeatScale {
	scales := make(map[scoring.HeatMetric]scoring.HeatScale, 3)
	for _, metric := range []scoring.HeatMetric{scoring.HeatRent, scoring.HeatRevenue, scoring.HeatPopulation} {
		values := make([]float64, len(entities))
		for i, e := range entities {
			values[i] = metric.Value(e)
		}
		ceiling := 0.0
		if metric == scoring.HeatRevenue {
			ceiling = revenueCeiling
		}
		scales[metric] = scoring.NewHeatScale(values, ceiling)
	}
	return scales
}

func diagnostics(datasets []ingest.Result, result aggregate.Result) Diagnostics {
	d := Diagnostics{Sources: make([]SourceDiagnostics, 0, len(datasets))}
	for _, res := range datasets {
		sd := SourceDiagnostics{
			Name:        res.Source.Name,
			Kind:        res.Source.Kind,
			Records:     len(res.Records),
			Skipped:     res.Skipped,
			FromCache:   res.FromCache,
			SourceStats: result.Sources[res.Source.Name],
		}
		if res.Err != nil {
			sd.Error = res.Err.Error()
		}
		d.Sources = append(d.Sources, sd)
	}
	d.Unmatched = result.Unmatched()
	return d
}

// Status describes the loaded data without running a query.
type Status struct {
	DataVersion uint64              `json:"dataVersion"`
	LastLoaded  time.Time           `json:"lastLoaded"`
	Sources     []SourceDiagnostics `json:"sources"`
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{DataVersion: m.version, LastLoaded: m.lastLoaded}
	for _, res := range m.datasets {
		sd := SourceDiagnostics{
			Name:      res.Source.Name,
			Kind:      res.Source.Kind,
			Records:   len(res.Records),
			Skipped:   res.Skipped,
			FromCache: res.FromCache,
		}
		if res.Err != nil {
			sd.Error = res.Err.Error()
		}
		s.Sources = append(s.Sources, sd)
	}
	return s
}

func (m *Manager) DataVersion() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

func (m *Manager) Resolver() *resolver.Resolver {
	return m.resolver
}
