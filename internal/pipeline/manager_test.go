package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/cache"
	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/scoring"
	"smartbizmap.kr/internal/telemetry"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
	require.NoError(t, err)
	return dir
}

// switchFetcher fails every fetch once broken is set.
type switchFetcher struct {
	inner  ingest.Fetcher
	broken atomic.Bool
}

func (f *switchFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if f.broken.Load() {
		return nil, errors.New("upstream unavailable")
	}
	return f.inner.Fetch(ctx, location)
}

func newTestManager(t *testing.T, fetcher ingest.Fetcher) *Manager {
	t.Helper()
	cat, err := appconf.LoadCatalog(filepath.Join(testdataDir(t), "catalog.toml"))
	require.NoError(t, err)
	overrides, err := registry.DefaultOverrides()
	require.NoError(t, err)
	if fetcher == nil {
		fetcher = ingest.FileFetcher{BaseDir: testdataDir(t)}
	}

	config := Config{
		Registry: registry.New(overrides),
		Loader:   &ingest.Loader{Fetcher: fetcher, Cache: cache.NewMemory(), Namespace: cat.Version},
		Metrics:  telemetry.New(),
	}
	config.ApplyCatalog(cat)

	m, err := New(config)
	require.NoError(t, err)
	t.Cleanup(m.Shutdown)
	require.NoError(t, m.Start(context.Background()))
	return m
}

func entityByName(t *testing.T, snap *Snapshot, name string) scoring.EntityMetrics {
	t.Helper()
	for _, e := range snap.Entities {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("entity %s missing", name)
	return scoring.EntityMetrics{}
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Registry: registry.New(nil)})
	assert.Error(t, err)
}

func TestRunAllIndustries(t *testing.T) {
	m := newTestManager(t, nil)
	snap, err := m.Run(context.Background(), Query{})
	require.NoError(t, err)

	assert.Len(t, snap.Entities, len(m.config.Registry.Entities()))
	assert.Equal(t, uint64(1), snap.DataVersion)

	yeoksam := entityByName(t, snap, "역삼1동")
	assert.Equal(t, 17.0, yeoksam.RentPerAreaUnit)
	assert.Equal(t, 2500000.0, yeoksam.Population)
	assert.Equal(t, 325.0, yeoksam.StoreCount)

	assert.Equal(t, 3, snap.Diagnostics.Unmatched, "Atlantis appears in rent, population and store files")
	require.Len(t, snap.Diagnostics.Sources, 5)
	for _, s := range snap.Diagnostics.Sources {
		assert.Empty(t, s.Error, s.Name)
	}

	assert.NotEmpty(t, snap.Industries)
	assert.Len(t, snap.Ranking, len(snap.Entities))
	assert.Equal(t, 1, snap.Ranking[0].Rank)
	assert.Contains(t, snap.Heat, scoring.HeatRevenue)
}

func TestRunWithIndustry(t *testing.T) {
	m := newTestManager(t, nil)
	snap, err := m.Run(context.Background(), Query{Industry: "커피"})
	require.NoError(t, err)

	assert.Equal(t, "커피-음료", snap.Query.Industry)
	yeoksam := entityByName(t, snap, "역삼1동")
	assert.Equal(t, 125.0, yeoksam.StoreCount)
	assert.Equal(t, 1650.0, yeoksam.Revenue)
	assert.Equal(t, 3.8, yeoksam.ClosureRatePercent)
	assert.Equal(t, 96.2, yeoksam.SurvivalPercent)

	_, err = m.Run(context.Background(), Query{Industry: "우주선"})
	assert.ErrorIs(t, err, ErrUnknownIndustry)
}

func TestRunIsMemoisedPerDataVersion(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	a, err := m.Run(ctx, Query{Industry: "커피-음료", Budget: 8000})
	require.NoError(t, err)
	b, err := m.Run(ctx, Query{Industry: "커피", Budget: 8000})
	require.NoError(t, err)
	assert.Same(t, a, b, "aliases normalise to the same memo key")

	require.NoError(t, m.Refresh(ctx))
	c, err := m.Run(ctx, Query{Industry: "커피-음료", Budget: 8000})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, uint64(2), c.DataVersion)
	assert.Equal(t, a.Entities, c.Entities, "reloading identical inputs gives identical metrics")
}

func TestConcurrentRuns(t *testing.T) {
	m := newTestManager(t, nil)
	queries := []Query{{}, {Industry: "커피-음료"}, {Industry: "한식"}, {Budget: 7000}}

	var wg sync.WaitGroup
	results := make([]*Snapshot, 40)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := m.Run(context.Background(), queries[i%len(queries)])
			assert.NoError(t, err)
			results[i] = snap
		}()
	}
	wg.Wait()

	for i, snap := range results {
		require.NotNil(t, snap)
		assert.Equal(t, results[i%len(queries)].Entities, snap.Entities)
	}
}

func TestFailedSourceDegrades(t *testing.T) {
	cat, err := appconf.LoadCatalog(filepath.Join(testdataDir(t), "catalog.toml"))
	require.NoError(t, err)
	config := Config{
		Registry: registry.New(nil),
		Loader:   &ingest.Loader{Fetcher: ingest.FileFetcher{BaseDir: testdataDir(t)}},
	}
	config.ApplyCatalog(cat)
	config.Sources = append(config.Sources, ingest.Source{Name: "missing.csv", Kind: ingest.KindRent, Location: "missing.csv"})

	m, err := New(config)
	require.NoError(t, err)
	require.NoError(t, m.Load(context.Background()))

	status := m.Status()
	require.Len(t, status.Sources, 6)
	assert.NotEmpty(t, status.Sources[5].Error)
	assert.Zero(t, status.Sources[5].Records)

	snap, err := m.Run(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 17.0, entityByName(t, snap, "역삼1동").RentPerAreaUnit)
}

func TestRefreshKeepsPreviousRowsOnFailure(t *testing.T) {
	fetcher := &switchFetcher{inner: ingest.FileFetcher{BaseDir: testdataDir(t)}}
	m := newTestManager(t, fetcher)

	fetcher.broken.Store(true)
	require.NoError(t, m.Refresh(context.Background()))

	snap, err := m.Run(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.DataVersion)
	assert.Equal(t, 17.0, entityByName(t, snap, "역삼1동").RentPerAreaUnit)
}

func TestLoadHonoursCancellation(t *testing.T) {
	m := newTestManager(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Load(ctx), context.Canceled)
	assert.Equal(t, uint64(1), m.DataVersion())
}

func TestPeriodicRefreshAndShutdown(t *testing.T) {
	cat, err := appconf.LoadCatalog(filepath.Join(testdataDir(t), "catalog.toml"))
	require.NoError(t, err)
	config := Config{
		Registry:        registry.New(nil),
		Loader:          &ingest.Loader{Fetcher: ingest.FileFetcher{BaseDir: testdataDir(t)}},
		RefreshInterval: 10 * time.Millisecond,
	}
	config.ApplyCatalog(cat)
	m, err := New(config)
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	assert.Eventually(t, func() bool { return m.DataVersion() >= 3 }, 5*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		m.Shutdown()
		m.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown took too long")
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	m := newTestManager(t, nil)

	var datasets []ingest.Result
	for i, rate := range []string{"5.0", "5.2", "6.5", "5.9"} {
		datasets = append(datasets, ingest.Result{
			Source: ingest.Source{Name: fmt.Sprintf("store_%d.csv", i), Kind: ingest.KindStores},
			Records: []ingest.Record{{
				ingest.FieldQuarter:     fmt.Sprintf("2024%d", i+1),
				ingest.FieldLocation:    "역삼1동",
				ingest.FieldIndustry:    "한식음식점",
				ingest.FieldStores:      "200",
				ingest.FieldOpenings:    "3",
				ingest.FieldClosures:    "2",
				ingest.FieldClosureRate: rate,
			}},
		})
	}

	first := entityByName(t, m.compute(Query{}, 1, datasets), "역삼1동")
	require.Equal(t, scoring.ClosureFromData, first.ClosureRateSource)
	for i := 0; i < 200; i++ {
		got := entityByName(t, m.compute(Query{}, 1, datasets), "역삼1동")
		require.Equal(t, first.ClosureRatePercent, got.ClosureRatePercent, "run %d", i)
		require.Equal(t, first.SurvivalPercent, got.SurvivalPercent, "run %d", i)
		require.Equal(t, first.CompositeScore, got.CompositeScore, "run %d", i)
	}
}
