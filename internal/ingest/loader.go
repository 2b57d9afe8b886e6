package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/cache"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/telemetry"
)

// Source is one input table.
type Source struct {
	Name     string
	Kind     Kind
	Location string
	Options  Options
}

// SourcesFromCatalog converts catalog entries to sources.
func SourcesFromCatalog(c *appconf.Catalog) []Source {
	sources := make([]Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		sources = append(sources, Source{
			Name:     s.Name,
			Kind:     Kind(s.Kind),
			Location: s.Path,
			Options: Options{
				Encoding:     s.Encoding,
				HeaderRow:    s.HeaderRow,
				DataStartRow: s.DataStartRow,
			},
		})
	}
	return sources
}

// Result is the outcome of loading one source. A failed load has no records
// and a non-nil Err; it is never fatal to the caller.
type Result struct {
	Source    Source
	Records   []Record
	Skipped   int
	FromCache bool
	Err       error
	Duration  time.Duration
}

type cachedTable struct {
	Records []Record `json:"records"`
	Skipped int      `json:"skipped"`
}

// Loader fetches, decodes, parses and binds sources, consulting the cache
// first. Cache, Metrics and OnError are optional.
type Loader struct {
	Fetcher Fetcher
	Cache   cache.Store
	// Namespace is prefixed to cache keys, normally the catalog version.
	Namespace string
	Logger    *slog.Logger
	Metrics   *telemetry.Metrics
	OnError   func(Source, error)
}

// CacheKey is the key a source's parsed records are stored under.
func (l *Loader) CacheKey(src Source) string {
	return fmt.Sprintf("%s:%s:%s", l.Namespace, SchemaVersion, src.Name)
}

// Load returns the records of src. Failures are logged, reported through
// OnError and yield an empty record set.
func (l *Loader) Load(ctx context.Context, src Source) Result {
	return l.run(ctx, src, true)
}

// Reload is Load without the cache read: the source is fetched again and the
// cache entry overwritten.
func (l *Loader) Reload(ctx context.Context, src Source) Result {
	return l.run(ctx, src, false)
}

func (l *Loader) run(ctx context.Context, src Source, useCache bool) Result {
	start := time.Now()
	logger := logging.Component(l.Logger, "ingest")

	res := l.load(ctx, src, useCache)
	res.Duration = time.Since(start)

	if res.Err != nil {
		res.Records = []Record{}
		logging.LogWarn(logger, "source ingestion failed", res.Err,
			slog.String("source", src.Name),
			slog.String("location", src.Location))
		l.Metrics.IngestFailed(src.Name)
		if l.OnError != nil {
			l.OnError(src, res.Err)
		}
		return res
	}

	l.Metrics.AddIngestRows(src.Name, len(res.Records))
	logging.LogOperation(logger, "source_loaded",
		slog.String("source", src.Name),
		slog.Int("records", len(res.Records)),
		slog.Int("skipped", res.Skipped),
		slog.Bool("from_cache", res.FromCache),
		slog.Duration("duration", res.Duration))
	return res
}

func (l *Loader) load(ctx context.Context, src Source, useCache bool) Result {
	res := Result{Source: src}

	schema, ok := SchemaFor(src.Kind)
	if !ok {
		res.Err = fmt.Errorf("no schema for source kind %q", src.Kind)
		return res
	}

	key := l.CacheKey(src)
	if useCache {
		if cached, ok := l.fromCache(ctx, key); ok {
			res.Records = cached.Records
			res.Skipped = cached.Skipped
			res.FromCache = true
			return res
		}
	}

	if l.Fetcher == nil {
		res.Err = errors.New("no fetcher configured")
		return res
	}
	raw, err := l.Fetcher.Fetch(ctx, src.Location)
	if err != nil {
		res.Err = err
		return res
	}

	table, err := ParseTable(raw, src.Options)
	if err != nil {
		res.Err = fmt.Errorf("parsing %s: %w", src.Name, err)
		return res
	}
	records, err := Project(table, schema)
	if err != nil {
		res.Err = fmt.Errorf("binding %s: %w", src.Name, err)
		return res
	}

	res.Records = records
	res.Skipped = table.Skipped
	l.toCache(ctx, key, cachedTable{Records: records, Skipped: table.Skipped})
	return res
}

func (l *Loader) fromCache(ctx context.Context, key string) (cachedTable, bool) {
	var t cachedTable
	if l.Cache == nil {
		return t, false
	}
	b, err := l.Cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			l.Metrics.CacheRequest("miss")
		} else {
			l.Metrics.CacheRequest("error")
			logging.LogWarn(logging.Component(l.Logger, "ingest"), "cache read failed", err, slog.String("key", key))
		}
		return t, false
	}
	if err := json.Unmarshal(b, &t); err != nil {
		l.Metrics.CacheRequest("error")
		logging.LogWarn(logging.Component(l.Logger, "ingest"), "cache entry undecodable", err, slog.String("key", key))
		return t, false
	}
	l.Metrics.CacheRequest("hit")
	return t, true
}

func (l *Loader) toCache(ctx context.Context, key string, t cachedTable) {
	if l.Cache == nil {
		return
	}
	b, err := json.Marshal(t)
	if err == nil {
		err = l.Cache.Put(ctx, key, b)
	}
	if err != nil {
		logging.LogWarn(logging.Component(l.Logger, "ingest"), "cache write failed", err, slog.String("key", key))
	}
}
