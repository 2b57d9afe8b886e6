// Package telemetry exposes the service's Prometheus collectors.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bizmap"

var DefaultPipelineDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// Metrics holds the collectors. Every method is safe on a nil receiver so
// components can run without telemetry in tests.
type Metrics struct {
	Registry *prometheus.Registry

	PipelineRuns     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	IngestRows       *prometheus.CounterVec
	IngestFailures   *prometheus.CounterVec
	UnmatchedRows    *prometheus.CounterVec
	StaleDiscarded   prometheus.Counter
	CacheRequests    *prometheus.CounterVec
	LookupFallbacks  *prometheus.CounterVec
}

// New creates the collectors on a private registry, together with the
// standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by result (computed, memoized, error).",
		}, []string{"result"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Time spent aggregating and deriving one snapshot.",
			Buckets:   DefaultPipelineDurationBuckets,
		}),
		IngestRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_total",
			Help:      "Rows produced by tabular ingestion per source.",
		}, []string{"source"}),
		IngestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Sources that degraded to an empty row set.",
		}, []string{"source"}),
		UnmatchedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_unmatched_total",
			Help:      "Rows skipped because their label could not be resolved.",
		}, []string{"source"}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Pipeline results dropped because a newer request superseded them.",
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		LookupFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_fallbacks_total",
			Help:      "External lookups answered with fallback content.",
		}, []string{"lookup"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PipelineRuns,
		m.PipelineDuration,
		m.IngestRows,
		m.IngestFailures,
		m.UnmatchedRows,
		m.StaleDiscarded,
		m.CacheRequests,
		m.LookupFallbacks,
	)
	return m
}

func (m *Metrics) ObservePipelineRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(result).Inc()
	if d > 0 {
		m.PipelineDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) AddIngestRows(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.IngestRows.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) IngestFailed(source string) {
	if m == nil {
		return
	}
	m.IngestFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) AddUnmatched(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.UnmatchedRows.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) DiscardStale() {
	if m == nil {
		return
	}
	m.StaleDiscarded.Inc()
}

func (m *Metrics) CacheRequest(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) LookupFallback(lookup string) {
	if m == nil {
		return
	}
	m.LookupFallbacks.WithLabelValues(lookup).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
