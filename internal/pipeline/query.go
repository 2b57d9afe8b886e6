package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"smartbizmap.kr/internal/aggregate"
	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/scoring"
)

var ErrUnknownIndustry = errors.New("unknown industry")

// Query selects the view a pipeline run produces. Industry is a canonical
// industry name or empty for all industries; Budget is in 10,000 KRW and 0
// means no limit.
type Query struct {
	Industry string  `json:"industry"`
	Budget   float64 `json:"budget"`
}

func (q Query) Key() string {
	return q.Industry + "|" + strconv.FormatFloat(q.Budget, 'g', -1, 64)
}

func (q Query) String() string {
	return fmt.Sprintf("industry=%q budget=%g", q.Industry, q.Budget)
}

// SourceDiagnostics reports how one source was loaded and resolved.
type SourceDiagnostics struct {
	Name      string      `json:"name"`
	Kind      ingest.Kind `json:"kind"`
	Records   int         `json:"records"`
	Skipped   int         `json:"skipped"`
	FromCache bool        `json:"fromCache"`
	Error     string      `json:"error,omitempty"`
	aggregate.SourceStats
}

type Diagnostics struct {
	Sources   []SourceDiagnostics `json:"sources"`
	Unmatched int                 `json:"unmatched"`
}

// Snapshot is the complete output of one pipeline run. Snapshots may be
// shared between callers and must be treated as read-only.
type Snapshot struct {
	Query       Query                                    `json:"query"`
	DataVersion uint64                                   `json:"dataVersion"`
	GeneratedAt time.Time                                `json:"generatedAt"`
	Entities    []scoring.EntityMetrics                  `json:"entities"`
	Industries  []scoring.IndustryMetrics                `json:"industries"`
	Ranking     []scoring.RankedEntity                   `json:"ranking"`
	Heat        map[scoring.HeatMetric]scoring.HeatScale `json:"heat"`
	Diagnostics Diagnostics                              `json:"diagnostics"`
}

// Entity returns the metrics of one entity.
func (s *Snapshot) Entity(id string) (scoring.EntityMetrics, bool) {
	for _, m := range s.Entities {
		if m.EntityID == id {
			return m, true
		}
	}
	return scoring.EntityMetrics{}, false
}

// Affordable returns the entities within the query budget.
func (s *Snapshot) Affordable() []scoring.EntityMetrics {
	return scoring.FilterAffordable(s.Entities, s.Query.Budget)
}

// HeatColor colors an entity on the map scale of metric.
func (s *Snapshot) HeatColor(metric scoring.HeatMetric, m scoring.EntityMetrics) string {
	return s.Heat[metric].Color(metric.Value(m))
}
