package models

import (
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/scoring"
)

// EntityEntry is an entity's metrics as served to map clients.
type EntityEntry struct {
	scoring.EntityMetrics
	HeatMetric scoring.HeatMetric `json:"heatMetric"`
	HeatColor  string             `json:"heatColor"`
	Affordable bool               `json:"affordable"`
}

func NewEntityEntry(snap *pipeline.Snapshot, m scoring.EntityMetrics, heat scoring.HeatMetric) EntityEntry {
	return EntityEntry{
		EntityMetrics: m,
		HeatMetric:    heat,
		HeatColor:     snap.HeatColor(heat, m),
		Affordable:    scoring.Affordable(m, snap.Query.Budget),
	}
}

// EntityListData is the body of the entity list endpoint.
type EntityListData struct {
	List          []EntityEntry     `json:"list"`
	Query         pipeline.Query    `json:"query"`
	DataVersion   uint64            `json:"dataVersion"`
	Heat          scoring.HeatScale `json:"heat"`
	LimitExceeded bool              `json:"limitExceeded"`
	References    ReferencesModel   `json:"references"`
}

// NarrativeEntry is a generated assessment of one entity.
type NarrativeEntry struct {
	EntityID string `json:"entityId"`
	Industry string `json:"industry,omitempty"`
	Text     string `json:"text"`
}
