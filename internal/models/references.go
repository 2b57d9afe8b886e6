package models

import (
	"smartbizmap.kr/internal/registry"
)

// EntityReference identifies a geo entity mentioned by a response.
type EntityReference struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func NewEntityReference(e registry.GeoEntity) EntityReference {
	return EntityReference{ID: e.ID, Name: e.Name, District: e.District, Lat: e.Lat, Lng: e.Lng}
}

// IndustryReference identifies an industry mentioned by a response.
type IndustryReference struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	CategoryLabel string `json:"categoryLabel"`
}

func NewIndustryReference(ind registry.IndustryRecord) IndustryReference {
	return IndustryReference{
		Name:          ind.CanonicalName,
		Category:      string(ind.Category),
		CategoryLabel: ind.Category.Label(),
	}
}

// ReferencesModel References model for related data
type ReferencesModel struct {
	Entities   []EntityReference   `json:"entities"`
	Industries []IndustryReference `json:"industries"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Entities:   []EntityReference{},
		Industries: []IndustryReference{},
	}
}
