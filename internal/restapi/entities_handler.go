package restapi

import (
	"net/http"

	"smartbizmap.kr/internal/lookup"
	"smartbizmap.kr/internal/models"
	"smartbizmap.kr/internal/utils"
)

// entitiesHandler lists the entities affordable within budget, coloured by
// the requested heat metric.
func (api *RestAPI) entitiesHandler(w http.ResponseWriter, r *http.Request) {
	q, fieldErrors := parsePipelineQuery(r)
	heat, fieldErrors := parseHeatMetric(r, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	snap, ok := api.runQuery(w, r, q)
	if !ok {
		return
	}

	affordable := snap.Affordable()
	list := make([]models.EntityEntry, 0, len(affordable))
	for _, m := range affordable {
		list = append(list, models.NewEntityEntry(snap, m, heat))
	}

	data := models.EntityListData{
		List:        list,
		Query:       snap.Query,
		DataVersion: snap.DataVersion,
		Heat:        snap.Heat[heat],
		References:  api.queryReferences(snap.Query, nil),
	}
	api.sendResponse(w, r, models.NewOKResponse(data))
}

func (api *RestAPI) entityHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r, "id")
	fieldErrors := make(map[string][]string)
	if err := utils.ValidateID(id); err != nil {
		fieldErrors["id"] = []string{err.Error()}
	}
	q, queryErrors := parsePipelineQuery(r)
	for k, v := range queryErrors {
		fieldErrors[k] = append(fieldErrors[k], v...)
	}
	heat, fieldErrors := parseHeatMetric(r, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	snap, ok := api.runQuery(w, r, q)
	if !ok {
		return
	}

	m, found := snap.Entity(id)
	if !found {
		api.sendNotFound(w, r)
		return
	}

	entry := models.NewEntityEntry(snap, m, heat)
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.queryReferences(snap.Query, []string{id})))
}

// narrativeHandler asks the narrator for an assessment of one entity. The
// narrator always yields text, falling back to a fixed message on failure.
func (api *RestAPI) narrativeHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}
	q, fieldErrors := parsePipelineQuery(r)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	snap, ok := api.runQuery(w, r, q)
	if !ok {
		return
	}
	m, found := snap.Entity(id)
	if !found {
		api.sendNotFound(w, r)
		return
	}

	text := lookup.NarrativeNoKey
	if api.Narrator != nil {
		text = api.Narrator.FetchNarrative(r.Context(), m.Name, m, snap.Query.Industry)
	}

	entry := models.NarrativeEntry{
		EntityID: id,
		Industry: snap.Query.Industry,
		Text:     text,
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.queryReferences(snap.Query, []string{id})))
}
