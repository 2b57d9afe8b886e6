package restapi

import (
	"errors"
	"net/http"

	"smartbizmap.kr/internal/models"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/scoring"
	"smartbizmap.kr/internal/utils"
)

// parsePipelineQuery reads the industry and budget parameters shared by the
// entity, ranking and session view endpoints.
func parsePipelineQuery(r *http.Request) (pipeline.Query, map[string][]string) {
	params := r.URL.Query()

	industry, fieldErrors := utils.ParseQueryParam(params, "industry", nil)
	budget, fieldErrors := utils.ParseNonNegativeFloatParam(params, "budget", fieldErrors)
	if err := utils.ValidateBudget(budget); err != nil {
		fieldErrors["budget"] = append(fieldErrors["budget"], err.Error())
	}

	return pipeline.Query{Industry: industry, Budget: budget}, fieldErrors
}

func parseHeatMetric(r *http.Request, fieldErrors map[string][]string) (scoring.HeatMetric, map[string][]string) {
	heat, err := scoring.ParseHeatMetric(r.URL.Query().Get("heat"))
	if err != nil {
		fieldErrors["heat"] = append(fieldErrors["heat"], err.Error())
	}
	return heat, fieldErrors
}

// runQuery runs q through the pipeline and writes the error response when
// it fails. The returned bool reports whether the caller should continue.
func (api *RestAPI) runQuery(w http.ResponseWriter, r *http.Request, q pipeline.Query) (*pipeline.Snapshot, bool) {
	ctx := r.Context()
	if ctx.Err() != nil {
		api.serverErrorResponse(w, r, ctx.Err())
		return nil, false
	}

	snap, err := api.Pipeline.Run(ctx, q)
	if errors.Is(err, pipeline.ErrUnknownIndustry) {
		api.validationErrorResponse(w, r, map[string][]string{"industry": {err.Error()}})
		return nil, false
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return nil, false
	}
	return snap, true
}

// queryReferences lists the entities in items and the query industry.
func (api *RestAPI) queryReferences(q pipeline.Query, ids []string) models.ReferencesModel {
	refs := models.NewEmptyReferences()
	for _, id := range ids {
		if e, ok := api.Registry.Entity(id); ok {
			refs.Entities = append(refs.Entities, models.NewEntityReference(e))
		}
	}
	if q.Industry != "" {
		if ind, ok := api.Registry.Industry(q.Industry); ok {
			refs.Industries = append(refs.Industries, models.NewIndustryReference(ind))
		}
	}
	return refs
}

func industryReferences(reg *registry.Registry, items []scoring.IndustryMetrics) models.ReferencesModel {
	refs := models.NewEmptyReferences()
	for _, m := range items {
		if ind, ok := reg.Industry(m.Name); ok {
			refs.Industries = append(refs.Industries, models.NewIndustryReference(ind))
		}
	}
	return refs
}
