package restapi

import (
	"net/http"
	"strings"

	"smartbizmap.kr/internal/models"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/scoring"
	"smartbizmap.kr/internal/utils"
)

// industriesHandler lists city-wide industry statistics. Radar axes are
// rescaled over the filtered set.
func (api *RestAPI) industriesHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var filter scoring.IndustryFilter
	fieldErrors := make(map[string][]string)
	if c := strings.TrimSpace(params.Get("category")); c != "" {
		category, err := registry.ParseCategory(c)
		if err != nil {
			fieldErrors["category"] = []string{err.Error()}
		}
		filter.Category = category
	}
	filter.MinStartupCost, fieldErrors = utils.ParseNonNegativeFloatParam(params, "minCost", fieldErrors)
	filter.MinSales, fieldErrors = utils.ParseNonNegativeFloatParam(params, "minSales", fieldErrors)
	filter.Search, fieldErrors = utils.ParseQueryParam(params, "q", fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	snap, ok := api.runQuery(w, r, pipeline.Query{})
	if !ok {
		return
	}

	list := scoring.FilterIndustries(snap.Industries, filter)
	api.sendResponse(w, r, models.NewListResponse(list, industryReferences(api.Registry, list)))
}
