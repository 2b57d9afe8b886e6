package restapi

import (
	"net/http"

	"smartbizmap.kr/internal/lookup"
	"smartbizmap.kr/internal/models"
	"smartbizmap.kr/internal/utils"
)

func (api *RestAPI) trendsHandler(w http.ResponseWriter, r *http.Request) {
	query, fieldErrors := utils.ParseQueryParam(r.URL.Query(), "q", nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if query == "" {
		query = lookup.DefaultTrendQuery
	}

	trends := lookup.TrendsOrFallback(r.Context(), api.Trends, query)
	api.sendResponse(w, r, models.NewListResponse(trends, models.NewEmptyReferences()))
}
