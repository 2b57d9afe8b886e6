package restapi

import (
	"net/http"

	"smartbizmap.kr/internal/models"
)

// rankingsHandler orders every entity by capital fit for the budget.
func (api *RestAPI) rankingsHandler(w http.ResponseWriter, r *http.Request) {
	q, fieldErrors := parsePipelineQuery(r)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	snap, ok := api.runQuery(w, r, q)
	if !ok {
		return
	}

	api.sendResponse(w, r, models.NewListResponse(snap.Ranking, api.queryReferences(snap.Query, nil)))
}
