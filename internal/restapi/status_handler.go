package restapi

import (
	"net/http"

	"smartbizmap.kr/internal/models"
)

type statusEntry struct {
	Env      string      `json:"env"`
	Pipeline interface{} `json:"pipeline"`
	Sessions int         `json:"sessions"`
}

func (api *RestAPI) statusHandler(w http.ResponseWriter, r *http.Request) {
	entry := statusEntry{
		Env:      api.Config.Env.String(),
		Pipeline: api.Pipeline.Status(),
	}
	if api.Sessions != nil {
		entry.Sessions = api.Sessions.Len()
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}
