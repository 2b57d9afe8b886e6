package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
)

// WebUI serves the debug page. It is only mounted in development.
type WebUI struct {
	Registry *registry.Registry
	Pipeline *pipeline.Manager
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug", webUI.debugIndexHandler)
}
