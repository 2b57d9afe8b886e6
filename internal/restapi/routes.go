package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func validateAPIKey(api *RestAPI, finalHandler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// SetRoutes registers the API routes on router. /metrics is served without
// an API key.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/v1/current-time", validateAPIKey(api, api.currentTimeHandler))
	router.Handler(http.MethodGet, "/api/v1/status", validateAPIKey(api, api.statusHandler))

	router.Handler(http.MethodGet, "/api/v1/entities", validateAPIKey(api, api.entitiesHandler))
	router.Handler(http.MethodGet, "/api/v1/entities/:id", validateAPIKey(api, api.entityHandler))
	router.Handler(http.MethodGet, "/api/v1/entities/:id/narrative", validateAPIKey(api, api.narrativeHandler))
	router.Handler(http.MethodGet, "/api/v1/rankings", validateAPIKey(api, api.rankingsHandler))
	router.Handler(http.MethodGet, "/api/v1/industries", validateAPIKey(api, api.industriesHandler))
	router.Handler(http.MethodGet, "/api/v1/trends", validateAPIKey(api, api.trendsHandler))

	router.Handler(http.MethodPost, "/api/v1/sessions", validateAPIKey(api, api.createSessionHandler))
	router.Handler(http.MethodGet, "/api/v1/sessions/:session", validateAPIKey(api, api.sessionHandler))
	router.Handler(http.MethodPut, "/api/v1/sessions/:session/cart/:id", validateAPIKey(api, api.addToCartHandler))
	router.Handler(http.MethodDelete, "/api/v1/sessions/:session/cart/:id", validateAPIKey(api, api.removeFromCartHandler))
	router.Handler(http.MethodPut, "/api/v1/sessions/:session/view", validateAPIKey(api, api.sessionViewHandler))

	router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// Handler wraps router in the middleware chain: request logging, security
// headers, rate limiting, then compression.
func (api *RestAPI) Handler(router http.Handler) http.Handler {
	h := NewCompressionMiddleware(DefaultCompressionConfig())(router)
	if api.rateLimiter != nil {
		h = api.rateLimiter(h)
	}
	h = securityHeaders(h)
	return NewRequestLoggingMiddleware(api.Logger)(h)
}
