package utils

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// ExtractIDFromParams returns a router path parameter with any ".json"
// suffix removed.
func ExtractIDFromParams(r *http.Request, paramName string) string {
	params := httprouter.ParamsFromContext(r.Context())
	rawID := strings.TrimSpace(params.ByName(paramName))
	return strings.TrimSuffix(rawID, ".json")
}
