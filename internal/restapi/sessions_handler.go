package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"smartbizmap.kr/internal/models"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/session"
	"smartbizmap.kr/internal/utils"
)

func (api *RestAPI) sessionResponse(w http.ResponseWriter, r *http.Request, code int, sess *session.Session) {
	entry := models.NewSessionEntry(sess)
	var q pipeline.Query
	if entry.View != nil {
		q = entry.View.Query
	}
	response := models.NewResponse(code, map[string]interface{}{
		"entry":      entry,
		"references": api.queryReferences(q, entry.Cart),
	}, http.StatusText(code))
	api.sendResponse(w, r, response)
}

// sessionError maps store errors to responses. Unknown sessions and
// entities are 404s.
func (api *RestAPI) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrUnknownEntity) {
		api.sendNotFound(w, r)
		return
	}
	api.serverErrorResponse(w, r, err)
}

// sessionParam validates the :session path parameter.
func (api *RestAPI) sessionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := utils.ExtractIDFromParams(r, "session")
	if err := utils.ValidateSessionID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"session": {err.Error()}})
		return "", false
	}
	return id, true
}

func (api *RestAPI) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := api.Sessions.Create()
	api.sessionResponse(w, r, http.StatusCreated, sess)
}

func (api *RestAPI) sessionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.sessionParam(w, r)
	if !ok {
		return
	}
	sess, err := api.Sessions.Get(id)
	if err != nil {
		api.sessionError(w, r, err)
		return
	}
	api.sessionResponse(w, r, http.StatusOK, sess)
}

func (api *RestAPI) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	api.updateCart(w, r, api.Sessions.AddToCart)
}

func (api *RestAPI) removeFromCartHandler(w http.ResponseWriter, r *http.Request) {
	api.updateCart(w, r, api.Sessions.RemoveFromCart)
}

func (api *RestAPI) updateCart(w http.ResponseWriter, r *http.Request, update func(sessionID, entityID string) (*session.Cart, error)) {
	id, ok := api.sessionParam(w, r)
	if !ok {
		return
	}
	entityID := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(entityID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	if _, err := update(id, entityID); err != nil {
		api.sessionError(w, r, err)
		return
	}
	sess, err := api.Sessions.Get(id)
	if err != nil {
		api.sessionError(w, r, err)
		return
	}
	api.sessionResponse(w, r, http.StatusOK, sess)
}

// sessionViewHandler submits a new view query for the session. Only the
// most recent submission is ever applied. Unless wait=false the handler
// blocks until that submission, or a newer one, has been applied and
// returns the applied view.
func (api *RestAPI) sessionViewHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.sessionParam(w, r)
	if !ok {
		return
	}
	q, fieldErrors := parsePipelineQuery(r)
	wait := true
	if v := r.URL.Query().Get("wait"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fieldErrors["wait"] = append(fieldErrors["wait"], "wait must be true or false")
		}
		wait = b
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	q, err := api.Pipeline.Normalize(q)
	if errors.Is(err, pipeline.ErrUnknownIndustry) {
		api.validationErrorResponse(w, r, map[string][]string{"industry": {err.Error()}})
		return
	}

	ctx := r.Context()
	token, err := api.Sessions.SetView(ctx, id, q)
	if err != nil {
		api.sessionError(w, r, err)
		return
	}

	sess, err := api.Sessions.Get(id)
	if err != nil {
		api.sessionError(w, r, err)
		return
	}

	if !wait {
		response := models.NewResponse(http.StatusAccepted, map[string]interface{}{
			"entry":      map[string]uint64{"token": token},
			"references": models.NewEmptyReferences(),
		}, http.StatusText(http.StatusAccepted))
		api.sendResponse(w, r, response)
		return
	}

	if _, err := api.Sessions.WaitView(ctx, id, token); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sessionResponse(w, r, http.StatusOK, sess)
}
