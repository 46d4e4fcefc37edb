package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/gridshop/functions/core/logger"
)

// reviews lists all reviews. The read is unbounded, there is no
// pagination or filtering.
func (a *API) reviews(w http.ResponseWriter, r *http.Request) {
	docs, err := a.store.All(r.Context(), "reviews")
	if err != nil {
		a.reportError(r, err, map[string]interface{}{"component": "reviews"})
		sendEnvelope(w, http.StatusInternalServerError, envelope{
			Message: "Internal Server Error",
			Code:    "api-error",
			Status:  false,
		})
		return
	}

	if len(docs) == 0 {
		sendEnvelope(w, http.StatusOK, envelope{
			Message: "No reviews available",
			Code:    "success",
			Status:  true,
			Data:    map[string]interface{}{"reviews": []interface{}{}},
		})
		return
	}

	sendEnvelope(w, http.StatusOK, envelope{
		Message: "Success",
		Code:    "success",
		Status:  true,
		Data:    map[string]interface{}{"reviews": docs},
	})
}

// addRestaurant accepts a restaurant submission. The JSON body
// middleware is bypassed for this route, the handler receives the raw
// request stream. A form parser would process the buffer here.
func (a *API) addRestaurant(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.reportError(r, err, map[string]interface{}{"component": "add-restaurant"})
		sendEnvelope(w, http.StatusBadRequest, envelope{
			Message: "Bad Request: Can't process",
			Code:    "error",
			Status:  false,
		})
		return
	}
	logger.FromContext(r.Context()).Debugln("a request buffer of", len(body), "bytes")

	sendEnvelope(w, http.StatusOK, envelope{
		Message: "Complete",
		Code:    "success",
		Status:  true,
	})
}

// jsonEcho accepts and acknowledges an authenticated JSON document
func (a *API) jsonEcho(w http.ResponseWriter, r *http.Request) {
	body, ok := bodyFromContext(r.Context())
	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil || !ok {
		if err == nil {
			err = fmt.Errorf("no request body")
		}
		a.reportError(r, err, map[string]interface{}{"component": "json"})
		sendEnvelope(w, http.StatusBadRequest, envelope{
			Message: "Bad Request: Can't process",
			Code:    "error",
			Status:  false,
		})
		return
	}
	logger.FromContext(r.Context()).Debugln("a json request:", document)

	sendEnvelope(w, http.StatusOK, envelope{
		Message: "Complete",
		Code:    "success",
		Status:  true,
	})
}
