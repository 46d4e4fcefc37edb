package api

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

const contextKeyBody contextKey = "_body_"

// jsonBodyMiddleware buffers the request body so handlers can decode it
// without touching the stream again. Form routes bypass this middleware
// via Unless and receive the raw stream.
func jsonBodyMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			sendEnvelope(w, http.StatusBadRequest, envelope{
				Message: "Bad Request: Can't process",
				Code:    "error",
				Status:  false,
			})
			return
		}
		ctx := contextWithBody(r.Context(), body)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func contextWithBody(ctx context.Context, body []byte) context.Context {
	return context.WithValue(ctx, contextKeyBody, body)
}

// bodyFromContext retrieves the buffered request body. The second return
// value is false when the route bypassed the JSON body middleware.
func bodyFromContext(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(contextKeyBody).([]byte)
	return body, ok
}

// envelope is the JSON response wrapper all endpoints use
type envelope struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Status  bool        `json:"status"`
	Data    interface{} `json:"data,omitempty"`
}

func sendEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	jsonData, _ := json.Marshal(env)
	w.Write(jsonData)
}
