package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Unless skips the middleware if the request path is in paths.
//
// Paths match by exact string comparison only, sub-paths are not
// excluded. For an excluded path the middleware is bypassed entirely and
// none of its side effects occur; for any other path the middleware runs
// and decides itself whether to continue the chain.
func Unless(paths []string, middleware mux.MiddlewareFunc) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		wrapped := middleware(h)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range paths {
				if r.URL.Path == path {
					h.ServeHTTP(w, r)
					return
				}
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
