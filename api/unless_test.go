package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnlessBypassesExcludedPaths(t *testing.T) {
	middlewareCalls := 0
	handlerCalls := 0

	middleware := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middlewareCalls++
			h.ServeHTTP(w, r)
		})
	}

	wrapped := Unless([]string{"/reviews", "/add-restaurant"}, middleware)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalls++
		}))

	for _, path := range []string{"/reviews", "/add-restaurant"} {
		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, 0, middlewareCalls)
	assert.Equal(t, 2, handlerCalls)
}

func TestUnlessRunsMiddlewareForOtherPaths(t *testing.T) {
	middlewareCalls := 0

	middleware := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middlewareCalls++
			h.ServeHTTP(w, r)
		})
	}

	wrapped := Unless([]string{"/reviews"}, middleware)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/add-product", nil))
	assert.Equal(t, 1, middlewareCalls)
}

func TestUnlessMatchesExactPathsOnly(t *testing.T) {
	middlewareCalls := 0

	middleware := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middlewareCalls++
			h.ServeHTTP(w, r)
		})
	}

	wrapped := Unless([]string{"/reviews"}, middleware)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// sub-paths are not excluded
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reviews/42", nil))
	assert.Equal(t, 1, middlewareCalls)
}

func TestUnlessMiddlewareCanShortCircuit(t *testing.T) {
	handlerCalls := 0

	deny := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	wrapped := Unless([]string{"/reviews"}, deny)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalls++
		}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/add-product", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, handlerCalls)
}
