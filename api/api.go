/*Package api exposes the shop HTTP endpoints.

Requires authentication for endpoints that need user data:
  - POST /add-product - add a product to the shop
  - GET  /reviews - list all reviews (no authentication)
  - POST /add-restaurant - submit a restaurant (no authentication, raw body)
  - POST /json - JSON echo (authenticated)
*/
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gridshop/functions/core/access"
	"github.com/gridshop/functions/core/assets"
	"github.com/gridshop/functions/core/docstore"
	"github.com/gridshop/functions/core/events"
	"github.com/gridshop/functions/core/logger"
	"github.com/gridshop/functions/core/report"
)

// Builder is a builder helper for the API
type Builder struct {
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Store is the document store. This is mandatory.
	Store docstore.Driver
	// Assets is the binary asset host. This is mandatory.
	Assets assets.Host
	// Verifier verifies bearer tokens. This is mandatory.
	Verifier access.TokenVerifier
	// Reporter receives every error caught at a handler boundary.
	// This is mandatory.
	Reporter *report.Reporter
	// Notifier receives document creation events. This is optional.
	Notifier events.Notifier
	// Environment selects the asset storage folder, "production" or
	// "staging".
	Environment string
	// TestMode enables the uid authentication bypass on /add-product.
	// Never set this in a production configuration.
	TestMode bool
}

// API is the shop backend's HTTP surface
type API struct {
	store       docstore.Driver
	assets      assets.Host
	reporter    *report.Reporter
	notifier    events.Notifier
	environment string
	// now is the clock used for product identifiers, replaceable in tests
	now func() time.Time
}

// MustNewAPI realizes the API. It adds all middlewares and routes to the
// router and panics on configuration errors.
func MustNewAPI(b *Builder) *API {
	if b.Router == nil {
		panic("Router is missing")
	}
	if b.Store == nil {
		panic("Store is missing")
	}
	if b.Assets == nil {
		panic("Assets is missing")
	}
	if b.Verifier == nil {
		panic("Verifier is missing")
	}
	if b.Reporter == nil {
		panic("Reporter is missing")
	}

	a := &API{
		store:       b.Store,
		assets:      b.Assets,
		reporter:    b.Reporter,
		notifier:    b.Notifier,
		environment: b.Environment,
		now:         time.Now,
	}

	// paths that do not require authentication
	noValidationRoutes := []string{"/reviews", "/add-restaurant"}
	// paths that must not be processed by the JSON body middleware,
	// they receive the raw request stream untouched
	formRoutes := []string{"/add-restaurant"}

	auth := access.NewAuthMiddleware(&access.AuthMiddlewareBuilder{
		Verifier:      b.Verifier,
		Reporter:      b.Reporter,
		TestMode:      b.TestMode,
		TestModePaths: []string{"/add-product"},
	})

	logger.AddRequestID(b.Router)
	b.Router.Use(corsMiddleware)
	b.Router.Use(Unless(noValidationRoutes, auth))
	b.Router.Use(Unless(formRoutes, jsonBodyMiddleware))

	a.handleRoutes(b.Router)
	return a
}

func (a *API) handleRoutes(router *mux.Router) {
	rlog := logger.Default()
	rlog.Debugln("api routes")
	rlog.Debugln("  handle route: /add-product POST")
	router.HandleFunc("/add-product", a.addProduct).Methods(http.MethodPost, http.MethodOptions)
	rlog.Debugln("  handle route: /reviews GET")
	router.HandleFunc("/reviews", a.reviews).Methods(http.MethodGet, http.MethodOptions)
	rlog.Debugln("  handle route: /add-restaurant POST")
	router.HandleFunc("/add-restaurant", a.addRestaurant).Methods(http.MethodPost, http.MethodOptions)
	rlog.Debugln("  handle route: /json POST")
	router.HandleFunc("/json", a.jsonEcho).Methods(http.MethodPost, http.MethodOptions)
}

// reportError forwards a caught handler error to the log sink. Reporting
// failures are swallowed so they never mask the original error.
func (a *API) reportError(r *http.Request, err error, context map[string]interface{}) {
	if rerr := a.reporter.Report(r.Context(), err, r, context); rerr != nil {
		logger.FromContext(r.Context()).WithError(rerr).Errorln("could not report error")
	}
}

func (a *API) notify(r *http.Request, resource string, operation events.Operation, payload []byte) {
	if a.notifier == nil {
		return
	}
	a.notifier.Notify(r.Context(), resource, operation, payload)
}
