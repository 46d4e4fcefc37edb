package access

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/gridshop/functions/core/logger"
	"github.com/gridshop/functions/core/report"
)

const bearerPrefix = "Bearer "

// AuthMiddlewareBuilder is a helper builder for the authentication middleware
type AuthMiddlewareBuilder struct {
	// Verifier verifies bearer tokens. This is mandatory.
	Verifier TokenVerifier
	// Reporter receives every authentication failure. This is optional.
	Reporter *report.Reporter
	// TestMode enables the uid bypass on the paths listed in TestModePaths:
	// a request whose JSON body carries a "uid" field is authenticated as
	// that uid without token verification.
	//
	// SECURITY: this bypass skips authentication entirely. The flag is
	// resolved once at startup and must never be set in a production
	// configuration.
	TestMode bool
	// TestModePaths are the exact request paths the bypass applies to.
	TestModePaths []string
}

// NewAuthMiddleware returns a middleware handler that validates the
// "Authorization: Bearer <token>" header and attaches the resulting
// principal to the request context.
//
// This is a final handler with regards to the bearer token: it either
// attaches a principal and continues, or it responds with status 401.
// All failure classes share the code "authentication-error" and differ
// only in their message, so clients must not dispatch on the code field.
func NewAuthMiddleware(amb *AuthMiddlewareBuilder) mux.MiddlewareFunc {
	if amb.Verifier == nil {
		panic("auth middleware requires a token verifier")
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := PrincipalFromContext(r.Context()); p != nil { // already authenticated?
				h.ServeHTTP(w, r)
				return
			}

			if amb.TestMode && containsPath(amb.TestModePaths, r.URL.Path) {
				amb.serveTestMode(h, w, r)
				return
			}

			authorization := r.Header.Get("Authorization")
			if !strings.HasPrefix(authorization, bearerPrefix) {
				amb.report(r, ErrMissingHeader)
				sendAuthError(w, "Unauthorized: make sure you authorize your request by providing the following HTTP header - Authorization: Bearer <ID Token>")
				return
			}

			token := strings.TrimPrefix(authorization, bearerPrefix)
			principal, err := amb.Verifier.Verify(r.Context(), token)
			if err != nil {
				amb.report(r, err)
				switch err {
				case ErrIncompleteArguments:
					sendAuthError(w, "Unauthorized: Incomplete arguments passed")
				case ErrTokenExpired:
					sendAuthError(w, "Unauthorized: Refresh idToken")
				default:
					sendAuthError(w, "Unauthorized")
				}
				return
			}

			ctx := principal.ContextWithPrincipal(r.Context())
			ctx, _ = logger.ContextWithLoggerIdentity(ctx, principal.UID)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// serveTestMode authenticates the request from a "uid" field in the JSON
// body instead of a bearer token.
func (amb *AuthMiddlewareBuilder) serveTestMode(h http.Handler, w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err == nil {
		// the body is consumed here, downstream parsers need it again
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	var probe struct {
		UID string `json:"uid"`
	}
	json.Unmarshal(body, &probe)
	if probe.UID == "" {
		sendError(w, http.StatusUnauthorized, "Testing Error", "testing-error")
		return
	}

	principal := &Principal{UID: probe.UID}
	ctx := principal.ContextWithPrincipal(r.Context())
	h.ServeHTTP(w, r.WithContext(ctx))
}

func (amb *AuthMiddlewareBuilder) report(r *http.Request, err error) {
	if amb.Reporter == nil {
		return
	}
	// reporting failures never mask the original error
	if rerr := amb.Reporter.Report(r.Context(), err, r, map[string]interface{}{"component": "authentication"}); rerr != nil {
		logger.FromContext(r.Context()).WithError(rerr).Errorln("could not report authentication error")
	}
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}

func sendAuthError(w http.ResponseWriter, message string) {
	sendError(w, http.StatusUnauthorized, message, "authentication-error")
}

func sendError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	jsonData, _ := json.Marshal(map[string]string{
		"message": message,
		"code":    code,
	})
	w.Write(jsonData)
}
