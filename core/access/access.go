/*Package access provides bearer-token authentication for the API.

A successful authentication produces a Principal which is stored in the
request context. Handlers retrieve it with PrincipalFromContext. The
principal lives for the duration of the request only and is never
persisted.
*/
package access

import (
	"context"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

const contextKeyPrincipal contextKey = "_principal_"

// Principal is the verified identity resulting from successful token
// verification: the uid plus the decoded token claims.
type Principal struct {
	UID    string                 `json:"uid"`
	Claims map[string]interface{} `json:"claims,omitempty"`
}

// ContextWithPrincipal returns a new context with this principal added to it
func (p *Principal) ContextWithPrincipal(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, p)
}

// PrincipalFromContext retrieves a principal from the context
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(contextKeyPrincipal).(*Principal)
	if ok {
		return p
	}
	return nil
}
