package access

import (
	"context"
	"errors"
)

// Classified verification failures. Anything else returned by a
// TokenVerifier is treated as a generic unauthorized error.
var (
	// ErrMissingHeader means the Authorization header is absent or does
	// not start with the literal prefix "Bearer ".
	ErrMissingHeader = errors.New("missing or malformed authorization header")
	// ErrIncompleteArguments means the token string could not be parsed
	// at all.
	ErrIncompleteArguments = errors.New("incomplete arguments passed")
	// ErrTokenExpired means the token was valid once but has expired.
	ErrTokenExpired = errors.New("token expired")
)

// TokenVerifier verifies a bearer token string and returns the decoded
// principal. Implementations classify failures with ErrTokenExpired and
// ErrIncompleteArguments where applicable.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}
