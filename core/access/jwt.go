package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/gridshop/functions/core/logger"
)

// JwtVerifierBuilder is a helper builder for the JwtVerifier
type JwtVerifierBuilder struct {
	// Certificates is a mapping from key id to PEM encoded RSA public key,
	// as published by the identity provider.
	Certificates map[string]string
	// Issuer is the accepted issuer for the token
	Issuer string
}

// JwtVerifier verifies RSA-signed JWT bearer tokens against a set of
// well-known public keys.
type JwtVerifier struct {
	wellKnownKeys map[string]interface{}
	issuer        string
}

// NewJwtVerifier returns a verifier for JWT bearer tokens.
func NewJwtVerifier(jvb *JwtVerifierBuilder) (*JwtVerifier, error) {
	wellKnownKeys := map[string]interface{}{}
	for kid, cert := range jvb.Certificates {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cert))
		if err != nil {
			logger.Default().Warningln("certificate error", err)
			continue
		}
		wellKnownKeys[kid] = key
	}
	if len(wellKnownKeys) == 0 {
		return nil, fmt.Errorf("no usable public keys")
	}
	return &JwtVerifier{wellKnownKeys: wellKnownKeys, issuer: jvb.Issuer}, nil
}

func (v *JwtVerifier) jwksLookup(token *jwt.Token) (interface{}, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, errors.New("token has no kid header")
	}
	key, ok := v.wellKnownKeys[kid]
	if ok {
		return key, nil
	}
	logger.Default().Warningf("have %d well known keys, but not this one", len(v.wellKnownKeys))
	return nil, errors.New("cannot verify token")
}

// Verify parses and validates the token string and returns the decoded
// principal. Expired tokens fail with ErrTokenExpired, tokens that cannot
// be parsed fail with ErrIncompleteArguments.
func (v *JwtVerifier) Verify(ctx context.Context, tokenString string) (*Principal, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwksLookup)
	if err != nil {
		return nil, classifyJwtError(err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("unexpected issuer")
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		return nil, ErrIncompleteArguments
	}
	return &Principal{UID: uid, Claims: claims}, nil
}

func classifyJwtError(err error) error {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorExpired != 0 {
			return ErrTokenExpired
		}
		if ve.Errors&(jwt.ValidationErrorMalformed|jwt.ValidationErrorUnverifiable) != 0 {
			return ErrIncompleteArguments
		}
	}
	return err
}
