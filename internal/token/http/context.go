// Package http provides HTTP middleware and utilities for session authentication.
package http

import (
	"context"

	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

// securityContextKey is a context key type for storing the validated identity.
type securityContextKey struct{}

// WithSecurityContext stores a validated security context in the context.
// This is called by the session middleware after successful token validation.
func WithSecurityContext(ctx context.Context, sc *tokenDomain.SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey{}, sc)
}

// GetSecurityContext retrieves the validated security context from the context.
// Returns (sc, true) if present, or (nil, false) if no token was validated.
func GetSecurityContext(ctx context.Context) (*tokenDomain.SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey{}).(*tokenDomain.SecurityContext)
	return sc, ok
}
