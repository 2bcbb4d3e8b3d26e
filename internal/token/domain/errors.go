package domain

import (
	"github.com/denis-papin/doka.one/internal/errors"
)

// Token rejection errors. Every one of them wraps ErrUnauthorized: the HTTP
// boundary maps them all to the same 401 response so a caller probing with
// forged tokens learns nothing about which check failed. The distinct values
// exist for logs and metrics only.
var (
	// ErrMalformedToken indicates the token could not be parsed at all.
	ErrMalformedToken = errors.Wrap(errors.ErrUnauthorized, "malformed token")

	// ErrKeyResolutionFailed indicates no usable key exists for the token's
	// routing hint (unknown or revoked customer).
	ErrKeyResolutionFailed = errors.Wrap(errors.ErrUnauthorized, "key resolution failed")

	// ErrAuthenticationFailed indicates the ciphertext failed AEAD
	// authentication: tampering, a wrong key, or a relabelled hint.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "token authentication failed")

	// ErrExpiredToken indicates the token authenticated but its lifetime is over.
	ErrExpiredToken = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrNotYetValid indicates the token's issued-at lies in the future beyond
	// the allowed clock skew.
	ErrNotYetValid = errors.Wrap(errors.ErrUnauthorized, "token not yet valid")

	// ErrInvalidClaims indicates the decrypted payload is not a well-formed
	// claims document.
	ErrInvalidClaims = errors.Wrap(errors.ErrUnauthorized, "invalid token claims")
)
