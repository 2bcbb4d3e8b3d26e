// Package domain defines the session token model.
//
// A session token is an AEAD-encrypted claims payload, not a signed one: the
// server that minted it is the only party that can read or verify it, and
// possession of the matching key is the proof of authenticity. The cleartext
// routing hint on the wire tells the validator which key to fetch; it is bound
// into the ciphertext as associated data, so a token relabelled with another
// tenant's hint fails authentication.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wire format constants.
const (
	// TokenPrefix identifies the token format version on the wire.
	TokenPrefix = "dk1"

	// MasterHint is the reserved routing hint for tokens encrypted under the
	// master key instead of a customer key. No customer code may collide with
	// it.
	MasterHint = "master"
)

// TokenKind discriminates how a session token was produced.
type TokenKind string

const (
	// KindUserLogin marks tokens minted by a credential login.
	KindUserLogin TokenKind = "user-login"

	// KindAdminGenerated marks tokens minted out-of-band by an operator.
	KindAdminGenerated TokenKind = "admin-generated"
)

// Valid reports whether the kind is one of the known values.
func (k TokenKind) Valid() bool {
	return k == KindUserLogin || k == KindAdminGenerated
}

// SessionClaims is the payload encrypted inside a session token.
//
// Timestamps are carried as UTC instants with second precision; the token
// carries them as unix seconds on the wire.
type SessionClaims struct {
	CustomerCode string    `json:"customer_code"`
	UserID       uuid.UUID `json:"user_id"`
	SessionID    uuid.UUID `json:"session_id"`
	IssuedAt     time.Time `json:"-"`
	ExpiresAt    time.Time `json:"-"`
	Roles        []string  `json:"roles,omitempty"`
	Kind         TokenKind `json:"kind"`
}

// SecurityContext is the validated identity attached to a request after its
// token passed every check. Handlers read the tenant scope from here and
// nowhere else.
type SecurityContext struct {
	CustomerCode string
	UserID       uuid.UUID
	SessionID    uuid.UUID
	Roles        []string
	Kind         TokenKind
}

// HasRole reports whether the context carries the given role.
func (s *SecurityContext) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NewSecurityContext builds a SecurityContext from validated claims.
func NewSecurityContext(claims *SessionClaims) *SecurityContext {
	return &SecurityContext{
		CustomerCode: claims.CustomerCode,
		UserID:       claims.UserID,
		SessionID:    claims.SessionID,
		Roles:        claims.Roles,
		Kind:         claims.Kind,
	}
}
