// Package domain defines the session record model.
//
// A session row is the server-side trace of a login: who opened it, for which
// customer, and when it ended. The encrypted token carries the session id, so
// a validated request can be joined back to its row for auditing.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/errors"
)

// Session represents an open or closed login session.
type Session struct {
	ID           uuid.UUID
	CustomerCode string
	UserID       uuid.UUID
	OpenedAt     time.Time
	ClosedAt     *time.Time
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	return s.ClosedAt != nil
}

// Domain-specific errors for session operations.
var (
	// ErrSessionNotFound indicates no session row exists for the id.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")
)
