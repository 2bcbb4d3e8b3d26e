// Package domain defines audit events for security-relevant operations.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded in the audit trail.
const (
	EventAdminTokenIssued = "admin_token.issued"
	EventCustomerCreated  = "customer.created"
	EventCustomerDeleted  = "customer.deleted"
	EventKeyRevoked       = "customer_key.revoked"
)

// AuditEvent is one immutable entry in the audit trail.
//
// Details carries event-specific fields as a JSON document; it never contains
// key material or token ciphertext.
type AuditEvent struct {
	ID           uuid.UUID
	Kind         string
	Actor        string
	CustomerCode string
	Details      string
	CreatedAt    time.Time
}
