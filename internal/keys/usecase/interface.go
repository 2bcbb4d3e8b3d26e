package usecase

import (
	"context"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
)

// CustomerKeyRepository defines persistence operations for customer encryption keys.
type CustomerKeyRepository interface {
	// Create inserts a new customer key. Only the encrypted form is persisted.
	Create(ctx context.Context, customerKey *keysDomain.CustomerKey) error

	// GetLatestByCode retrieves the most recent key row for a customer code,
	// revoked or not.
	GetLatestByCode(ctx context.Context, customerCode string) (*keysDomain.CustomerKey, error)

	// Revoke tombstones the active key for a customer code, applying the
	// retention policy to the stored key material.
	Revoke(ctx context.Context, customerCode string, retention keysDomain.RetentionPolicy) error
}

// KeyStore defines the customer key store operations.
//
// The store is the only component that handles plaintext CEKs. Callers own the
// returned CustomerKey and must Close it once the key material is no longer
// needed.
type KeyStore interface {
	// Create provisions a fresh CEK for the customer code. Returns
	// ErrDuplicateCustomer if an active key already exists. A customer whose
	// key was revoked may be provisioned again with a brand new key.
	Create(ctx context.Context, customerCode string, alg cryptoDomain.Algorithm) (*keysDomain.CustomerKey, error)

	// Get returns the customer's active CEK with the plaintext Key populated.
	// Returns ErrUnknownCustomer if no key ever existed for the code and
	// ErrRevokedCustomer if the latest key is tombstoned.
	Get(ctx context.Context, customerCode string) (*keysDomain.CustomerKey, error)

	// Revoke tombstones the customer's active key. After Revoke returns, no
	// Get will ever hand out that key again.
	Revoke(ctx context.Context, customerCode string) error
}
