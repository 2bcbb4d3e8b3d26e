// Package domain defines the customer encryption key (CEK) domain model.
//
// A CEK is a symmetric key bound to exactly one customer. It protects that
// tenant's session tokens and stored file content, and is itself stored
// encrypted under the process master key. A CEK never leaves the key store's
// trust boundary in cleartext, and once revoked it must never again be used to
// encrypt or decrypt.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
)

// CustomerKey represents a customer encryption key.
type CustomerKey struct {
	ID           uuid.UUID              // Unique identifier (UUIDv7)
	CustomerCode string                 // Customer this key is bound to
	Algorithm    cryptoDomain.Algorithm // Encryption algorithm (AESGCM or ChaCha20)
	EncryptedKey []byte                 // The CEK encrypted with the master key
	Key          []byte                 // Plaintext CEK (populated after decryption, never persisted)
	Nonce        []byte                 // Nonce used when wrapping the CEK
	CreatedAt    time.Time
	RevokedAt    *time.Time // Tombstone timestamp; nil while the key is active
}

// Revoked reports whether the key has been tombstoned.
func (k *CustomerKey) Revoked() bool {
	return k.RevokedAt != nil
}

// Close zeroes the plaintext key material, if present.
func (k *CustomerKey) Close() {
	cryptoDomain.Zero(k.Key)
	k.Key = nil
}
