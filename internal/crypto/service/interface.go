// Package service provides cryptographic services for the platform key hierarchy.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) for protecting
// customer encryption keys and session token payloads.
package service

import (
	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyManager defines the interface for creating and unwrapping customer
// encryption keys (CEKs) protected by the master key.
type KeyManager interface {
	// CreateCustomerKey generates a fresh CEK for the customer and encrypts it
	// under the master key. The returned CustomerKey has both the plaintext Key
	// and the EncryptedKey populated; only the encrypted form may be persisted.
	CreateCustomerKey(
		masterKey *cryptoDomain.MasterKey,
		customerCode string,
		alg cryptoDomain.Algorithm,
	) (keysDomain.CustomerKey, error)

	// DecryptCustomerKey decrypts a CEK using the master key.
	DecryptCustomerKey(
		customerKey *keysDomain.CustomerKey,
		masterKey *cryptoDomain.MasterKey,
	) ([]byte, error)
}
