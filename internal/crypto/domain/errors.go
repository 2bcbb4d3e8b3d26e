package domain

import (
	"github.com/denis-papin/doka.one/internal/errors"
)

// Cryptographic operation error definitions.
var (
	// ErrKeyFile indicates the master key file is missing, unreadable, or
	// structurally invalid. Startup-only and fatal: a process without its
	// master key must not serve requests.
	ErrKeyFile = errors.New("key file error")

	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	// Every key in the hierarchy must be exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// Wrong key, tampered ciphertext, and invalid nonce all surface as this
	// single error: the specific cause is deliberately not disclosed to
	// prevent oracle leakage.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
