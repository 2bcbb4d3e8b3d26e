// Package domain defines the core cryptographic domain models for the platform
// key hierarchy.
//
// It implements a two-tier hierarchy: Master Key → Customer Encryption Key (CEK)
// → tenant data and session tokens. The master key is loaded once per process
// from a protected key file and protects every CEK at rest. Supports AESGCM and
// ChaCha20 algorithms with 256-bit keys.
package domain

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// KeySize is the required length in bytes of every key in the hierarchy.
const KeySize = 32

// MasterKey is the root secret of the key hierarchy.
//
// Exactly one master key exists per process. It is loaded at startup from a
// key file, held read-only in memory for the process lifetime, and never
// serialized out. All services of a deployment must load identical key
// material from their own copy of the key file; key state is never shared
// through process memory.
type MasterKey struct {
	key []byte
}

// NewMasterKey builds a MasterKey from raw key material. The input slice is
// copied; the caller should zero its own copy. Returns ErrInvalidKeySize when
// the material is not exactly KeySize bytes.
func NewMasterKey(material []byte) (*MasterKey, error) {
	if len(material) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(material))
	}
	key := make([]byte, KeySize)
	copy(key, material)
	return &MasterKey{key: key}, nil
}

// Bytes returns the raw key material. Callers must never log or persist it.
func (m *MasterKey) Bytes() []byte {
	return m.key
}

// Close zeroes the key material. The MasterKey must not be used afterwards.
func (m *MasterKey) Close() {
	Zero(m.key)
	m.key = nil
}

// LoadMasterKey reads the master key from the key file at path.
//
// The file contains a single line with the standard base64 encoding of exactly
// KeySize key bytes; surrounding whitespace is tolerated. Any failure (missing
// file, unreadable, bad base64, wrong length) is an ErrKeyFile condition and
// fatal for every dependent service. There is no retry and no fallback.
func LoadMasterKey(path string) (*MasterKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", ErrKeyFile, path, err)
	}

	material, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", ErrKeyFile, path)
	}

	masterKey, err := NewMasterKey(material)
	Zero(material)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeyFile, path, err)
	}

	return masterKey, nil
}
