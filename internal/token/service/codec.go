// Package service implements the session token codec and validator.
package service

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

// nonceSize is shared by AES-GCM and ChaCha20-Poly1305.
const nonceSize = 12

// hintPattern matches valid customer codes used as routing hints.
var hintPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// wireClaims is the JSON document inside the encrypted payload. Timestamps
// travel as unix seconds.
type wireClaims struct {
	CustomerCode string    `json:"customer_code"`
	UserID       uuid.UUID `json:"user_id"`
	SessionID    uuid.UUID `json:"session_id"`
	IssuedAt     int64     `json:"iat"`
	ExpiresAt    int64     `json:"exp"`
	Roles        []string  `json:"roles,omitempty"`
	Kind         string    `json:"kind"`
}

// ParsedToken is the structural decomposition of a token string, before any
// key material is involved.
type ParsedToken struct {
	Hint       string
	Nonce      []byte
	Ciphertext []byte
}

// Codec encodes and decodes session tokens.
//
// The wire format is three dot-separated fields:
//
//	dk1.<hint>.<base64url(nonce || ciphertext)>
//
// The prefix pins the format version. The hint is the cleartext key routing
// field (a customer code, or "master" for admin tokens) and doubles as the
// AEAD associated data, binding every ciphertext to the key it claims to be
// under. The payload is the 12-byte nonce followed by the AEAD output,
// base64url-encoded without padding.
type Codec interface {
	// Encode encrypts the claims under key and produces a token routed by hint.
	Encode(claims *tokenDomain.SessionClaims, hint string, key []byte, alg cryptoDomain.Algorithm) (string, error)

	// Parse splits a token string into its structural parts. It involves no
	// key material; failures mean the input is not a token at all.
	Parse(token string) (*ParsedToken, error)

	// Decrypt opens a parsed token with the resolved key and returns the
	// claims. Fails on tampering, a wrong key, a relabelled hint, or a
	// payload that is not a well-formed claims document.
	Decrypt(parsed *ParsedToken, key []byte, alg cryptoDomain.Algorithm) (*tokenDomain.SessionClaims, error)
}

type codec struct {
	aeadManager cryptoService.AEADManager
}

// NewCodec creates a new token codec.
func NewCodec(aeadManager cryptoService.AEADManager) Codec {
	return &codec{aeadManager: aeadManager}
}

// Encode encrypts the claims under key and produces a token routed by hint.
func (c *codec) Encode(
	claims *tokenDomain.SessionClaims,
	hint string,
	key []byte,
	alg cryptoDomain.Algorithm,
) (string, error) {
	if !validHint(hint) {
		return "", tokenDomain.ErrMalformedToken
	}
	if !claims.Kind.Valid() {
		return "", tokenDomain.ErrInvalidClaims
	}

	payload, err := json.Marshal(wireClaims{
		CustomerCode: claims.CustomerCode,
		UserID:       claims.UserID,
		SessionID:    claims.SessionID,
		IssuedAt:     claims.IssuedAt.Unix(),
		ExpiresAt:    claims.ExpiresAt.Unix(),
		Roles:        claims.Roles,
		Kind:         string(claims.Kind),
	})
	if err != nil {
		return "", err
	}

	cipher, err := c.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := cipher.Encrypt(payload, []byte(hint))
	if err != nil {
		return "", err
	}

	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return tokenDomain.TokenPrefix + "." + hint + "." + base64.RawURLEncoding.EncodeToString(blob), nil
}

// Parse splits a token string into its structural parts.
func (c *codec) Parse(token string) (*ParsedToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, tokenDomain.ErrMalformedToken
	}
	if parts[0] != tokenDomain.TokenPrefix {
		return nil, tokenDomain.ErrMalformedToken
	}
	if !validHint(parts[1]) {
		return nil, tokenDomain.ErrMalformedToken
	}

	blob, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, tokenDomain.ErrMalformedToken
	}
	// The payload must hold at least the nonce and a 16-byte tag.
	if len(blob) < nonceSize+16 {
		return nil, tokenDomain.ErrMalformedToken
	}

	return &ParsedToken{
		Hint:       parts[1],
		Nonce:      blob[:nonceSize],
		Ciphertext: blob[nonceSize:],
	}, nil
}

// Decrypt opens a parsed token with the resolved key and returns the claims.
func (c *codec) Decrypt(
	parsed *ParsedToken,
	key []byte,
	alg cryptoDomain.Algorithm,
) (*tokenDomain.SessionClaims, error) {
	cipher, err := c.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	payload, err := cipher.Decrypt(parsed.Ciphertext, parsed.Nonce, []byte(parsed.Hint))
	if err != nil {
		return nil, tokenDomain.ErrAuthenticationFailed
	}

	var wire wireClaims
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, tokenDomain.ErrInvalidClaims
	}
	if wire.IssuedAt <= 0 || wire.ExpiresAt <= 0 {
		return nil, tokenDomain.ErrInvalidClaims
	}

	claims := &tokenDomain.SessionClaims{
		CustomerCode: wire.CustomerCode,
		UserID:       wire.UserID,
		SessionID:    wire.SessionID,
		IssuedAt:     time.Unix(wire.IssuedAt, 0).UTC(),
		ExpiresAt:    time.Unix(wire.ExpiresAt, 0).UTC(),
		Roles:        wire.Roles,
		Kind:         tokenDomain.TokenKind(wire.Kind),
	}

	if err := checkClaims(claims, parsed.Hint); err != nil {
		return nil, err
	}

	return claims, nil
}

// checkClaims rejects decrypted payloads that authenticated but do not form a
// coherent claims document.
func checkClaims(claims *tokenDomain.SessionClaims, hint string) error {
	if !claims.Kind.Valid() {
		return tokenDomain.ErrInvalidClaims
	}
	if claims.CustomerCode == "" || claims.UserID == uuid.Nil || claims.SessionID == uuid.Nil {
		return tokenDomain.ErrInvalidClaims
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		return tokenDomain.ErrInvalidClaims
	}
	// A customer-routed token must carry the customer it was encrypted for.
	if hint != tokenDomain.MasterHint && claims.CustomerCode != hint {
		return tokenDomain.ErrInvalidClaims
	}
	return nil
}

func validHint(hint string) bool {
	if hint == tokenDomain.MasterHint {
		return true
	}
	return hintPattern.MatchString(hint)
}
