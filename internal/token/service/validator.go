package service

import (
	"context"
	"fmt"
	"time"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
	keysUsecase "github.com/denis-papin/doka.one/internal/keys/usecase"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

// Clock supplies the current time. Injected so expiry behavior is testable
// without sleeping.
type Clock func() time.Time

// KeyResolver maps a token routing hint to the decryption key for it.
type KeyResolver interface {
	// Resolve returns the key bytes and algorithm for a hint. The caller
	// owns the returned bytes and must zero them after use.
	Resolve(ctx context.Context, hint string) ([]byte, cryptoDomain.Algorithm, error)
}

// storeKeyResolver resolves customer hints through the key store and the
// reserved master hint through the process master key.
type storeKeyResolver struct {
	keyStore  keysUsecase.KeyStore
	masterKey *cryptoDomain.MasterKey
}

// NewKeyResolver creates a KeyResolver backed by the customer key store.
func NewKeyResolver(keyStore keysUsecase.KeyStore, masterKey *cryptoDomain.MasterKey) KeyResolver {
	return &storeKeyResolver{keyStore: keyStore, masterKey: masterKey}
}

// Resolve returns the key bytes and algorithm for a hint.
//
// Unknown and revoked customers both surface as ErrKeyResolutionFailed with
// the cause wrapped, so logs and metrics can tell them apart. The HTTP
// boundary still collapses both into the same 401.
func (r *storeKeyResolver) Resolve(
	ctx context.Context,
	hint string,
) ([]byte, cryptoDomain.Algorithm, error) {
	if hint == tokenDomain.MasterHint {
		key := make([]byte, cryptoDomain.KeySize)
		copy(key, r.masterKey.Bytes())
		return key, cryptoDomain.AESGCM, nil
	}

	customerKey, err := r.keyStore.Get(ctx, hint)
	if err != nil {
		if apperrors.Is(err, keysDomain.ErrUnknownCustomer) ||
			apperrors.Is(err, keysDomain.ErrRevokedCustomer) {
			return nil, "", fmt.Errorf("%w: %w", tokenDomain.ErrKeyResolutionFailed, err)
		}
		return nil, "", err
	}

	key := customerKey.Key
	customerKey.Key = nil // ownership moves to the caller
	return key, customerKey.Algorithm, nil
}

// Validator checks session tokens and produces the request security context.
type Validator interface {
	// Validate runs the full token check pipeline. On success it returns the
	// validated identity; on failure the error wraps ErrUnauthorized.
	Validate(ctx context.Context, token string) (*tokenDomain.SecurityContext, error)
}

// validator implements Validator as a fixed pipeline: structural parse, key
// resolution, AEAD authentication, a tenant liveness check for admin tokens,
// then time checks. The pipeline is
// deterministic for a given token, key state, and clock reading, and no
// result is ever cached, so a key revocation rejects the very next request.
type validator struct {
	codec     Codec
	resolver  KeyResolver
	clock     Clock
	clockSkew time.Duration
}

// NewValidator creates a token validator. clockSkew widens the time checks to
// tolerate issuer/validator clock drift; zero means exact comparison.
func NewValidator(codec Codec, resolver KeyResolver, clock Clock, clockSkew time.Duration) Validator {
	if clock == nil {
		clock = time.Now
	}
	return &validator{
		codec:     codec,
		resolver:  resolver,
		clock:     clock,
		clockSkew: clockSkew,
	}
}

// Validate runs the full token check pipeline.
func (v *validator) Validate(
	ctx context.Context,
	token string,
) (*tokenDomain.SecurityContext, error) {
	parsed, err := v.codec.Parse(token)
	if err != nil {
		return nil, err
	}

	key, alg, err := v.resolver.Resolve(ctx, parsed.Hint)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	claims, err := v.codec.Decrypt(parsed, key, alg)
	if err != nil {
		return nil, err
	}

	// Admin tokens decrypt under the master key, so the tenant they name was
	// never checked by key resolution. Look it up here: revoking or deleting
	// a customer must invalidate its admin tokens too. The reserved master
	// code names the platform scope and has no customer key.
	if claims.Kind == tokenDomain.KindAdminGenerated && claims.CustomerCode != tokenDomain.MasterHint {
		customerKey, _, err := v.resolver.Resolve(ctx, claims.CustomerCode)
		if err != nil {
			return nil, err
		}
		cryptoDomain.Zero(customerKey)
	}

	now := v.clock().UTC()

	// A token whose expiry equals the current instant is already expired.
	if !now.Before(claims.ExpiresAt.Add(v.clockSkew)) {
		return nil, tokenDomain.ErrExpiredToken
	}
	if claims.IssuedAt.After(now.Add(v.clockSkew)) {
		return nil, tokenDomain.ErrNotYetValid
	}

	return tokenDomain.NewSecurityContext(claims), nil
}
