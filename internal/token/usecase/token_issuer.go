// Package usecase implements token minting.
package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/denis-papin/doka.one/internal/audit/domain"
	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysUsecase "github.com/denis-papin/doka.one/internal/keys/usecase"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
	tokenService "github.com/denis-papin/doka.one/internal/token/service"
)

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Create(ctx context.Context, event *auditDomain.AuditEvent) error
}

// Issuer mints session tokens.
type Issuer interface {
	// IssueUserToken mints a user-login token under the customer's key.
	// Returns the token string and the claims it carries.
	IssueUserToken(
		ctx context.Context,
		customerCode string,
		userID uuid.UUID,
		roles []string,
	) (string, *tokenDomain.SessionClaims, error)

	// IssueAdminToken mints an admin-generated token under the master key and
	// records the mint in the audit trail. ttl of zero uses the default.
	IssueAdminToken(
		ctx context.Context,
		customerCode string,
		actor string,
		ttl time.Duration,
	) (string, *tokenDomain.SessionClaims, error)
}

type issuer struct {
	codec      tokenService.Codec
	keyStore   keysUsecase.KeyStore
	masterKey  *cryptoDomain.MasterKey
	auditRepo  AuditRecorder
	clock      tokenService.Clock
	defaultTTL time.Duration
}

// NewIssuer creates a token issuer. defaultTTL is the token lifetime applied
// when the caller does not specify one.
func NewIssuer(
	codec tokenService.Codec,
	keyStore keysUsecase.KeyStore,
	masterKey *cryptoDomain.MasterKey,
	auditRepo AuditRecorder,
	clock tokenService.Clock,
	defaultTTL time.Duration,
) Issuer {
	if clock == nil {
		clock = time.Now
	}
	return &issuer{
		codec:      codec,
		keyStore:   keyStore,
		masterKey:  masterKey,
		auditRepo:  auditRepo,
		clock:      clock,
		defaultTTL: defaultTTL,
	}
}

// IssueUserToken mints a user-login token under the customer's key.
func (i *issuer) IssueUserToken(
	ctx context.Context,
	customerCode string,
	userID uuid.UUID,
	roles []string,
) (string, *tokenDomain.SessionClaims, error) {
	customerKey, err := i.keyStore.Get(ctx, customerCode)
	if err != nil {
		return "", nil, err
	}
	defer customerKey.Close()

	claims := i.newClaims(customerCode, userID, roles, tokenDomain.KindUserLogin, i.defaultTTL)

	token, err := i.codec.Encode(claims, customerCode, customerKey.Key, customerKey.Algorithm)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to encode user token")
	}

	return token, claims, nil
}

// IssueAdminToken mints an admin-generated token under the master key.
//
// The token impersonates no user: its user id and session id are fresh, and
// the kind marks it as operator-minted. Every mint leaves an audit event.
func (i *issuer) IssueAdminToken(
	ctx context.Context,
	customerCode string,
	actor string,
	ttl time.Duration,
) (string, *tokenDomain.SessionClaims, error) {
	if ttl <= 0 {
		ttl = i.defaultTTL
	}

	claims := i.newClaims(
		customerCode,
		uuid.Must(uuid.NewV7()),
		[]string{"admin"},
		tokenDomain.KindAdminGenerated,
		ttl,
	)

	token, err := i.codec.Encode(claims, tokenDomain.MasterHint, i.masterKey.Bytes(), cryptoDomain.AESGCM)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to encode admin token")
	}

	details, err := json.Marshal(map[string]any{
		"session_id": claims.SessionID,
		"expires_at": claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to marshal audit details")
	}

	event := &auditDomain.AuditEvent{
		ID:           uuid.Must(uuid.NewV7()),
		Kind:         auditDomain.EventAdminTokenIssued,
		Actor:        actor,
		CustomerCode: customerCode,
		Details:      string(details),
		CreatedAt:    i.clock().UTC(),
	}
	if err := i.auditRepo.Create(ctx, event); err != nil {
		return "", nil, err
	}

	return token, claims, nil
}

func (i *issuer) newClaims(
	customerCode string,
	userID uuid.UUID,
	roles []string,
	kind tokenDomain.TokenKind,
	ttl time.Duration,
) *tokenDomain.SessionClaims {
	issuedAt := i.clock().UTC().Truncate(time.Second)
	return &tokenDomain.SessionClaims{
		CustomerCode: customerCode,
		UserID:       userID,
		SessionID:    uuid.Must(uuid.NewV7()),
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.Add(ttl),
		Roles:        roles,
		Kind:         kind,
	}
}
