package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/denis-papin/doka.one/internal/errors"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) IssueUserToken(
	ctx context.Context,
	customerCode string,
	userID uuid.UUID,
	roles []string,
) (string, *tokenDomain.SessionClaims, error) {
	args := m.Called(ctx, customerCode, userID, roles)
	var claims *tokenDomain.SessionClaims
	if args.Get(1) != nil {
		claims = args.Get(1).(*tokenDomain.SessionClaims)
	}
	return args.String(0), claims, args.Error(2)
}

func (m *mockIssuer) IssueAdminToken(
	ctx context.Context,
	customerCode string,
	actor string,
	ttl time.Duration,
) (string, *tokenDomain.SessionClaims, error) {
	args := m.Called(ctx, customerCode, actor, ttl)
	var claims *tokenDomain.SessionClaims
	if args.Get(1) != nil {
		claims = args.Get(1).(*tokenDomain.SessionClaims)
	}
	return args.String(0), claims, args.Error(2)
}

func TestRunIssueAdminToken(t *testing.T) {
	ctx := context.Background()
	expiresAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("text-output", func(t *testing.T) {
		issuer := &mockIssuer{}
		issuer.On("IssueAdminToken", ctx, "acme", "ops@example.com", time.Hour).Return(
			"dk1.acme.dG9rZW4",
			&tokenDomain.SessionClaims{CustomerCode: "acme", ExpiresAt: expiresAt},
			nil,
		)

		var out bytes.Buffer
		err := RunIssueAdminToken(ctx, issuer, &out, "acme", "ops@example.com", 3600, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "dk1.acme.dG9rZW4")
		require.Contains(t, out.String(), "Admin token issued for customer acme")
		issuer.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		issuer := &mockIssuer{}
		issuer.On("IssueAdminToken", ctx, "acme", "cli", time.Duration(0)).Return(
			"dk1.acme.dG9rZW4",
			&tokenDomain.SessionClaims{CustomerCode: "acme", ExpiresAt: expiresAt},
			nil,
		)

		var out bytes.Buffer
		err := RunIssueAdminToken(ctx, issuer, &out, "acme", "", 0, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"token": "dk1.acme.dG9rZW4"`)
		issuer.AssertExpectations(t)
	})

	t.Run("missing-customer-code", func(t *testing.T) {
		issuer := &mockIssuer{}
		err := RunIssueAdminToken(ctx, issuer, &bytes.Buffer{}, "", "cli", 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "customer code is required")
	})

	t.Run("negative-ttl", func(t *testing.T) {
		issuer := &mockIssuer{}
		err := RunIssueAdminToken(ctx, issuer, &bytes.Buffer{}, "acme", "cli", -1, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "ttl must not be negative")
	})

	t.Run("unknown-customer", func(t *testing.T) {
		issuer := &mockIssuer{}
		issuer.On("IssueAdminToken", ctx, "ghost", "cli", time.Duration(0)).Return(
			"", nil, apperrors.ErrNotFound,
		)

		err := RunIssueAdminToken(ctx, issuer, &bytes.Buffer{}, "ghost", "cli", 0, "text")

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
