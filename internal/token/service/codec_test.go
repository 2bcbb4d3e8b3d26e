package service

import (
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func newClaims(customerCode string) *tokenDomain.SessionClaims {
	issuedAt := time.Now().UTC().Truncate(time.Second)
	return &tokenDomain.SessionClaims{
		CustomerCode: customerCode,
		UserID:       uuid.Must(uuid.NewV7()),
		SessionID:    uuid.Must(uuid.NewV7()),
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.Add(time.Hour),
		Roles:        []string{"reader", "writer"},
		Kind:         tokenDomain.KindUserLogin,
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())
	key := randomKey(t)
	claims := newClaims("acme")

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			token, err := codec.Encode(claims, "acme", key, alg)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(token, "dk1.acme."))

			parsed, err := codec.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, "acme", parsed.Hint)

			got, err := codec.Decrypt(parsed, key, alg)
			require.NoError(t, err)
			assert.Equal(t, claims.CustomerCode, got.CustomerCode)
			assert.Equal(t, claims.UserID, got.UserID)
			assert.Equal(t, claims.SessionID, got.SessionID)
			assert.Equal(t, claims.IssuedAt, got.IssuedAt)
			assert.Equal(t, claims.ExpiresAt, got.ExpiresAt)
			assert.Equal(t, claims.Roles, got.Roles)
			assert.Equal(t, tokenDomain.KindUserLogin, got.Kind)
		})
	}
}

func TestCodec_MasterHint(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())
	key := randomKey(t)

	claims := newClaims("acme")
	claims.Kind = tokenDomain.KindAdminGenerated

	token, err := codec.Encode(claims, tokenDomain.MasterHint, key, cryptoDomain.AESGCM)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "dk1.master."))

	parsed, err := codec.Parse(token)
	require.NoError(t, err)

	got, err := codec.Decrypt(parsed, key, cryptoDomain.AESGCM)
	require.NoError(t, err)
	assert.Equal(t, tokenDomain.KindAdminGenerated, got.Kind)
	assert.Equal(t, "acme", got.CustomerCode)
}

func TestCodec_Encode_InvalidInput(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())
	key := randomKey(t)

	t.Run("bad hint", func(t *testing.T) {
		_, err := codec.Encode(newClaims("acme"), "Not A Code!", key, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, tokenDomain.ErrMalformedToken)
	})

	t.Run("unknown kind", func(t *testing.T) {
		claims := newClaims("acme")
		claims.Kind = tokenDomain.TokenKind("service-account")
		_, err := codec.Encode(claims, "acme", key, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidClaims)
	})
}

func TestCodec_Parse_Malformed(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())

	cases := map[string]string{
		"empty":             "",
		"not a token":       "hello world",
		"two fields":        "dk1.acme",
		"four fields":       "dk1.acme.abc.def",
		"wrong prefix":      "dk2.acme.AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"invalid hint":      "dk1.ACME.AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"hyphen-lead hint":  "dk1.-acme.AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"bad base64":        "dk1.acme.!!!not-base64!!!",
		"payload too short": "dk1.acme.AAAA",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Parse(token)
			assert.ErrorIs(t, err, tokenDomain.ErrMalformedToken)
		})
	}
}

func TestCodec_Decrypt_Tampered(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())
	key := randomKey(t)

	token, err := codec.Encode(newClaims("acme"), "acme", key, cryptoDomain.AESGCM)
	require.NoError(t, err)

	parsed, err := codec.Parse(token)
	require.NoError(t, err)

	for i := range parsed.Ciphertext {
		tampered := &ParsedToken{
			Hint:       parsed.Hint,
			Nonce:      parsed.Nonce,
			Ciphertext: make([]byte, len(parsed.Ciphertext)),
		}
		copy(tampered.Ciphertext, parsed.Ciphertext)
		tampered.Ciphertext[i] ^= 0x01

		_, err := codec.Decrypt(tampered, key, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, tokenDomain.ErrAuthenticationFailed, "bit flip at byte %d", i)
	}
}

func TestCodec_Decrypt_WrongKey(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())

	token, err := codec.Encode(newClaims("acme"), "acme", randomKey(t), cryptoDomain.AESGCM)
	require.NoError(t, err)

	parsed, err := codec.Parse(token)
	require.NoError(t, err)

	_, err = codec.Decrypt(parsed, randomKey(t), cryptoDomain.AESGCM)
	assert.ErrorIs(t, err, tokenDomain.ErrAuthenticationFailed)
}

func TestCodec_Decrypt_RelabelledHint(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())
	key := randomKey(t)

	token, err := codec.Encode(newClaims("acme"), "acme", key, cryptoDomain.AESGCM)
	require.NoError(t, err)

	parsed, err := codec.Parse(token)
	require.NoError(t, err)

	// Same key, different routing hint: the hint is AAD, so authentication
	// must fail even before the claims are inspected.
	parsed.Hint = "globex"
	_, err = codec.Decrypt(parsed, key, cryptoDomain.AESGCM)
	assert.ErrorIs(t, err, tokenDomain.ErrAuthenticationFailed)
}

func TestCodec_Decrypt_ClaimShape(t *testing.T) {
	codec := NewCodec(cryptoService.NewAEADManager())
	key := randomKey(t)

	encode := func(t *testing.T, mutate func(*tokenDomain.SessionClaims)) *ParsedToken {
		t.Helper()
		claims := newClaims("acme")
		mutate(claims)
		token, err := codec.Encode(claims, "acme", key, cryptoDomain.AESGCM)
		require.NoError(t, err)
		parsed, err := codec.Parse(token)
		require.NoError(t, err)
		return parsed
	}

	t.Run("missing user id", func(t *testing.T) {
		parsed := encode(t, func(c *tokenDomain.SessionClaims) { c.UserID = uuid.Nil })
		_, err := codec.Decrypt(parsed, key, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidClaims)
	})

	t.Run("missing session id", func(t *testing.T) {
		parsed := encode(t, func(c *tokenDomain.SessionClaims) { c.SessionID = uuid.Nil })
		_, err := codec.Decrypt(parsed, key, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidClaims)
	})

	t.Run("expiry before issue", func(t *testing.T) {
		parsed := encode(t, func(c *tokenDomain.SessionClaims) {
			c.ExpiresAt = c.IssuedAt.Add(-time.Minute)
		})
		_, err := codec.Decrypt(parsed, key, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidClaims)
	})

	t.Run("claims customer differs from hint", func(t *testing.T) {
		parsed := encode(t, func(c *tokenDomain.SessionClaims) { c.CustomerCode = "globex" })
		_, err := codec.Decrypt(parsed, key, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidClaims)
	})
}
