package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeValidator accepts a fixed set of tokens.
type fakeValidator struct {
	contexts map[string]*tokenDomain.SecurityContext
}

func (f *fakeValidator) Validate(
	ctx context.Context,
	token string,
) (*tokenDomain.SecurityContext, error) {
	sc, ok := f.contexts[token]
	if !ok {
		return nil, tokenDomain.ErrAuthenticationFailed
	}
	return sc, nil
}

func newSessionRouter(validator *fakeValidator) *gin.Engine {
	router := gin.New()
	router.GET("/protected",
		SessionMiddleware(validator, testLogger()),
		func(c *gin.Context) {
			sc, ok := GetSecurityContext(c.Request.Context())
			if !ok {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "no security context"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"customer_code": sc.CustomerCode})
		},
	)
	router.GET("/admin",
		SessionMiddleware(validator, testLogger()),
		RequireAdminMiddleware(testLogger()),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return router
}

func newFakeValidator() *fakeValidator {
	return &fakeValidator{
		contexts: map[string]*tokenDomain.SecurityContext{
			"user-token": {
				CustomerCode: "acme",
				UserID:       uuid.Must(uuid.NewV7()),
				SessionID:    uuid.Must(uuid.NewV7()),
				Roles:        []string{"user"},
				Kind:         tokenDomain.KindUserLogin,
			},
			"admin-token": {
				CustomerCode: "acme",
				UserID:       uuid.Must(uuid.NewV7()),
				SessionID:    uuid.Must(uuid.NewV7()),
				Roles:        []string{"admin"},
				Kind:         tokenDomain.KindAdminGenerated,
			},
		},
	}
}

func TestSessionMiddleware_Success(t *testing.T) {
	router := newSessionRouter(newFakeValidator())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "acme", response["customer_code"])
}

func TestSessionMiddleware_CaseInsensitiveBearer(t *testing.T) {
	router := newSessionRouter(newFakeValidator())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer user-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionMiddleware_Rejections(t *testing.T) {
	cases := map[string]struct {
		header string
	}{
		"missing header":   {header: ""},
		"not bearer":       {header: "Basic dXNlcjpwYXNz"},
		"empty token":      {header: "Bearer "},
		"unknown token":    {header: "Bearer forged-token"},
		"prefix only":      {header: "Bearer"},
		"whitespace token": {header: "Bearer  "},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			router := newSessionRouter(newFakeValidator())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

// All rejection shapes return the identical body.
func TestSessionMiddleware_UniformRejectionBody(t *testing.T) {
	router := newSessionRouter(newFakeValidator())
	headers := []string{"", "Basic abc", "Bearer forged-token"}

	var bodies []string
	for _, header := range headers {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		bodies = append(bodies, w.Body.String())
	}

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestRequireAdminMiddleware(t *testing.T) {
	router := newSessionRouter(newFakeValidator())

	t.Run("admin allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer user-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSecurityContextHelpers(t *testing.T) {
	ctx := context.Background()

	_, ok := GetSecurityContext(ctx)
	assert.False(t, ok)

	sc := &tokenDomain.SecurityContext{CustomerCode: "acme"}
	ctx = WithSecurityContext(ctx, sc)

	got, ok := GetSecurityContext(ctx)
	require.True(t, ok)
	assert.Equal(t, sc, got)
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.POST("/login",
		LoginRateLimitMiddleware(1, 2, testLogger()),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)

	// Burst of 2 is allowed, the third request in the same instant is rejected.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// A different IP has its own bucket.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
