package httputil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleErrorGin(t *testing.T) {
	cases := map[string]struct {
		err        error
		statusCode int
		errorCode  string
	}{
		"unauthorized": {
			err:        apperrors.Wrap(apperrors.ErrUnauthorized, "token expired"),
			statusCode: http.StatusUnauthorized,
			errorCode:  "unauthorized",
		},
		"forbidden": {
			err:        apperrors.ErrForbidden,
			statusCode: http.StatusForbidden,
			errorCode:  "forbidden",
		},
		"not found": {
			err:        apperrors.Wrap(apperrors.ErrNotFound, "customer not found"),
			statusCode: http.StatusNotFound,
			errorCode:  "not_found",
		},
		"conflict": {
			err:        apperrors.Wrap(apperrors.ErrConflict, "customer already exists"),
			statusCode: http.StatusConflict,
			errorCode:  "conflict",
		},
		"invalid input": {
			err:        apperrors.Wrap(apperrors.ErrInvalidInput, "name is required"),
			statusCode: http.StatusUnprocessableEntity,
			errorCode:  "invalid_input",
		},
		"internal": {
			err:        apperrors.New("database exploded"),
			statusCode: http.StatusInternalServerError,
			errorCode:  "internal_error",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			HandleErrorGin(c, tc.err, testLogger())

			assert.Equal(t, tc.statusCode, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.errorCode, response.Error)
		})
	}
}

// Rejections with different causes produce the exact same 401 body.
func TestHandleErrorGin_UniformUnauthorizedBody(t *testing.T) {
	causes := []error{
		apperrors.Wrap(apperrors.ErrUnauthorized, "malformed token"),
		apperrors.Wrap(apperrors.ErrUnauthorized, "token expired"),
		apperrors.Wrap(apperrors.ErrUnauthorized, "customer key revoked"),
	}

	var bodies []string
	for _, cause := range causes {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

		HandleErrorGin(c, cause, testLogger())
		require.Equal(t, http.StatusUnauthorized, w.Code)
		bodies = append(bodies, w.Body.String())
	}

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestHandleErrorGin_NilError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleErrorGin(c, nil, testLogger())

	assert.Empty(t, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)

	HandleBadRequestGin(c, apperrors.New("invalid json"), testLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleValidationErrorGin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)

	HandleValidationErrorGin(c, apperrors.New("name: cannot be blank"), testLogger())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestParsePagination(t *testing.T) {
	newContext := func(query string) *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/test"+query, nil)
		return c
	}

	t.Run("defaults", func(t *testing.T) {
		offset, limit, err := ParsePagination(newContext(""))
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.Equal(t, 50, limit)
	})

	t.Run("explicit values", func(t *testing.T) {
		offset, limit, err := ParsePagination(newContext("?offset=20&limit=10"))
		require.NoError(t, err)
		assert.Equal(t, 20, offset)
		assert.Equal(t, 10, limit)
	})

	t.Run("invalid offset", func(t *testing.T) {
		_, _, err := ParsePagination(newContext("?offset=-1"))
		assert.Error(t, err)
	})

	t.Run("limit too large", func(t *testing.T) {
		_, _, err := ParsePagination(newContext("?limit=201"))
		assert.Error(t, err)
	})

	t.Run("limit not a number", func(t *testing.T) {
		_, _, err := ParsePagination(newContext("?limit=abc"))
		assert.Error(t, err)
	})
}
