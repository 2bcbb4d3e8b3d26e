// Package integration provides end-to-end integration tests for the doka API.
// Tests the full stack (HTTP, use cases, crypto, repositories) against both
// PostgreSQL and MySQL databases.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denis-papin/doka.one/internal/app"
	"github.com/denis-papin/doka.one/internal/config"
	customerDTO "github.com/denis-papin/doka.one/internal/customer/http/dto"
	customerUsecase "github.com/denis-papin/doka.one/internal/customer/usecase"
	"github.com/denis-papin/doka.one/internal/testutil"
	tokenDTO "github.com/denis-papin/doka.one/internal/token/http/dto"
)

const (
	seedCustomerCode  = "acme"
	seedAdminEmail    = "admin@acme.example"
	seedAdminPassword = "Str0ng-Adm1n-Passw0rd!"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string

	adminToken string
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

// uploadFile performs a raw-body file upload.
func (ctx *integrationTestContext) uploadFile(
	t *testing.T,
	name, mimeType string,
	content []byte,
	token string,
) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ctx.server.URL+"/v1/files", bytes.NewReader(content))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-File-Name", name)
	req.Header.Set("Content-Type", mimeType)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

// writeMasterKeyFile writes a fresh base64-encoded 32-byte key file for the test.
func writeMasterKeyFile(t *testing.T) string {
	t.Helper()

	material := make([]byte, 32)
	_, err := rand.Read(material)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "master.key")
	encoded := base64.StdEncoding.EncodeToString(material)
	require.NoError(t, os.WriteFile(path, []byte(encoded+"\n"), 0o600))

	return path
}

// setupIntegrationTest prepares a database, a container, and a running test
// server, and seeds the first customer with its admin user.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	var db *sql.DB
	var dsn string
	switch dbDriver {
	case "postgres":
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	case "mysql":
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	default:
		t.Fatalf("unsupported driver: %s", dbDriver)
	}

	cfg := &config.Config{
		ServerHost:           "localhost",
		ServerPort:           0,
		DBDriver:             dbDriver,
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 5,
		DBMaxIdleConnections: 2,
		DBConnMaxLifetime:    time.Minute,
		LogLevel:             "error",
		MasterKeyFile:        writeMasterKeyFile(t),
		SessionTokenTTL:      time.Hour,
		CEKRetention:         "tombstone",
		// Small blocks so even tiny uploads span multiple encrypted parts
		FileBlockSize: 64,
	}

	container := app.NewContainer(cfg)

	customerUC, err := container.CustomerUseCase()
	require.NoError(t, err, "failed to initialize customer use case")

	_, err = customerUC.Create(context.Background(), customerUsecase.CreateCustomerInput{
		Code:          seedCustomerCode,
		Name:          "Acme Corp",
		ContactEmail:  "ops@acme.example",
		AdminName:     "Root Admin",
		AdminEmail:    seedAdminEmail,
		AdminPassword: seedAdminPassword,
	})
	require.NoError(t, err, "failed to seed customer")

	httpServer, err := container.HTTPServer()
	require.NoError(t, err, "failed to initialize http server")

	server := httptest.NewServer(httpServer.GetHandler())

	ctx := &integrationTestContext{
		container: container,
		db:        db,
		server:    server,
		dbDriver:  dbDriver,
	}

	t.Cleanup(func() {
		server.Close()
		if err := container.Shutdown(context.Background()); err != nil {
			t.Logf("container shutdown: %v", err)
		}
		switch dbDriver {
		case "postgres":
			testutil.CleanupPostgresDB(t, db)
		case "mysql":
			testutil.CleanupMySQLDB(t, db)
		}
		testutil.TeardownDB(t, db)
	})

	// Log in as the seeded admin so subtests have a token to work with
	ctx.adminToken = ctx.login(t, seedCustomerCode, seedAdminEmail, seedAdminPassword)

	return ctx
}

// login authenticates and returns the session token.
func (ctx *integrationTestContext) login(t *testing.T, code, email, password string) string {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/login", customerDTO.LoginRequest{
		CustomerCode: code,
		Email:        email,
		Password:     password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "login failed: %s", body)

	var loginResp customerDTO.LoginResponse
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}

func TestIntegrationAPIPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	runAPITests(t, "postgres")
}

func TestIntegrationAPIMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	runAPITests(t, "mysql")
}

func runAPITests(t *testing.T, dbDriver string) {
	ctx := setupIntegrationTest(t, dbDriver)

	t.Run("session lifecycle", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/sessions/current", nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, "read session failed: %s", body)

		var session customerDTO.SessionResponse
		require.NoError(t, json.Unmarshal(body, &session))
		assert.Equal(t, seedCustomerCode, session.CustomerCode)
		assert.Nil(t, session.ClosedAt)
	})

	t.Run("login rejections are uniform", func(t *testing.T) {
		cases := []customerDTO.LoginRequest{
			{CustomerCode: seedCustomerCode, Email: seedAdminEmail, Password: "wrong password"},
			{CustomerCode: seedCustomerCode, Email: "nobody@acme.example", Password: seedAdminPassword},
			{CustomerCode: "ghost", Email: seedAdminEmail, Password: seedAdminPassword},
		}

		var bodies [][]byte
		for _, input := range cases {
			resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/login", input, "")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			bodies = append(bodies, body)
		}

		// Wrong password, unknown user, and unknown customer must be
		// indistinguishable from the outside.
		for i := 1; i < len(bodies); i++ {
			assert.Equal(t, string(bodies[0]), string(bodies[i]))
		}
	})

	t.Run("garbage tokens are rejected", func(t *testing.T) {
		for _, token := range []string{
			"not-a-token",
			"dk1.acme.!!!",
			"dk1.ghost." + base64.RawURLEncoding.EncodeToString([]byte("junk junk junk junk junk")),
		} {
			resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/sessions/current", nil, token)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		}
	})

	t.Run("customer management", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/customers", customerDTO.CreateCustomerRequest{
			Code:          "globex",
			Name:          "Globex",
			ContactEmail:  "ops@globex.example",
			AdminName:     "Globex Admin",
			AdminEmail:    "admin@globex.example",
			AdminPassword: "An0ther-Str0ng-Passw0rd!",
		}, ctx.adminToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create customer failed: %s", body)

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/customers/globex", nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var customer customerDTO.CustomerResponse
		require.NoError(t, json.Unmarshal(body, &customer))
		assert.Equal(t, "globex", customer.Code)

		// Duplicate provisioning conflicts
		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/customers", customerDTO.CreateCustomerRequest{
			Code:          "globex",
			Name:          "Globex",
			ContactEmail:  "ops@globex.example",
			AdminName:     "Globex Admin",
			AdminEmail:    "admin@globex.example",
			AdminPassword: "An0ther-Str0ng-Passw0rd!",
		}, ctx.adminToken)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		// The new customer's admin can log in
		globexToken := ctx.login(t, "globex", "admin@globex.example", "An0ther-Str0ng-Passw0rd!")

		// Delete the customer and verify its credentials stop working
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/customers/globex", nil, ctx.adminToken)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/login", customerDTO.LoginRequest{
			CustomerCode: "globex",
			Email:        "admin@globex.example",
			Password:     "An0ther-Str0ng-Passw0rd!",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		// Key revocation also kills already-issued tokens
		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/sessions/current", nil, globexToken)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/customers/globex", nil, ctx.adminToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("admin tokens", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/admin/tokens", tokenDTO.IssueAdminTokenRequest{
			CustomerCode: seedCustomerCode,
			TTLSeconds:   600,
		}, ctx.adminToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "issue admin token failed: %s", body)

		var issued tokenDTO.IssueAdminTokenResponse
		require.NoError(t, json.Unmarshal(body, &issued))
		require.NotEmpty(t, issued.Token)
		assert.Equal(t, seedCustomerCode, issued.CustomerCode)

		// The minted token authenticates without a session row behind it
		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/sessions/current", nil, issued.Token)
		require.Equal(t, http.StatusOK, resp.StatusCode, "admin token rejected: %s", body)

		var session customerDTO.SessionResponse
		require.NoError(t, json.Unmarshal(body, &session))
		assert.Equal(t, seedCustomerCode, session.CustomerCode)
	})

	t.Run("catalog", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/tags", map[string]string{
			"name":       "department",
			"value_type": "string",
		}, ctx.adminToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create tag failed: %s", body)

		var tag struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(body, &tag))

		resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/items", map[string]interface{}{
			"name": "q3-report",
			"tags": []map[string]string{
				{"tag_id": tag.ID, "value": "finance"},
			},
		}, ctx.adminToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create item failed: %s", body)

		var item struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(body, &item))

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/items/"+item.ID, nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "finance")

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/items", nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "q3-report")

		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/items/"+item.ID, nil, ctx.adminToken)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/items/"+item.ID, nil, ctx.adminToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("file storage", func(t *testing.T) {
		// Larger than FileBlockSize so the upload spans multiple parts
		content := bytes.Repeat([]byte("doka file content block "), 20)

		resp, body := ctx.uploadFile(t, "report.txt", "text/plain", content, ctx.adminToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "upload failed: %s", body)

		var file struct {
			ID        string `json:"id"`
			PartCount int    `json:"part_count"`
		}
		require.NoError(t, json.Unmarshal(body, &file))
		assert.Greater(t, file.PartCount, 1)

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/files/"+file.ID, nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, content, body)
		assert.Equal(t, "report.txt", resp.Header.Get("X-File-Name"))

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/files/"+file.ID+"/info", nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var info struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		}
		require.NoError(t, json.Unmarshal(body, &info))
		assert.Equal(t, "report.txt", info.Name)
		assert.Equal(t, int64(len(content)), info.Size)

		resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/files", nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var listing struct {
			Files []struct {
				ID string `json:"id"`
			} `json:"files"`
		}
		require.NoError(t, json.Unmarshal(body, &listing))
		require.Len(t, listing.Files, 1)
		assert.Equal(t, file.ID, listing.Files[0].ID)

		// Stored parts must not contain the plaintext
		rows, err := ctx.db.Query("SELECT ciphertext FROM file_parts")
		require.NoError(t, err)
		defer func() { require.NoError(t, rows.Close()) }()
		for rows.Next() {
			var ciphertext []byte
			require.NoError(t, rows.Scan(&ciphertext))
			assert.NotContains(t, string(ciphertext), "doka file content")
		}
		require.NoError(t, rows.Err())

		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/files/"+file.ID, nil, ctx.adminToken)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/files/"+file.ID, nil, ctx.adminToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("logout", func(t *testing.T) {
		token := ctx.login(t, seedCustomerCode, seedAdminEmail, seedAdminPassword)

		resp, _ := ctx.makeRequest(t, http.MethodDelete, "/v1/sessions/current", nil, token)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		// Logout is idempotent
		resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/sessions/current", nil, token)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
