package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/config"
	"github.com/TheAXPerience/ScrapPages/internal/storage"
	"github.com/TheAXPerience/ScrapPages/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testTimeout = 5000

type testEnv struct {
	t      *testing.T
	server *Server
	app    *fiber.App
	mr     *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret-that-is-long-enough",
		Port:           "0",
		Env:            "test",
		AllowedOrigins: "*",
		MediaURL:       "/media/",
		UploadMaxMB:    2,
		FeatureFlags:   "image_previews=on",
	}
}

// newTestEnv builds a server over SQLite and a temp media dir. withRedis adds
// a miniredis instance for token revocation and realtime events.
func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()

	var rdb *redis.Client
	var mr *miniredis.Miniredis
	if withRedis {
		mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	store := storage.NewLocalStore(t.TempDir(), "/media/")
	s, err := NewServerWithDeps(testConfig(), testutil.NewTestDB(t), rdb, store)
	require.NoError(t, err)
	s.userService.SetBcryptCost(bcrypt.MinCost)

	return &testEnv{t: t, server: s, app: s.NewApp(), mr: mr}
}

func (e *testEnv) do(req *http.Request) (int, []byte) {
	e.t.Helper()
	resp, err := e.app.Test(req, testTimeout)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, body
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func (e *testEnv) doJSON(method, path, token string, payload interface{}) (int, []byte) {
	e.t.Helper()
	req := jsonRequest(e.t, method, path, payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

type upload struct {
	field, filename, contentType string
	data                         []byte
}

func (e *testEnv) doMultipart(method, path, token string, fields map[string][]string, files ...upload) (int, []byte) {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(e.t, w.WriteField(name, v))
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(e.t, err)
		_, err = part.Write(f.data)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

// signup creates an account and returns a bearer token for it.
func (e *testEnv) signup(username, password string) string {
	e.t.Helper()
	status, body := e.doJSON(http.MethodPost, "/api/profiles", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(e.t, http.StatusOK, status, string(body))
	return e.login(username, password)
}

func (e *testEnv) login(username, password string) string {
	e.t.Helper()
	status, body := e.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(e.t, http.StatusOK, status, string(body))
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(e.t, json.Unmarshal(body, &resp))
	require.NotEmpty(e.t, resp.Token)
	return resp.Token
}

func textFile(body string) upload {
	return upload{field: "file", filename: "note.txt", contentType: "text/plain", data: []byte(body)}
}

// createScrap posts a text scrap and returns its decoded response.
func (e *testEnv) createScrap(token, title string, tags ...string) map[string]interface{} {
	e.t.Helper()
	fields := map[string][]string{"title": {title}}
	if len(tags) > 0 {
		fields["tags"] = tags
	}
	status, body := e.doMultipart(http.MethodPost, "/api/scraps", token, fields, textFile("hello"))
	require.Equal(e.t, http.StatusOK, status, string(body))
	return decodeObject(e.t, body)
}

func decodeObject(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func decodeList(t *testing.T, body []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func decodeMessage(t *testing.T, body []byte) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(body, &msg), string(body))
	return msg
}

func TestHealthChecks(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		env := newTestEnv(t, false)

		status, body := env.doJSON(http.MethodGet, "/health/live", "", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "up", decodeObject(t, body)["status"])

		status, body = env.doJSON(http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusOK, status)
		checks := decodeObject(t, body)["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "disabled", checks["redis"])
		assert.Equal(t, "local", checks["storage"])
	})

	t.Run("redis down", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.mr.Close()

		status, body := env.doJSON(http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		resp := decodeObject(t, body)
		assert.Equal(t, "unhealthy", resp["status"])
		assert.Equal(t, "unhealthy", resp["checks"].(map[string]interface{})["redis"])
	})
}

func TestFeatureFlagsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	status, body := env.doJSON(http.MethodGet, "/api/feature-flags", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeObject(t, body)["image_previews"])
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	env := newTestEnv(t, false)
	status, body := env.doJSON(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, decodeMessage(t, body))
}

func TestNewServerWithDeps_RequiresDB(t *testing.T) {
	_, err := NewServerWithDeps(testConfig(), nil, nil, storage.NewLocalStore(t.TempDir(), ""))
	assert.Error(t, err)
}

// fixedClock pins the server clock.
func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
