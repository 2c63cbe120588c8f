package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup("Alice", "password10")

	status, body := env.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ALICE",
		"password": "password10",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		Profile   struct {
			Username string `json:"username"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "alice", resp.Profile.Username, "usernames are case-insensitive")
	assert.WithinDuration(t, time.Now().Add(middleware.TokenTTL), resp.ExpiresAt, time.Minute)

	tests := []struct {
		name     string
		payload  map[string]string
		status   int
		expected string
	}{
		{"wrong password", map[string]string{"username": "alice", "password": "password11"}, http.StatusUnauthorized, "Invalid username or password"},
		{"unknown user", map[string]string{"username": "nobody", "password": "password10"}, http.StatusUnauthorized, "Invalid username or password"},
		{"missing password", map[string]string{"username": "alice"}, http.StatusBadRequest, "Required: username and password to log in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.doJSON(http.MethodPost, "/api/auth/login", "", tt.payload)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.expected, decodeMessage(t, body))
		})
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup("alice", "password10")

	env.server.now = fixedClock(time.Now().Add(-2 * middleware.TokenTTL))
	stale := env.login("alice", "password10")
	env.server.now = time.Now

	status, body := env.doJSON(http.MethodPost, "/api/auth/logout", stale, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, middleware.MsgInvalidToken, decodeMessage(t, body))
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.signup("alice", "password10")

	claims, err := middleware.ParseToken(testConfig().JWTSecret, token)
	require.NoError(t, err)

	status, body := env.doJSON(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "true", string(body))

	key := blacklistPrefix + claims.JTI
	assert.True(t, env.mr.Exists(key))
	assert.Greater(t, env.mr.TTL(key), time.Duration(0))

	status, body = env.doMultipart(http.MethodPost, "/api/scraps", token, map[string][]string{"title": {"Cat"}}, textFile("x"))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, middleware.MsgInvalidToken, decodeMessage(t, body))

	// a fresh login is unaffected
	fresh := env.login("alice", "password10")
	env.createScrap(fresh, "Cat")
}

func TestTokenScheme(t *testing.T) {
	env := newTestEnv(t, false)
	token := env.signup("alice", "password10")

	req := jsonRequest(t, http.MethodPost, "/api/scraps/1/like", nil)
	req.Header.Set("Authorization", "Token "+token)
	status, _ := env.do(req)
	assert.Equal(t, http.StatusNotFound, status, "authenticated, the scrap just does not exist")

	req = jsonRequest(t, http.MethodPost, "/api/scraps/1/like", nil)
	req.Header.Set("Authorization", "Basic "+token)
	status, body := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, middleware.MsgInvalidToken, decodeMessage(t, body))

	status, _ = env.doJSON(http.MethodPost, "/api/scraps/1/like?token="+token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "query tokens are only honoured on websocket upgrades")
}
