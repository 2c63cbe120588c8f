package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/TheAXPerience/ScrapPages/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockStore is a mock of the storage.Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func (m *MockStore) Driver() string {
	return "mock"
}

func TestCreateScrap_StorageFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Put", mock.Anything, mock.Anything, "text/plain", mock.Anything).Return(errors.New("disk full"))

	s, err := NewServerWithDeps(testConfig(), testutil.NewTestDB(t), nil, store)
	require.NoError(t, err)
	s.userService.SetBcryptCost(bcrypt.MinCost)
	env := &testEnv{t: t, server: s, app: s.NewApp()}
	token := env.signup("alice", "password10")

	status, body := env.doMultipart(http.MethodPost, "/api/scraps", token, map[string][]string{"title": {"Cat"}}, textFile("x"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", decodeMessage(t, body))

	_, body = env.doJSON(http.MethodGet, "/api/scraps", "", nil)
	assert.Empty(t, decodeList(t, body))

	_, body = env.doJSON(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, "mock", decodeObject(t, body)["checks"].(map[string]interface{})["storage"])

	store.AssertExpectations(t)
}
