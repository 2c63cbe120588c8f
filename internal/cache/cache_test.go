package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProfile struct {
	Username string `json:"username"`
	Scraps   int    `json:"num_scraps"`
}

func withRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = client.Close()
		SetClient(nil)
	})
	return mr
}

func TestAside_CachesUntilInvalidated(t *testing.T) {
	mr := withRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (cachedProfile, error) {
		calls++
		return cachedProfile{Username: "alice", Scraps: calls}, nil
	}

	first, err := Aside(ctx, ProfileKey("alice"), ProfileTTL, fetch)
	require.NoError(t, err)
	second, err := Aside(ctx, ProfileKey("alice"), ProfileTTL, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("profile:alice"))
	assert.Equal(t, ProfileTTL, mr.TTL("profile:alice"))

	InvalidateProfile(ctx, "alice", "deleted")
	assert.False(t, mr.Exists("profile:alice"))

	third, err := Aside(ctx, ProfileKey("alice"), ProfileTTL, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Scraps)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := withRedis(t)
	boom := errors.New("boom")

	_, err := Aside(context.Background(), ProfileKey("bob"), time.Minute, func() (cachedProfile, error) {
		return cachedProfile{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("profile:bob"))
}

func TestAside_WithoutRedisAlwaysFetches(t *testing.T) {
	SetClient(nil)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Aside(context.Background(), ProfileKey("carol"), time.Minute, func() (cachedProfile, error) {
			calls++
			return cachedProfile{Username: "carol"}, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	Invalidate(context.Background(), ProfileKey("carol"))
}

func TestAside_RedisDownFallsThrough(t *testing.T) {
	mr := withRedis(t)
	mr.Close()

	got, err := Aside(context.Background(), ProfileKey("dave"), time.Minute, func() (cachedProfile, error) {
		return cachedProfile{Username: "dave"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "dave", got.Username)
}
