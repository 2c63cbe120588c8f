package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func subscriberContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func TestNotifier_NilSafe(t *testing.T) {
	var nilNotifier *Notifier
	ctx := context.Background()

	assert.NoError(t, nilNotifier.PublishEvent(ctx, "scrap_created", map[string]int{"id": 1}))
	assert.NoError(t, NewNotifier(nil).PublishEvent(ctx, "scrap_created", nil))
	assert.NoError(t, nilNotifier.StartEventSubscriber(ctx, func(string) { t.Fatal("unexpected message") }))
}

func TestNotifier_PublishSubscribeRoundTrip(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)
	ctx := subscriberContext(t)

	got := make(chan string, 1)
	require.NoError(t, n.StartEventSubscriber(ctx, func(payload string) { got <- payload }))

	require.NoError(t, n.PublishEvent(context.Background(), "scrap_created", map[string]interface{}{"id": 7, "title": "Cat"}))

	select {
	case raw := <-got:
		var evt Event
		require.NoError(t, json.Unmarshal([]byte(raw), &evt))
		assert.Equal(t, "scrap_created", evt.Type)
		assert.JSONEq(t, `{"id":7,"title":"Cat"}`, string(evt.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNotifier_SubscriberSurvivesPanics(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)
	ctx := subscriberContext(t)

	got := make(chan string, 2)
	require.NoError(t, n.StartEventSubscriber(ctx, func(payload string) {
		got <- payload
		panic("handler blew up")
	}))

	for i := 0; i < 2; i++ {
		require.NoError(t, n.PublishEvent(context.Background(), "scrap_deleted", map[string]int{"id": i}))
		select {
		case <-got:
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d not delivered after a handler panic", i)
		}
	}
}

func TestNotifier_PublishMarshalError(t *testing.T) {
	n := NewNotifier(newRedis(t))
	err := n.PublishEvent(context.Background(), "scrap_created", make(chan int))
	assert.Error(t, err)
}
