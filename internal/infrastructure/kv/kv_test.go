package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value, err := store.GetItem(ctx, "user")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetItem(ctx, "user", `{"type":"Employee","email":"a@a"}`))
	value, err = store.GetItem(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Employee","email":"a@a"}`, value)
}

func TestNamespace_IsolatesVisitors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice := Namespace(store, "sid-alice")
	bob := Namespace(store, "sid-bob")

	require.NoError(t, alice.SetItem(ctx, "user", "alice"))

	got, err := bob.GetItem(ctx, "user")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.GetItem(ctx, "sid-alice:user")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisStore(client, time.Hour)

	value, err := store.GetItem(ctx, "user")
	require.NoError(t, err, "missing key is not an error")
	assert.Empty(t, value)

	require.NoError(t, store.SetItem(ctx, "user", "payload"))
	assert.Equal(t, "payload", client.values[KeyPrefix+"user"])
	assert.Equal(t, time.Hour, client.ttls[KeyPrefix+"user"])

	value, err = store.GetItem(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "payload", value)

	client.failGet = errors.New("connection refused")
	_, err = store.GetItem(ctx, "user")
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	_, err := NewRedisClient("  ", "", 0)
	assert.EqualError(t, err, "redis: addr is empty")
}
