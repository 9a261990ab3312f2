package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/pkg/config"
)

// scriptBackend emulates the fixed window script in memory.
type scriptBackend struct {
	redis.Scripter
	counts  map[string]int64
	evalErr error
	keys    []string
	ttlArgs []any
}

func newScriptBackend() *scriptBackend {
	return &scriptBackend{counts: map[string]int64{}}
}

func (b *scriptBackend) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	if b.evalErr != nil {
		return redis.NewCmdResult(nil, b.evalErr)
	}
	b.keys = append(b.keys, keys[0])
	b.ttlArgs = append(b.ttlArgs, args[0])
	b.counts[keys[0]]++
	ttl := args[0].(int64) - 100*(b.counts[keys[0]]-1)
	return redis.NewCmdResult([]any{b.counts[keys[0]], ttl}, nil)
}

func (b *scriptBackend) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func TestHitCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	backend := newScriptBackend()
	client := &Client{backend: backend}

	w, err := client.Hit(ctx, "mutations:user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Window{Allowed: true, Count: 1, Remaining: 1, ResetAfter: time.Minute}, w)

	w, err = client.Hit(ctx, "mutations:user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, w.Allowed)
	assert.Zero(t, w.Remaining)
	assert.Equal(t, time.Minute-100*time.Millisecond, w.ResetAfter)

	w, err = client.Hit(ctx, "mutations:user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, w.Allowed)
	assert.Equal(t, int64(3), w.Count)
	assert.Zero(t, w.Remaining)

	assert.Equal(t, "catalog:rate_limit:mutations:user-1", backend.keys[0])
	assert.Equal(t, int64(60000), backend.ttlArgs[0])
}

func TestHitPropagatesErrors(t *testing.T) {
	backend := newScriptBackend()
	backend.evalErr = errors.New("connection refused")
	client := &Client{backend: backend}

	_, err := client.Hit(context.Background(), "scope", 1, time.Second)
	assert.ErrorContains(t, err, "connection refused")

	_, err = client.Hit(context.Background(), "scope", 1, 0)
	assert.Error(t, err)
}

func TestUninitializedClient(t *testing.T) {
	var empty *Client
	assert.Error(t, empty.Ping(context.Background()))
	assert.NoError(t, empty.Close())

	_, err := (&Client{}).Hit(context.Background(), "scope", 1, time.Second)
	assert.ErrorIs(t, err, errNotInitialized)
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "catalog:rate_limit:mutations:ip:10.0.0.1", RateLimitKey("mutations:ip:10.0.0.1"))
	assert.Equal(t, "catalog:a:b", buildKey("a", " ", "b"))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = optionsFromConfig(config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)
}
