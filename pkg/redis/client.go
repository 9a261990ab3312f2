package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const keyNamespace = "catalog"

var errNotInitialized = errors.New("redis client not initialized")

// fixedWindowScript increments the counter and starts its window on the first
// hit. A counter that lost its TTL is given a fresh one.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if count == 1 or ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

type backend interface {
	redis.Scripter
	Ping(ctx context.Context) *redis.StatusCmd
}

// Client holds the connection used for request throttling and readiness.
type Client struct {
	backend backend
	closer  func() error
}

// Window is the state of one fixed-window counter after a hit.
type Window struct {
	Allowed    bool
	Count      int64
	Remaining  int64
	ResetAfter time.Duration
}

// RateLimiter is the surface consumed by the HTTP rate limit middleware.
type RateLimiter interface {
	Hit(ctx context.Context, scope string, limit int64, window time.Duration) (Window, error)
}

// New dials redis with the configured pool and timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "redis_addr", opts.Addr), "redis connection established")
	}
	return &Client{backend: raw, closer: raw.Close}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url or address is required")
	}

	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if parsed.DB == 0 {
			parsed.DB = cfg.DB
		}
		opts = parsed
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return opts, nil
}

// Hit counts one request against scope's window and reports whether it fits
// under limit.
func (c *Client) Hit(ctx context.Context, scope string, limit int64, window time.Duration) (Window, error) {
	if c == nil || c.backend == nil {
		return Window{}, errNotInitialized
	}
	if window <= 0 {
		return Window{}, fmt.Errorf("rate limit window must be positive")
	}

	vals, err := fixedWindowScript.Run(ctx, c.backend, []string{RateLimitKey(scope)}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("rate limit %s: %w", scope, err)
	}
	if len(vals) != 2 {
		return Window{}, fmt.Errorf("rate limit %s: unexpected reply %v", scope, vals)
	}

	count, ttl := vals[0], vals[1]
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Window{
		Allowed:    count <= limit,
		Count:      count,
		Remaining:  remaining,
		ResetAfter: time.Duration(ttl) * time.Millisecond,
	}, nil
}

// RateLimitKey namespaces a rate limit scope.
func RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.backend == nil {
		return errNotInitialized
	}
	return c.backend.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

func buildKey(parts ...string) string {
	key := keyNamespace
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			key += ":" + part
		}
	}
	return key
}
