package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/catalog-backend/api/responses"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

// RateLimitPolicy defines the fixed window applied to a traffic surface.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

// NewRateLimitPolicy builds a policy with the supplied window and limit.
func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

// RateLimit throttles requests per authenticated user, falling back to the
// client IP. A nil limiter disables the middleware.
func RateLimit(policy RateLimitPolicy, limiter redis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			subject := UserIDFromContext(ctx)
			if subject == "" {
				subject = "ip:" + clientIP(r)
			}
			scope := policy.normalizedName() + ":" + subject

			win, err := limiter.Hit(ctx, scope, int64(policy.limit), policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting unavailable"))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(policy.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(win.Remaining, 10))
			if !win.Allowed {
				respondRateLimited(ctx, logg, w, policy, subject, win)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy RateLimitPolicy, subject string, win redis.Window) {
	retryAfter := int(math.Ceil(win.ResetAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = int(math.Ceil(policy.window.Seconds()))
	}
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":      policy.normalizedName(),
			"subject":     subject,
			"attempts":    win.Count,
			"limit":       policy.limit,
			"retry_after": retryAfter,
		}), "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many requests, please try again later"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
