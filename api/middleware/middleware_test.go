package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

type fakeLimiter struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiter) Hit(_ context.Context, scope string, limit int64, window time.Duration) (redis.Window, error) {
	if f.err != nil {
		return redis.Window{}, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	count := f.counts[scope]
	return redis.Window{
		Allowed:    count <= limit,
		Count:      count,
		Remaining:  max(limit-count, 0),
		ResetAfter: window / 2,
	}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitPerUser(t *testing.T) {
	limiter := &fakeLimiter{}
	handler := RateLimit(NewRateLimitPolicy("Mutations", time.Minute, 2), limiter, nil)(okHandler())

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), user, "user"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := call("a"); code != http.StatusOK {
		t.Fatalf("first call expected 200 got %d", code)
	}
	if code := call("a"); code != http.StatusOK {
		t.Fatalf("second call expected 200 got %d", code)
	}
	if code := call("a"); code != http.StatusTooManyRequests {
		t.Fatalf("third call expected 429 got %d", code)
	}
	if code := call("b"); code != http.StatusOK {
		t.Fatalf("other user should have its own window, got %d", code)
	}
	if _, ok := limiter.counts["mutations:a"]; !ok {
		t.Fatalf("expected scope keyed by policy and user, got %v", limiter.counts)
	}
}

func TestRateLimitHeaders(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("mutations", time.Minute, 1), &fakeLimiter{}, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Header().Get("X-RateLimit-Limit") != "1" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected limit headers %v", rec.Header())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After from the window reset, got %q", got)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	limiter := &fakeLimiter{}
	handler := RateLimit(NewRateLimitPolicy("mutations", time.Minute, 5), limiter, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if _, ok := limiter.counts["mutations:ip:203.0.113.9"]; !ok {
		t.Fatalf("expected ip scope, got %v", limiter.counts)
	}
}

func TestRateLimitDependencyFailure(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("mutations", time.Minute, 5), &fakeLimiter{err: errors.New("redis down")}, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestRateLimitDisabledWithoutLimiter(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("mutations", time.Minute, 1), nil, nil)(okHandler())
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected passthrough, got %d", rec.Code)
		}
	}
}

func TestRequestIDPropagates(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated id, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected minted uuid, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc def")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got == "abc def" {
		t.Fatalf("ids with spaces should be replaced")
	}
}

func TestRecovererReturnsInternalError(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := Recoverer(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic_stack") {
		t.Fatalf("expected panic stack in logs")
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))
	out := buf.String()
	if !strings.Contains(out, `"status":418`) || !strings.Contains(out, "request.complete") {
		t.Fatalf("unexpected log output %s", out)
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(Metrics(metrics.NewHTTPMetrics(reg)))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `route="/items/{id}"`) || !strings.Contains(body, `status="202"`) {
		t.Fatalf("expected route pattern label, got %s", body)
	}
}
