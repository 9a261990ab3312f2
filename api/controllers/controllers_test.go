package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/internal/store/storetest"
	"github.com/angelmondragon/catalog-backend/internal/wishlist"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

func withParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, testLogger(), map[string]Pinger{
		"database": stubPinger{},
		"redis":    stubPinger{err: errors.New("connection refused")},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "DEPENDENCY_ERROR", apiErr.Code)
	details, ok := apiErr.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "redis")
}

func TestHealthReadySkipsUnconfiguredDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, nil, map[string]Pinger{"database": stubPinger{}, "redis": nil})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCategoryGetMalformedIDIsNotFound(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceParams{Store: storetest.New(t)})
	require.NoError(t, err)

	req := withParam(httptest.NewRequest(http.MethodGet, "/api/categories/xyz", nil), "id", "xyz")
	rec := httptest.NewRecorder()
	CategoryGet(svc, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "Category not found", apiErr.Message)
	assert.Equal(t, map[string]any{"entity": "category"}, apiErr.Details)
}

func TestSubCategoryListByMalformedCategoryIsEmpty(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceParams{Store: storetest.New(t)})
	require.NoError(t, err)

	req := withParam(httptest.NewRequest(http.MethodGet, "/api/categories/sub/xyz", nil), "categoryId", "xyz")
	rec := httptest.NewRecorder()
	SubCategoryListByCategory(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestWishlistRequiresUser(t *testing.T) {
	s := storetest.New(t)
	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Store: s})
	require.NoError(t, err)
	svc, err := wishlist.NewService(wishlist.ServiceParams{Store: s, Products: catalogSvc})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	WishlistGet(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wishlist", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), "user-1", "user"))
	rec = httptest.NewRecorder()
	WishlistGet(svc, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"products":[]}}`, rec.Body.String())

	req = withParam(httptest.NewRequest(http.MethodDelete, "/api/wishlist/abc", nil), "productId", "abc")
	req = req.WithContext(middleware.WithIdentity(req.Context(), "user-1", "user"))
	rec = httptest.NewRecorder()
	WishlistRemoveItem(svc, testLogger()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Wishlist not found", decodeError(t, rec).Message)
}

func TestRootBanner(t *testing.T) {
	rec := httptest.NewRecorder()
	Root().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Product Management API is running", rec.Body.String())
}
