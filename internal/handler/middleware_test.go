package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/catalog-admin/internal/handler"
	"github.com/msomdec/catalog-admin/internal/service"
)

func TestRateLimit_PerClientIP(t *testing.T) {
	limiter := service.NewTokenBucket(0, 1)
	t.Cleanup(limiter.Close)
	h := handler.RateLimit(limiter, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5678"), "port does not matter")
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1234"))
}

func TestSecurityHeaders(t *testing.T) {
	h := handler.SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

type pinger struct{ err error }

func (p pinger) PingContext(ctx context.Context) error { return p.err }

func TestHandleHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	handler.HandleHealthz(pinger{})(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.HandleHealthz(pinger{err: errors.New("database is closed")})(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics_RecordsRoutePatterns(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/healthz", nil)
	env.do(t, http.MethodGet, "/api/materials/42", nil)

	resp := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `catalog_http_requests_total{method="GET",route="GET /healthz",status="200"} 1`)
	assert.Contains(t, text, `route="GET /api/materials/{id}",status="401"`)
	assert.False(t, strings.Contains(text, "/api/materials/42"), "raw paths must not become labels")
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := handler.NewMetrics(reg)
	require.NoError(t, err)

	_, err = handler.NewMetrics(reg)
	require.Error(t, err)
}
