package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediagate/mediagate/internal/config"
	"github.com/mediagate/mediagate/internal/metrics"
	"github.com/mediagate/mediagate/pkg/types"
)

type stubStore struct {
	healthErr error
}

func (s *stubStore) Fetch(context.Context, string, *types.ByteRange) (*types.Object, error) {
	return nil, errors.New("not implemented")
}

func (s *stubStore) HealthCheck(context.Context) error { return s.healthErr }

func newTestServer(t *testing.T, store types.ObjectStore) *Server {
	t.Helper()

	collector, err := metrics.NewCollector(&metrics.Config{Enabled: true, Namespace: "mediagate"})
	require.NoError(t, err)

	cfg := config.NewDefault()
	return New(Options{
		Config:    &cfg.Server,
		Media:     http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		Collector: collector,
		Store:     store,
		Logger:    slog.Default(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpointUnavailable(t *testing.T) {
	srv := newTestServer(t, &stubStore{healthErr: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthEndpointDegraded(t *testing.T) {
	collector, err := metrics.NewCollector(&metrics.Config{Enabled: false})
	require.NoError(t, err)

	cfg := config.NewDefault()
	srv := New(Options{
		Config:      &cfg.Server,
		Media:       http.NotFoundHandler(),
		Collector:   collector,
		Store:       &stubStore{},
		CounterPing: func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	// A down rate-limit store degrades but does not fail health
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDAssigned(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clip.mp4", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDPreserved(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/clip.mp4", nil)
	req.Header.Set("X-Request-ID", "client-supplied")

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied", rec.Header().Get("X-Request-ID"))
}
