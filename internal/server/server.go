package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mediagate/mediagate/internal/config"
	"github.com/mediagate/mediagate/internal/metrics"
	"github.com/mediagate/mediagate/internal/ratelimit"
	"github.com/mediagate/mediagate/pkg/types"
)

// Server is the gateway's HTTP front. It mounts the media handler
// behind the rate limit tiers, plus the health and metrics endpoints
// which bypass them.
type Server struct {
	httpServer  *http.Server
	store       types.ObjectStore
	counterPing func(context.Context) error
	logger      *slog.Logger
}

// Options carries the collaborators the server wires together.
type Options struct {
	Config      *config.ServerConfig
	Media       http.Handler
	Limiter     *ratelimit.Limiter
	Collector   *metrics.Collector
	MetricsPath string
	Store       types.ObjectStore

	// CounterPing, if set, checks the durable rate-limit store. Its
	// failure degrades the health report but does not fail it: the
	// daily tier fails open by design.
	CounterPing func(context.Context) error

	Logger *slog.Logger
}

// New assembles the router and returns an unstarted server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:       opts.Store,
		counterPing: opts.CounterPing,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(logger))
	r.Use(chimiddleware.Recoverer)

	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, metricsPath, opts.Collector.Handler())

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		r.Handle("/{filename}", opts.Media)
	})

	s.httpServer = &http.Server{
		Addr:              opts.Config.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: opts.Config.ReadHeaderTimeout,
		IdleTimeout:       opts.Config.IdleTimeout,
		// No WriteTimeout: long media streams must not be cut by the
		// server while the byte budget still allows them.
	}

	return s
}

// ListenAndServe blocks serving requests until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "upstream unavailable")
		return
	}

	if s.counterPing != nil {
		if err := s.counterPing(ctx); err != nil {
			s.logger.Warn("rate-limit store unreachable", "error", err)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "degraded: rate-limit store unreachable")
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
