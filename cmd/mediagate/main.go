package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mediagate/mediagate/internal/config"
	"github.com/mediagate/mediagate/internal/gateway"
	"github.com/mediagate/mediagate/internal/metrics"
	"github.com/mediagate/mediagate/internal/ratelimit"
	"github.com/mediagate/mediagate/internal/server"
	s3backend "github.com/mediagate/mediagate/internal/storage/s3"
	"github.com/mediagate/mediagate/internal/throttle"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "mediagate: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Global)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := s3backend.NewBackend(ctx, cfg.Storage.Bucket, &s3backend.Config{
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		ForcePathStyle:  cfg.Storage.ForcePathStyle,
		MaxRetries:      cfg.Storage.MaxRetries,
		PoolSize:        cfg.Storage.PoolSize,
	}, logger.With("component", "s3"))
	if err != nil {
		return err
	}
	defer store.Close()

	collector, err := metrics.NewCollector(&metrics.Config{
		Enabled:   cfg.Metrics.Enabled,
		Namespace: "mediagate",
	})
	if err != nil {
		return err
	}

	budget := throttle.NewBudget(cfg.DailyBudgetBytes(), cfg.Throttle.Window, logger.With("component", "throttle"))

	negCache := gateway.NewNegativeCache(cfg.Media.NegativeCacheTTL, logger.With("component", "negcache"))
	defer negCache.Close()

	resolver := gateway.NewMediaResolver(&cfg.Media)

	handler := gateway.NewHandler(store, resolver, negCache, budget, collector,
		cfg.Media.CacheMaxAge, logger.With("component", "gateway"), nil)

	limiter, counterPing, closeLimiter := buildLimiter(cfg, collector, logger)
	defer closeLimiter()

	srv := server.New(server.Options{
		Config:      &cfg.Server,
		Media:       handler,
		Limiter:     limiter,
		Collector:   collector,
		MetricsPath: cfg.Metrics.Path,
		Store:       store,
		CounterPing: counterPing,
		Logger:      logger.With("component", "server"),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildLimiter(cfg *config.Configuration, collector *metrics.Collector, logger *slog.Logger) (*ratelimit.Limiter, func(context.Context) error, func()) {
	burst := ratelimit.NewBurstLimiter(cfg.RateLimit.Burst.Limit, cfg.RateLimit.Burst.Window)

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	counter := ratelimit.NewRedisCounter(rdb)

	daily := ratelimit.NewDailyLimiter(
		counter,
		ratelimit.NewMemoryCounter(),
		ratelimit.DailyOptions{
			Key:           "mediagate:daily",
			Limit:         cfg.RateLimit.Daily.Limit,
			FallbackLimit: cfg.RateLimit.Daily.FallbackLimit,
			Window:        cfg.RateLimit.Daily.Window,
			RetryAttempts: cfg.RateLimit.Daily.RetryAttempts,
			RetryDelay:    cfg.RateLimit.Daily.RetryDelay,
		},
		logger.With("component", "ratelimit"))

	limiter := ratelimit.NewLimiter(burst, daily, cfg.RateLimit.Burst.Window,
		logger.With("component", "ratelimit"), collector.RecordRateLimitRejection)

	return limiter, counter.Ping, func() {
		burst.Close()
		_ = rdb.Close()
	}
}

func newLogger(global config.GlobalConfig) *slog.Logger {
	var level slog.Level
	switch global.LogLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	out := os.Stdout
	if global.LogFile != "" {
		if f, err := os.OpenFile(global.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			out = f
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}
