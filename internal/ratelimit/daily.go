package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/mediagate/mediagate/pkg/retry"
	"github.com/mediagate/mediagate/pkg/types"
)

// DailyLimiter enforces the long-window global allowance against a
// durable counter store. When the store cannot be reached it fails open
// onto an in-memory counter with a reduced allowance rather than
// refusing traffic. The durable store is retried on every evaluation;
// there is no sticky "down" state.
type DailyLimiter struct {
	primary  types.CounterStore
	fallback types.CounterStore
	retryer  *retry.Retryer

	key           string
	limit         int64
	fallbackLimit int64
	window        time.Duration
	logger        *slog.Logger
}

// DailyOptions configures a DailyLimiter.
type DailyOptions struct {
	Key           string
	Limit         int64
	FallbackLimit int64
	Window        time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// NewDailyLimiter creates the long-window limiter. primary is the
// durable store; fallback holds the reduced in-memory allowance.
func NewDailyLimiter(primary, fallback types.CounterStore, opts DailyOptions, logger *slog.Logger) *DailyLimiter {
	if logger == nil {
		logger = slog.Default()
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.RetryableCodes = nil // any store failure is worth retrying
	if opts.RetryAttempts > 0 {
		retryCfg.MaxAttempts = opts.RetryAttempts
	}
	if opts.RetryDelay > 0 {
		retryCfg.InitialDelay = opts.RetryDelay
	}

	return &DailyLimiter{
		primary:       primary,
		fallback:      fallback,
		retryer:       retry.New(retryCfg),
		key:           opts.Key,
		limit:         opts.Limit,
		fallbackLimit: opts.FallbackLimit,
		window:        opts.Window,
		logger:        logger,
	}
}

// Allow consumes one unit of the daily allowance and reports whether
// the request may proceed. degraded reports whether the decision came
// from the fallback tier.
func (l *DailyLimiter) Allow(ctx context.Context) (allowed, degraded bool) {
	windowSeconds := int64(l.window.Seconds())

	var count int64
	err := l.retryer.DoWithContext(ctx, func(ctx context.Context) error {
		var incErr error
		count, incErr = l.primary.Increment(ctx, l.key, 1, windowSeconds)
		return incErr
	})
	if err == nil {
		return count <= l.limit, false
	}

	l.logger.Warn("durable counter unavailable, using fallback allowance", "error", err)
	return l.allowFallback(ctx, windowSeconds), true
}

func (l *DailyLimiter) allowFallback(ctx context.Context, windowSeconds int64) bool {
	count, err := l.fallback.Increment(ctx, l.key, 1, windowSeconds)
	if err != nil {
		// The in-memory store cannot realistically fail; deny if it does.
		l.logger.Error("fallback counter failed", "error", err)
		return false
	}
	return count <= l.fallbackLimit
}
