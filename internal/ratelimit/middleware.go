package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Limiter combines the two tiers into one admission decision. Requests
// must clear the per-client burst cap first, then the global daily
// allowance.
type Limiter struct {
	burst  *BurstLimiter
	daily  *DailyLimiter
	window time.Duration
	logger *slog.Logger

	onReject func(tier string, degraded bool)
}

// NewLimiter combines the burst and daily tiers. onReject, if non-nil,
// is called with the rejecting tier name for metrics.
func NewLimiter(burst *BurstLimiter, daily *DailyLimiter, burstWindow time.Duration, logger *slog.Logger, onReject func(tier string, degraded bool)) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		burst:    burst,
		daily:    daily,
		window:   burstWindow,
		logger:   logger,
		onReject: onReject,
	}
}

// Middleware wraps an HTTP handler with both rate limit tiers. Either
// tier rejecting yields 429 with a Retry-After hint.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientKey := ClientKey(r)

		if !l.burst.Allow(clientKey) {
			l.logger.Info("burst limit exceeded", "client", clientKey, "path", r.URL.Path)
			if l.onReject != nil {
				l.onReject("burst", false)
			}
			l.reject(w, l.window)
			return
		}

		allowed, degraded := l.daily.Allow(r.Context())
		if !allowed {
			l.logger.Info("daily allowance exceeded",
				"client", clientKey,
				"path", r.URL.Path,
				"degraded", degraded)
			if l.onReject != nil {
				l.onReject("daily", degraded)
			}
			l.reject(w, time.Hour)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) reject(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
}

// ClientKey derives the per-client identity from the request. The
// remote address is used with its port stripped; X-Forwarded-For is
// deliberately not trusted.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
