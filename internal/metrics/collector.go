package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the gateway's Prometheus metrics and exposes them on
// its own registry.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	// Prometheus metrics
	requestCounter   *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	bytesStreamed    prometheus.Counter
	throttleDenials  prometheus.Counter
	rateLimitCounter *prometheus.CounterVec
	negCacheCounter  *prometheus.CounterVec
	budgetRemaining  prometheus.Gauge
	activeStreams    prometheus.Gauge
}

// Config represents metrics configuration
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// NewCollector creates a collector with all gateway metrics registered.
func NewCollector(config *Config) (*Collector, error) {
	if config == nil {
		config = &Config{Enabled: true, Namespace: "mediagate"}
	}
	if !config.Enabled {
		return &Collector{}, nil
	}

	ns := config.Namespace
	if ns == "" {
		ns = "mediagate"
	}

	c := &Collector{
		enabled:  true,
		registry: prometheus.NewRegistry(),

		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "requests_total",
			Help:      "Requests handled, labeled by outcome",
		}, []string{"outcome"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "request_duration_seconds",
			Help:      "Time from request receipt to response completion",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),

		bytesStreamed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "bytes_streamed_total",
			Help:      "Bytes delivered to clients",
		}),

		throttleDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "throttle_denials_total",
			Help:      "Chunks denied by the shared byte budget",
		}),

		rateLimitCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "ratelimit_rejections_total",
			Help:      "Requests rejected by rate limiting, labeled by tier",
		}, []string{"tier", "degraded"}),

		negCacheCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "negative_cache_lookups_total",
			Help:      "Negative cache lookups, labeled by result",
		}, []string{"result"}),

		budgetRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "byte_budget_remaining",
			Help:      "Bytes left in the current budget window",
		}),

		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "active_streams",
			Help:      "Streams currently in flight",
		}),
	}

	collectors := []prometheus.Collector{
		c.requestCounter,
		c.requestDuration,
		c.bytesStreamed,
		c.throttleDenials,
		c.rateLimitCounter,
		c.negCacheCounter,
		c.budgetRemaining,
		c.activeStreams,
	}
	for _, col := range collectors {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return c, nil
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	if !c.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordRequest records a completed request with its outcome and duration.
func (c *Collector) RecordRequest(outcome string, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.requestCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
	c.requestDuration.With(prometheus.Labels{"outcome": outcome}).Observe(duration.Seconds())
}

// RecordBytesStreamed adds delivered bytes to the streaming counter.
func (c *Collector) RecordBytesStreamed(n int64) {
	if !c.enabled || n <= 0 {
		return
	}
	c.bytesStreamed.Add(float64(n))
}

// RecordThrottleDenial counts a chunk denied by the byte budget.
func (c *Collector) RecordThrottleDenial() {
	if !c.enabled {
		return
	}
	c.throttleDenials.Inc()
}

// RecordRateLimitRejection counts a request rejected by a rate limit tier.
func (c *Collector) RecordRateLimitRejection(tier string, degraded bool) {
	if !c.enabled {
		return
	}
	c.rateLimitCounter.With(prometheus.Labels{
		"tier":     tier,
		"degraded": map[bool]string{true: "true", false: "false"}[degraded],
	}).Inc()
}

// RecordNegCacheLookup counts a negative cache lookup result.
func (c *Collector) RecordNegCacheLookup(hit bool) {
	if !c.enabled {
		return
	}
	c.negCacheCounter.With(prometheus.Labels{
		"result": map[bool]string{true: "hit", false: "miss"}[hit],
	}).Inc()
}

// UpdateBudgetRemaining updates the budget gauge.
func (c *Collector) UpdateBudgetRemaining(remaining int64) {
	if !c.enabled {
		return
	}
	c.budgetRemaining.Set(float64(remaining))
}

// StreamStarted increments the in-flight stream gauge.
func (c *Collector) StreamStarted() {
	if !c.enabled {
		return
	}
	c.activeStreams.Inc()
}

// StreamFinished decrements the in-flight stream gauge.
func (c *Collector) StreamFinished() {
	if !c.enabled {
		return
	}
	c.activeStreams.Dec()
}
