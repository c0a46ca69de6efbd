// Package retry provides bounded retry with exponential backoff for
// gateway operations against external stores.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mediagate/mediagate/pkg/gateerrors"
)

// Config defines retry behavior
type Config struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay caps the delay between retries
	MaxDelay time.Duration `yaml:"max_delay"`

	// Multiplier grows the delay after each retry
	Multiplier float64 `yaml:"multiplier"`

	// Jitter randomizes delays to avoid thundering herd
	Jitter bool `yaml:"jitter"`

	// RetryableCodes lists the error codes worth retrying. Empty means
	// every error is retried.
	RetryableCodes []gateerrors.ErrorCode `yaml:"retryable_codes"`

	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`
}

// DefaultConfig returns the retry settings used against the counter store
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		RetryableCodes: []gateerrors.ErrorCode{
			gateerrors.ErrCodeStoreUnavailable,
		},
	}
}

// Retryer executes operations with bounded retry
type Retryer struct {
	config Config
}

// New creates a Retryer, filling zero config values with defaults
func New(config Config) *Retryer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	return &Retryer{config: config}
}

// DoWithContext runs fn until it succeeds, exhausts the attempt budget,
// or returns an error that is not retryable. The context aborts waits
// between attempts.
func (r *Retryer) DoWithContext(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation canceled: %w", ctx.Err())
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.retryable(err) {
			return err
		}

		if attempt < r.config.MaxAttempts {
			delay := r.delay(attempt)
			if r.config.OnRetry != nil {
				r.config.OnRetry(attempt, err, delay)
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("operation canceled during backoff: %w", ctx.Err())
			}
		}
	}

	return lastErr
}

// Do runs fn with a background context.
func (r *Retryer) Do(fn func() error) error {
	return r.DoWithContext(context.Background(), func(context.Context) error {
		return fn()
	})
}

func (r *Retryer) retryable(err error) bool {
	if len(r.config.RetryableCodes) == 0 {
		return true
	}
	code := gateerrors.CodeOf(err)
	for _, c := range r.config.RetryableCodes {
		if c == code {
			return true
		}
	}
	return false
}

func (r *Retryer) delay(attempt int) time.Duration {
	d := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if d > float64(r.config.MaxDelay) {
		d = float64(r.config.MaxDelay)
	}
	if r.config.Jitter {
		d = d/2 + rand.Float64()*d/2
	}
	return time.Duration(d)
}
