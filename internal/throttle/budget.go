package throttle

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mediagate/mediagate/pkg/gateerrors"
)

// Budget is a shared byte budget replenished on a rolling window. All
// streams draw from the same pool; once the window's bytes are spent,
// further consumption fails until the window rolls over. Spent bytes
// are never refunded.
type Budget struct {
	mu          sync.Mutex
	capacity    int64
	remaining   int64
	window      time.Duration
	windowStart time.Time
	logger      *slog.Logger

	consumed int64
	denials  int64
}

// NewBudget creates a byte budget of the given capacity per window.
func NewBudget(capacity int64, window time.Duration, logger *slog.Logger) *Budget {
	if logger == nil {
		logger = slog.Default()
	}

	return &Budget{
		capacity:    capacity,
		remaining:   capacity,
		window:      window,
		windowStart: time.Now(),
		logger:      logger,
	}
}

// Consume withdraws n bytes from the budget. It either grants the full
// amount or nothing; a partial chunk is never forwarded.
func (b *Budget) Consume(n int64) error {
	if n <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollWindow()

	if b.remaining < n {
		b.denials++
		b.logger.Warn("byte budget exhausted",
			"requested", n,
			"remaining", b.remaining,
			"window_resets", b.windowStart.Add(b.window))
		return gateerrors.New(gateerrors.ErrCodeQuotaExhausted, "daily byte budget exhausted").
			WithComponent("throttle").WithOperation("Consume")
	}

	b.remaining -= n
	b.consumed += n
	return nil
}

// Remaining reports the bytes still available in the current window.
func (b *Budget) Remaining() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollWindow()
	return b.remaining
}

// Stats returns total consumed bytes and denial count since start.
func (b *Budget) Stats() (consumed, denials int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consumed, b.denials
}

// rollWindow resets the budget when the current window has elapsed.
// Caller must hold the mutex.
func (b *Budget) rollWindow() {
	if time.Since(b.windowStart) < b.window {
		return
	}

	b.remaining = b.capacity
	b.windowStart = time.Now()
	b.logger.Info("byte budget window reset", "capacity", b.capacity)
}
