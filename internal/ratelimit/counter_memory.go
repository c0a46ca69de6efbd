package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounter is a windowed counter kept in process memory. It backs
// the reduced-allowance fallback tier when the durable store is
// unreachable, so counts survive only as long as the process does.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*counterWindow
}

type counterWindow struct {
	count   int64
	expires time.Time
}

// NewMemoryCounter creates an empty in-memory counter store.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*counterWindow)}
}

// Increment adds amount to the counter at key and returns the new
// value. The window starts at the first increment and the count resets
// once windowSeconds have elapsed.
func (c *MemoryCounter) Increment(_ context.Context, key string, amount, windowSeconds int64) (int64, error) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.windows[key]
	if !ok || now.After(w.expires) {
		w = &counterWindow{expires: now.Add(time.Duration(windowSeconds) * time.Second)}
		c.windows[key] = w
	}

	w.count += amount
	return w.count, nil
}
