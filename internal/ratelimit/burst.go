package ratelimit

import (
	"sync"
	"time"
)

// BurstLimiter enforces a hard per-client request ceiling over a fixed
// window, entirely in memory. Each client key gets a windowed counter:
// the window starts at the client's first request and the count dies
// with it, so no more than limit requests are ever admitted inside one
// window regardless of pacing. Idle counters are evicted by a janitor
// so the map does not grow without bound.
type BurstLimiter struct {
	mu      sync.Mutex
	clients map[string]*burstWindow
	limit   int64
	window  time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

type burstWindow struct {
	count   int64
	expires time.Time
}

// NewBurstLimiter creates a limiter allowing limit requests per window
// for each client key.
func NewBurstLimiter(limit int, window time.Duration) *BurstLimiter {
	l := &BurstLimiter{
		clients: make(map[string]*burstWindow),
		limit:   int64(limit),
		window:  window,
		stopCh:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.janitor()

	return l
}

// Allow reports whether the client identified by key may proceed.
func (l *BurstLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[key]
	if !ok || now.After(w.expires) {
		w = &burstWindow{expires: now.Add(l.window)}
		l.clients[key] = w
	}

	w.count++
	return w.count <= l.limit
}

// Clients returns the number of tracked client counters.
func (l *BurstLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Close stops the janitor goroutine.
func (l *BurstLimiter) Close() {
	close(l.stopCh)
	l.wg.Wait()
}

func (l *BurstLimiter) janitor() {
	defer l.wg.Done()

	interval := l.window
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for key, w := range l.clients {
				if now.After(w.expires) {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}
