package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mediagate/mediagate/pkg/types"
)

// NegativeCache remembers object keys that were recently confirmed
// missing upstream, so repeated lookups for the same key can be
// answered without touching the store.
type NegativeCache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
	logger  *slog.Logger

	hits    int64
	misses  int64
	expired int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewNegativeCache creates a negative lookup cache with the given TTL
// and starts a background janitor that evicts expired entries.
func NewNegativeCache(ttl time.Duration, logger *slog.Logger) *NegativeCache {
	if logger == nil {
		logger = slog.Default()
	}

	c := &NegativeCache{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	c.wg.Add(1)
	go c.janitor()

	return c
}

// Record marks a key as known-missing. Recording a key already present
// resets its expiry rather than stacking a second entry.
func (c *NegativeCache) Record(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = time.Now().Add(c.ttl)
}

// Contains reports whether the key is cached as missing. Expired
// entries are removed on access and count as misses.
func (c *NegativeCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.entries[key]
	if !ok {
		c.misses++
		return false
	}
	if time.Now().After(expiry) {
		delete(c.entries, key)
		c.expired++
		c.misses++
		return false
	}

	c.hits++
	return true
}

// Forget removes a key, if present.
func (c *NegativeCache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats returns a snapshot of cache counters.
func (c *NegativeCache) Stats() types.NegativeCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return types.NegativeCacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: int64(len(c.entries)),
		Expired: c.expired,
	}
}

// Close stops the janitor goroutine.
func (c *NegativeCache) Close() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *NegativeCache) janitor() {
	defer c.wg.Done()

	interval := c.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *NegativeCache) evictExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, expiry := range c.entries {
		if now.After(expiry) {
			delete(c.entries, key)
			c.expired++
		}
	}
}
