package s3

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ConnectionPool manages a pool of S3 clients so concurrent streams do
// not share a single client's connection state.
type ConnectionPool struct {
	clients chan *s3.Client
	factory func() (*s3.Client, error)
	mu      sync.RWMutex
	closed  bool

	// Statistics
	stats PoolStats
}

// PoolStats tracks connection pool usage
type PoolStats struct {
	Gets     int64 `json:"gets"`
	Puts     int64 `json:"puts"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Discards int64 `json:"discards"`
}

// NewConnectionPool creates a pool with the given size
func NewConnectionPool(size int, factory func() (*s3.Client, error)) (*ConnectionPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	if factory == nil {
		return nil, fmt.Errorf("factory cannot be nil")
	}

	pool := &ConnectionPool{
		clients: make(chan *s3.Client, size),
		factory: factory,
	}

	// Pre-populate the pool
	for i := 0; i < size; i++ {
		client, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create initial client %d: %w", i, err)
		}
		pool.clients <- client
	}

	return pool, nil
}

// Get retrieves a client from the pool, creating a new one if the pool
// is empty. Returns nil only if the pool is closed or the factory fails.
func (p *ConnectionPool) Get() *s3.Client {
	p.mu.Lock()
	p.stats.Gets++
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return nil
	}

	select {
	case client := <-p.clients:
		p.mu.Lock()
		p.stats.Hits++
		p.mu.Unlock()
		return client
	default:
		p.mu.Lock()
		p.stats.Misses++
		p.mu.Unlock()

		client, err := p.factory()
		if err != nil {
			return nil
		}
		return client
	}
}

// Put returns a client to the pool, discarding it if the pool is full
// or closed.
func (p *ConnectionPool) Put(client *s3.Client) {
	if client == nil {
		return
	}

	p.mu.Lock()
	p.stats.Puts++
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return
	}

	select {
	case p.clients <- client:
	default:
		p.mu.Lock()
		p.stats.Discards++
		p.mu.Unlock()
	}
}

// Stats returns a copy of the pool statistics
func (p *ConnectionPool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// Close drains the pool and prevents further use
func (p *ConnectionPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	close(p.clients)
	for range p.clients {
	}

	return nil
}
