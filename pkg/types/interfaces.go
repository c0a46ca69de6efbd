package types

import (
	"context"
)

// ObjectStore defines the interface the gateway consumes from the object
// store collaborator. Implementations classify "object absent" with
// gateerrors.ErrCodeObjectNotFound so the handler can cache the miss.
type ObjectStore interface {
	// Fetch retrieves an object, or part of it when rng is non-nil.
	Fetch(ctx context.Context, key string, rng *ByteRange) (*Object, error)

	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error
}

// CounterStore defines the durable windowed counter used by the daily
// rate-limit tier. Increment adds amount to the counter identified by key,
// starting a fresh window of windowSeconds on first touch, and returns the
// new running total for the current window.
type CounterStore interface {
	Increment(ctx context.Context, key string, amount int64, windowSeconds int64) (int64, error)
}
