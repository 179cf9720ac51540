package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListStore provides capped list operations.
type ListStore interface {
	// PushCapped prepends value, trims the list to the newest capacity items
	// and refreshes its TTL in one round-trip. A zero ttl leaves expiry untouched.
	PushCapped(ctx context.Context, key string, value []byte, capacity int64, ttl time.Duration) error
	// LRange returns items between start and stop inclusive, newest first.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	Del(ctx context.Context, key string) error
}
