package processlog

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	uc "github.com/kailas-cloud/shopsense/internal/usecase/processlog"
)

// DefaultKey is the Redis list holding process-log entries.
const DefaultKey = "shopsense:process_log"

// listStore is the consumer interface for the Redis sink (ISP).
type listStore interface {
	PushCapped(ctx context.Context, key string, value []byte, capacity int64, ttl time.Duration) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// RedisSink stores entries as JSON in a capped Redis list, newest at the head.
type RedisSink struct {
	store    listStore
	key      string
	capacity int64
	ttl      time.Duration
}

// NewRedisSink creates a Redis-backed sink. A zero ttl keeps entries until evicted.
func NewRedisSink(s listStore, key string, capacity int, ttl time.Duration) *RedisSink {
	if key == "" {
		key = DefaultKey
	}
	if capacity <= 0 {
		capacity = uc.DefaultCapacity
	}
	return &RedisSink{store: s, key: key, capacity: int64(capacity), ttl: ttl}
}

// Append pushes e and trims the list to capacity.
func (s *RedisSink) Append(ctx context.Context, e uc.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := s.store.PushCapped(ctx, s.key, data, s.capacity, s.ttl); err != nil {
		return fmt.Errorf("push entry: %w", err)
	}
	return nil
}

// List returns retained entries, oldest first. Undecodable items are skipped.
func (s *RedisSink) List(ctx context.Context) ([]uc.Entry, error) {
	items, err := s.store.LRange(ctx, s.key, 0, s.capacity-1)
	if err != nil {
		return nil, fmt.Errorf("range entries: %w", err)
	}

	out := make([]uc.Entry, 0, len(items))
	for _, raw := range items {
		var e uc.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	slices.Reverse(out)
	return out, nil
}

// Clear deletes the list.
func (s *RedisSink) Clear(ctx context.Context) error {
	if err := s.store.Del(ctx, s.key); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

// Ping checks the backing store.
func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping process log store: %w", err)
	}
	return nil
}
