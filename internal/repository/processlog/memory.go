package processlog

import (
	"context"
	"slices"
	"sync"

	uc "github.com/kailas-cloud/shopsense/internal/usecase/processlog"
)

// MemorySink keeps the most recent entries in process memory.
type MemorySink struct {
	mu       sync.Mutex
	capacity int
	entries  []uc.Entry
}

// NewMemorySink creates an in-memory sink retaining capacity entries.
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = uc.DefaultCapacity
	}
	return &MemorySink{capacity: capacity}
}

// Append adds e, evicting the oldest entry when full.
func (s *MemorySink) Append(_ context.Context, e uc.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = slices.Delete(s.entries, 0, over)
	}
	return nil
}

// List returns a copy of the retained entries, oldest first.
func (s *MemorySink) List(_ context.Context) ([]uc.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries), nil
}

// Clear drops all entries.
func (s *MemorySink) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// Ping always succeeds.
func (s *MemorySink) Ping(_ context.Context) error { return nil }
