package processlog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	uc "github.com/kailas-cloud/shopsense/internal/usecase/processlog"
)

// mockListStore is an in-memory stand-in for the Redis list commands.
type mockListStore struct {
	lists   map[string][][]byte
	ttls    map[string]time.Duration
	pushErr error
	rangeFn func(key string, start, stop int64) ([][]byte, error)
	delErr  error
	pingErr error
}

func newMockListStore() *mockListStore {
	return &mockListStore{lists: map[string][][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockListStore) PushCapped(
	_ context.Context, key string, value []byte, capacity int64, ttl time.Duration,
) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	l := append([][]byte{value}, m.lists[key]...)
	if int64(len(l)) > capacity {
		l = l[:capacity]
	}
	m.lists[key] = l
	if ttl > 0 {
		m.ttls[key] = ttl
	}
	return nil
}

func (m *mockListStore) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.rangeFn != nil {
		return m.rangeFn(key, start, stop)
	}
	l := m.lists[key]
	if stop >= int64(len(l)) {
		stop = int64(len(l)) - 1
	}
	if start > stop {
		return nil, nil
	}
	return l[start : stop+1], nil
}

func (m *mockListStore) Del(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.lists, key)
	return nil
}

func (m *mockListStore) Ping(_ context.Context) error { return m.pingErr }

func entry(t *testing.T, step string, n int) uc.Entry {
	t.Helper()
	data, err := json.Marshal(map[string]int{"n": n})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return uc.Entry{
		Timestamp: time.Date(2026, 1, 1, 0, 0, n, 0, time.UTC),
		Step:      step,
		Data:      data,
	}
}
