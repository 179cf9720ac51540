package processlog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
)

// --- Mocks ---

type mockSink struct {
	entries   []Entry
	appendErr error
	listErr   error
	clearErr  error
}

func (m *mockSink) Append(_ context.Context, e Entry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockSink) List(_ context.Context) ([]Entry, error) {
	return m.entries, m.listErr
}

func (m *mockSink) Clear(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.entries = nil
	return nil
}

func mustCandidate(t *testing.T, id, title string, price int, features ...string) product.Candidate {
	t.Helper()
	c, err := product.New(id, product.Attrs{Title: title, Price: price, Features: features})
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	return c
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return out
}

// --- Tests ---

func TestRecord_AppendsSummary(t *testing.T) {
	sink := &mockSink{}
	svc := New(sink)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	svc.Record(context.Background(), "Received user query", Fields{"query": "phone under 20000"})

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	if e.Step != "Received user query" {
		t.Errorf("unexpected step %q", e.Step)
	}
	if !e.Timestamp.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", e.Timestamp)
	}
	if got := decode(t, e.Data)["query"]; got != "phone under 20000" {
		t.Errorf("unexpected data %v", got)
	}
}

func TestRecord_SinkErrorIsSwallowed(t *testing.T) {
	svc := New(&mockSink{appendErr: errors.New("redis down")})
	svc.Record(context.Background(), "step", nil)
}

func TestListAndClear_WrapErrors(t *testing.T) {
	svc := New(&mockSink{listErr: errors.New("boom"), clearErr: errors.New("boom")})
	if _, err := svc.List(context.Background()); err == nil {
		t.Error("expected list error")
	}
	if err := svc.Clear(context.Background()); err == nil {
		t.Error("expected clear error")
	}
}

func TestSummarize_CandidateList(t *testing.T) {
	list := []product.Candidate{
		mustCandidate(t, "p1", "Samsung Galaxy M34 5G (Midnight Blue, 128 GB)", 19499, "a", "b"),
		mustCandidate(t, "p2", "Short", 100),
	}

	raw, err := json.Marshal(Summarize(list))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := decode(t, raw)
	if got["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", got["count"])
	}
	sample, ok := got["sample"].(map[string]any)
	if !ok {
		t.Fatalf("expected sample object, got %v", got["sample"])
	}
	if sample["id"] != "p1" || sample["price"] != float64(19499) || sample["features_count"] != float64(2) {
		t.Errorf("unexpected sample %v", sample)
	}
	if sample["title"] != "Samsung Galaxy M34 5G (Midnigh..." {
		t.Errorf("unexpected title %q", sample["title"])
	}
}

func TestSummarize_EmptyList(t *testing.T) {
	raw, _ := json.Marshal(Summarize([]product.Candidate{}))
	if string(raw) != `{"count":0,"sample":null}` {
		t.Errorf("unexpected summary %s", raw)
	}
}

func TestSummarize_Result(t *testing.T) {
	text := strings.Repeat("x", 150)
	raw, _ := json.Marshal(Summarize(recommendation.New(text, []string{"a", "b"})))
	got := decode(t, raw)

	preview, _ := got["recommendationPreview"].(string)
	if len(preview) != 103 || !strings.HasSuffix(preview, "...") {
		t.Errorf("expected 100 chars plus ellipsis, got %d chars", len(preview))
	}
	picks, _ := got["topPicks"].([]any)
	if len(picks) != 2 {
		t.Errorf("expected 2 top picks, got %v", got["topPicks"])
	}
}

func TestSummarize_QueryPassesThrough(t *testing.T) {
	raw, _ := json.Marshal(Summarize(query.Default()))
	got := decode(t, raw)
	if got["category"] != "smartphone" || got["budget"] != float64(20000) {
		t.Errorf("unexpected query summary %v", got)
	}
}

func TestSummarize_Fields(t *testing.T) {
	got := Summarize(Fields{
		"productId":   "p1",
		"reviewCount": 4,
		"long":        strings.Repeat("y", 60),
		"list":        []string{"a", "b", "c"},
		"nested":      map[string]int{"a": 1},
	}).(map[string]any)

	if got["productId"] != "p1" || got["reviewCount"] != 4 {
		t.Errorf("scalars should pass through, got %v", got)
	}
	if s, _ := got["long"].(string); len(s) != 53 {
		t.Errorf("expected truncated string, got %q", got["long"])
	}
	if got["list"] != "Array(3)" {
		t.Errorf("expected Array(3), got %v", got["list"])
	}
	if got["nested"] != "Object" {
		t.Errorf("expected Object, got %v", got["nested"])
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	s := strings.Repeat("₹", 40)
	got := truncate(s, 30)
	if got != strings.Repeat("₹", 30)+"..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if truncate("short", 30) != "short" {
		t.Error("short strings must be kept")
	}
}
