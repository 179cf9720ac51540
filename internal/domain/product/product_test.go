package product

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopsense/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	c, err := New("p-1", Attrs{
		Title:    "Redmi Note 12 Pro 5G",
		Price:    18999,
		Rating:   Rating(4.3),
		Features: []string{"5000mAh Battery"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID() != "p-1" || c.Price() != 18999 {
		t.Errorf("unexpected candidate: %s %d", c.ID(), c.Price())
	}
	if r, ok := c.Rating(); !ok || r != 4.3 {
		t.Errorf("Rating() = %v, %v", r, ok)
	}
	if c.StructuredReviews().Len() != 0 {
		t.Error("new candidate must not carry structured reviews")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		a    Attrs
	}{
		{"missing id", "", Attrs{Title: "x", Price: 1}},
		{"missing title", "p", Attrs{Price: 1}},
		{"zero price", "p", Attrs{Title: "x"}},
		{"rating above range", "p", Attrs{Title: "x", Price: 1, Rating: Rating(5.5)}},
		{"negative rating", "p", Attrs{Title: "x", Price: 1, Rating: Rating(-1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.id, tc.a); !errors.Is(err, domain.ErrInvalidCandidate) {
				t.Errorf("expected ErrInvalidCandidate, got %v", err)
			}
		})
	}
}

func TestWithStructuredReviews_DoesNotMutateOriginal(t *testing.T) {
	orig, _ := New("p-1", Attrs{Title: "Phone", Price: 100, Features: []string{"a"}})
	m := NewSentimentMap(Sentiment{KeyBattery, "average"}, Sentiment{KeySentiment, "positive"})

	enriched := orig.WithStructuredReviews(m)

	if orig.StructuredReviews().Len() != 0 {
		t.Error("original candidate was mutated")
	}
	if enriched.ID() != orig.ID() {
		t.Errorf("identity changed: %s -> %s", orig.ID(), enriched.ID())
	}
	if got, _ := enriched.StructuredReviews().Get(KeyBattery); got != "average" {
		t.Errorf("battery = %q", got)
	}
}

func TestCandidateJSON_WireShape(t *testing.T) {
	c, _ := New("p-1", Attrs{Title: "Phone", Price: 100, Image: "img"})
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"p-1","title":"Phone","price":100,"rating":null,"features":[],"reviews":[],"image":"img"}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}

func TestCandidateUnmarshal_RejectsInvalid(t *testing.T) {
	var c Candidate
	err := json.Unmarshal([]byte(`{"id":"p","title":"x","price":0}`), &c)
	if !errors.Is(err, domain.ErrInvalidCandidate) {
		t.Fatalf("expected ErrInvalidCandidate, got %v", err)
	}
}

func TestSentimentMap_PreservesOrderThroughJSON(t *testing.T) {
	raw := `{"display":"decent","battery":"average","sentiment":"positive"}`
	var m SentimentMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	entries := m.Entries()
	if len(entries) != 3 || entries[0].Key != KeyDisplay || entries[2].Key != KeySentiment {
		t.Fatalf("unexpected order: %v", entries)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("got %s, want %s", out, raw)
	}
}

func TestSentimentMap_RepeatedKeyOverwritesInPlace(t *testing.T) {
	m := NewSentimentMap(
		Sentiment{KeyBattery, "average"},
		Sentiment{KeyCamera, "good"},
		Sentiment{KeyBattery, "excellent"},
	)
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if e := m.Entries()[0]; e.Key != KeyBattery || e.Phrase != "excellent" {
		t.Errorf("first entry = %+v", e)
	}
}
