package structure

import (
	"context"
	"testing"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
)

func candidate(t *testing.T, title string, features ...string) product.Candidate {
	t.Helper()
	c, err := product.New("p-1", product.Attrs{
		Title:    title,
		Price:    10000,
		Features: features,
		Reviews:  []string{"Battery is terrible", "Camera is excellent"},
	})
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	return c
}

func phrase(t *testing.T, m product.SentimentMap, key string) string {
	t.Helper()
	p, ok := m.Get(key)
	if !ok {
		t.Fatalf("key %q missing from %v", key, m.Entries())
	}
	return p
}

func TestStructure_SnapdragonHighMegapixelScenario(t *testing.T) {
	c := candidate(t, "OnePlus Nord with Snapdragon 695", "108MP Main Camera", "5000mAh Battery")
	m := New().Structure(context.Background(), c)

	if got := phrase(t, m, product.KeyPerformance); got != PerformanceBest {
		t.Errorf("performance = %q, want %q", got, PerformanceBest)
	}
	if got := phrase(t, m, product.KeyCamera); got != CameraBest {
		t.Errorf("camera = %q, want %q", got, CameraBest)
	}
	if got := phrase(t, m, product.KeySentiment); got != SentimentVeryPositive {
		t.Errorf("sentiment = %q, want %q", got, SentimentVeryPositive)
	}
}

func TestStructure_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		features []string
		key      string
		want     string
	}{
		{"battery brand family", "Redmi Note 12", nil, product.KeyBattery, BatteryBest},
		{"battery realme", "realme narzo", nil, product.KeyBattery, BatteryBest},
		{"battery samsung", "Samsung Galaxy M34", nil, product.KeyBattery, BatteryGood},
		{"battery unknown", "Nokia G21", nil, product.KeyBattery, Average},
		{"camera 48mp", "x", []string{"48 MP Dual Camera"}, product.KeyCamera, CameraBest},
		{"camera 12mp", "x", []string{"12MP Triple Camera with OIS"}, product.KeyCamera, CameraGood},
		{"camera none", "x", []string{"5000mAh Battery"}, product.KeyCamera, Average},
		{"performance ram", "x", []string{"8GB RAM, 128GB Storage"}, product.KeyPerformance, PerformanceBest},
		{"performance laptop title", "HP Pavilion (i5, 16GB RAM)", nil, product.KeyPerformance, PerformanceBest},
		{"performance mid chip", "x", []string{"MediaTek Helio G96"}, product.KeyPerformance, PerformanceGood},
		{"performance small ram", "x", []string{"4GB RAM, 64GB Storage"}, product.KeyPerformance, PerformanceGood},
		{"performance none", "x", []string{"Bluetooth 5.3"}, product.KeyPerformance, Average},
		{"display amoled", "x", []string{`6.4" Dynamic AMOLED Display`}, product.KeyDisplay, DisplayBest},
		{"display lcd", "x", []string{`6.72" 120Hz LCD Display`}, product.KeyDisplay, DisplayGood},
		{"display none", "x", nil, product.KeyDisplay, Average},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New().Structure(context.Background(), candidate(t, tc.title, tc.features...))
			if got := phrase(t, m, tc.key); got != tc.want {
				t.Errorf("%s = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestStructure_OverallSentiment(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		features []string
		want     string
	}{
		{"all average is mixed", "Generic Gadget", nil, SentimentMixed},
		{"any excellent is very positive", "Redmi Gadget", nil, SentimentVeryPositive},
		{"good without excellent is positive", "Samsung Gadget", []string{"12MP Camera"}, SentimentPositive},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New().Structure(context.Background(), candidate(t, tc.title, tc.features...))
			if got := phrase(t, m, product.KeySentiment); got != tc.want {
				t.Errorf("sentiment = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStructure_KeyOrder(t *testing.T) {
	m := New().Structure(context.Background(), candidate(t, "x"))
	want := []string{
		product.KeyBattery, product.KeyCamera, product.KeyPerformance, product.KeyDisplay, product.KeySentiment,
	}
	entries := m.Entries()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, k := range want {
		if entries[i].Key != k {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Key, k)
		}
	}
}

func TestStructure_Pure(t *testing.T) {
	svc := New()
	c := candidate(t, "Samsung Galaxy S21 FE", "12MP Triple Camera", "Exynos 2100 Processor")
	first := svc.Structure(context.Background(), c)
	second := svc.Structure(context.Background(), c)
	if !first.Equal(second) {
		t.Errorf("results differ: %v vs %v", first.Entries(), second.Entries())
	}
}

func TestStructure_IgnoresReviewText(t *testing.T) {
	a := candidate(t, "Nokia G21")
	b, _ := product.New("p-1", product.Attrs{Title: "Nokia G21", Price: 10000, Reviews: []string{"excellent!"}})
	svc := New()
	if !svc.Structure(context.Background(), a).Equal(svc.Structure(context.Background(), b)) {
		t.Error("review text influenced structuring")
	}
}

func TestStructure_ZeroCandidateDoesNotPanic(t *testing.T) {
	m := New().Structure(context.Background(), product.Candidate{})
	if m.Len() != 5 {
		t.Errorf("expected 5 entries, got %d", m.Len())
	}
}

func TestEnrich_KeepsIdentity(t *testing.T) {
	c := candidate(t, "Redmi Note 12")
	out := New().Enrich(context.Background(), c)
	if out.ID() != c.ID() {
		t.Errorf("id changed: %s", out.ID())
	}
	if out.StructuredReviews().Len() == 0 {
		t.Error("enriched candidate has no structured reviews")
	}
	if c.StructuredReviews().Len() != 0 {
		t.Error("input candidate was mutated")
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	if got, _ := m.Get(product.KeyDisplay); got != "bright and vibrant" {
		t.Errorf("display = %q", got)
	}
	if got, _ := m.Get(product.KeySentiment); got != SentimentPositive {
		t.Errorf("sentiment = %q", got)
	}
}
