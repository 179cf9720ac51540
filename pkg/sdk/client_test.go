package shopsense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_RejectsNegativeWeights(t *testing.T) {
	w := DefaultWeights()
	w.Rating = -1
	if _, err := New(WithWeights(w)); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithMarketplace("https://example.test", "/find").apply(cfg)
	if cfg.baseURL != "https://example.test" || cfg.searchPath != "/find" {
		t.Errorf("marketplace = %q %q", cfg.baseURL, cfg.searchPath)
	}

	WithBrowser(false, 3).apply(cfg)
	if !cfg.browser || cfg.headless || cfg.maxSessions != 3 {
		t.Errorf("browser = %v headless=%v sessions=%d", cfg.browser, cfg.headless, cfg.maxSessions)
	}

	WithRateLimit(2, 5).apply(cfg)
	if cfg.ratePerSecond != 2 || cfg.burst != 5 {
		t.Errorf("rate = %v/%d", cfg.ratePerSecond, cfg.burst)
	}

	WithProcessLogCapacity(7).apply(cfg)
	if cfg.logCapacity != 7 {
		t.Errorf("logCapacity = %d", cfg.logCapacity)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NoBrowser(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestClient_Run(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	run := c.Run(ctx, "samsung phone under 20000 with good camera")

	if run.ID == "" {
		t.Error("expected run id")
	}
	if run.Query.Category != "smartphone" || run.Query.Budget != 20000 {
		t.Errorf("query = %+v", run.Query)
	}
	if len(run.Products) == 0 {
		t.Fatal("expected products")
	}
	for _, p := range run.Products {
		if !strings.Contains(strings.ToLower(p.Title), "samsung") {
			t.Errorf("brand filter: %q", p.Title)
		}
		if len(p.StructuredReviews) == 0 {
			t.Errorf("product %s not enriched", p.ID)
		}
	}
	if len(run.Recommendation.TopPicks) == 0 || run.Recommendation.Text == "" {
		t.Errorf("recommendation = %+v", run.Recommendation)
	}

	steps, err := c.Steps(ctx)
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	// 2 per stage plus 2 per structured product.
	if want := 6 + 2*len(run.Products); len(steps) != want {
		t.Errorf("steps = %d, want %d", len(steps), want)
	}

	if err := c.ClearSteps(ctx); err != nil {
		t.Fatalf("ClearSteps: %v", err)
	}
	if steps, _ := c.Steps(ctx); len(steps) != 0 {
		t.Errorf("steps after clear = %d", len(steps))
	}
}

func TestClient_StagewiseMatchesRun(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	text := "laptop under 60000 for coding"

	q := c.Interpret(ctx, text)
	products, err := c.Acquire(ctx, q)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for i := range products {
		products[i].StructuredReviews, err = c.Structure(ctx, products[i])
		if err != nil {
			t.Fatalf("Structure: %v", err)
		}
	}
	rec, err := c.Recommend(ctx, q, products)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	run := c.Run(ctx, text)
	if strings.Join(rec.TopPicks, ",") != strings.Join(run.Recommendation.TopPicks, ",") {
		t.Errorf("top picks differ: %v vs %v", rec.TopPicks, run.Recommendation.TopPicks)
	}
}

func TestClient_InvalidInput(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Acquire(ctx, Query{Category: "laptop", Budget: -1}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Acquire: got %v, want ErrInvalidQuery", err)
	}
	if _, err := c.Structure(ctx, Product{ID: "p", Title: "T"}); !errors.Is(err, ErrInvalidCandidate) {
		t.Errorf("Structure: got %v, want ErrInvalidCandidate", err)
	}

	products := []Product{
		{ID: "ok", Title: "Phone", Price: 100},
		{ID: "bad", Title: "", Price: 100},
	}
	_, err := c.Recommend(ctx, Query{Category: "smartphone"}, products)
	if !errors.Is(err, ErrInvalidCandidate) || !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("Recommend: got %v", err)
	}
}

func TestClient_Health(t *testing.T) {
	c := newTestClient(t)

	h := c.Health(context.Background())
	if h.Status != "ok" {
		t.Errorf("status = %q", h.Status)
	}
	if _, ok := h.Checks["browser"]; ok {
		t.Error("browser check reported without a browser")
	}
}

func TestClient_ObservesOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithPrometheus(reg))
	ctx := context.Background()

	q := c.Interpret(ctx, "phone")
	_, _ = c.Acquire(ctx, Query{Category: "laptop", Budget: -1})
	if _, err := c.Acquire(ctx, q); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ok := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("interpret", "ok"))
	if ok != 1 {
		t.Errorf("interpret ok = %v, want 1", ok)
	}
	invalid := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("acquire", "invalid"))
	if invalid != 1 {
		t.Errorf("acquire invalid = %v, want 1", invalid)
	}
	// Only the successful acquire reports a product count.
	if n := testutil.CollectAndCount(c.obs.metrics.products); n != 1 {
		t.Errorf("products series = %d, want 1", n)
	}
}

func TestOperationStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("acquire: %w", ErrInvalidQuery), "invalid"},
		{fmt.Errorf("structure: %w", ErrInvalidCandidate), "invalid"},
		{errors.New("sink down"), "error"},
	}
	for _, tt := range tests {
		if got := operationStatus(tt.err); got != tt.want {
			t.Errorf("operationStatus(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserver_NilSafe(t *testing.T) {
	// nil observer should not panic.
	var obs *observer
	obs.observe("test", time.Now(), 0, nil)
	obs.observe("test", time.Now(), 3, errors.New("err"))
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second newObserver: %v", err)
	}

	first.observe("run", time.Now(), 5, nil)
	second.observe("run", time.Now(), 5, nil)

	if got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("run", "ok")); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), 0, nil)
	obs.observe("test.op", time.Now().Add(-10*time.Second), 2, nil)
	obs.observe("test.op", time.Now(), 0, ErrInvalidQuery)
	obs.observe("test.op", time.Now(), 0, errors.New("test error"))
}
