package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	processlogrepo "github.com/kailas-cloud/shopsense/internal/repository/processlog"
	"github.com/kailas-cloud/shopsense/internal/usecase/acquire"
	healthuc "github.com/kailas-cloud/shopsense/internal/usecase/health"
	"github.com/kailas-cloud/shopsense/internal/usecase/interpret"
	pipelineuc "github.com/kailas-cloud/shopsense/internal/usecase/pipeline"
	processloguc "github.com/kailas-cloud/shopsense/internal/usecase/processlog"
	"github.com/kailas-cloud/shopsense/internal/usecase/recommend"
	"github.com/kailas-cloud/shopsense/internal/usecase/structure"
)

// --- Mocks ---

type failingSink struct{}

func (failingSink) Append(context.Context, processloguc.Entry) error {
	return errors.New("sink down")
}

func (failingSink) List(context.Context) ([]processloguc.Entry, error) {
	return nil, errors.New("sink down")
}

func (failingSink) Clear(context.Context) error { return errors.New("sink down") }

func (failingSink) Ping(context.Context) error { return errors.New("sink down") }

type sinkPinger interface {
	processloguc.Sink
	healthuc.Pinger
}

func newTestRouter(sink sinkPinger) http.Handler {
	log := processloguc.New(sink)
	pipeline := pipelineuc.New(
		interpret.New(),
		acquire.New(acquire.DefaultConfig(), nil, nil, acquire.Metrics{}, zap.NewNop()),
		structure.New(),
		recommend.New(recommend.DefaultWeights()),
		log,
		nil,
	)
	srv := NewServer(pipeline, log, healthuc.New(sink, nil, nil), zap.NewNop())

	r := gochi.NewRouter()
	srv.Register(r)
	return r
}

type testResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ProcessID string          `json:"processId"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, testResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp testResponse
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
		}
	}
	return rr.Code, resp
}

// --- Tests ---

func TestSubmitQuery(t *testing.T) {
	sink := processlogrepo.NewMemorySink(10)
	h := newTestRouter(sink)

	code, resp := do(t, h, "POST", "/api/query", `{"query":"phone under 20k"}`)
	if code != http.StatusOK || !resp.Success {
		t.Fatalf("got %d %+v", code, resp)
	}
	if resp.ProcessID == "" {
		t.Error("expected processId")
	}

	entries, _ := sink.List(context.Background())
	if len(entries) != 1 || entries[0].Step != StepReceived {
		t.Errorf("unexpected process log %+v", entries)
	}
}

func TestParseQuery(t *testing.T) {
	h := newTestRouter(processlogrepo.NewMemorySink(10))

	code, resp := do(t, h, "POST", "/api/parse-query", `{"query":"samsung phone under 20000 with good camera"}`)
	if code != http.StatusOK {
		t.Fatalf("got %d %+v", code, resp)
	}

	var q struct {
		Category string   `json:"category"`
		Budget   *int     `json:"budget"`
		Priority []string `json:"priority"`
		Brand    []string `json:"brand"`
	}
	if err := json.Unmarshal(resp.Data, &q); err != nil {
		t.Fatalf("decode query: %v", err)
	}
	if q.Category != "smartphone" || q.Budget == nil || *q.Budget != 20000 {
		t.Errorf("unexpected query %+v", q)
	}
	if len(q.Brand) != 1 || q.Brand[0] != "samsung" {
		t.Errorf("brand = %v", q.Brand)
	}
}

func TestValidationErrors(t *testing.T) {
	h := newTestRouter(processlogrepo.NewMemorySink(10))

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"missing query", "/api/parse-query", `{}`, http.StatusBadRequest, "query is required"},
		{"empty body", "/api/query", "", http.StatusBadRequest, "invalid request body"},
		{"malformed json", "/api/recommend", `{"query":`, http.StatusBadRequest, "invalid request body"},
		{"wrong type", "/api/query", `{"query":42}`, http.StatusBadRequest, "invalid request body"},
		{"query too long", "/api/recommend", `{"query":"` + strings.Repeat("a", 501) + `"}`,
			http.StatusBadRequest, "query must be at most 500 characters"},
		{"missing structured query", "/api/fetch-products", `{}`,
			http.StatusBadRequest, "structuredQuery is required"},
		{"negative budget", "/api/fetch-products", `{"structuredQuery":{"category":"laptop","budget":-5}}`,
			http.StatusBadRequest, "invalid query: budget must not be negative, got -5"},
		{"missing product", "/api/structure-reviews", `{}`, http.StatusBadRequest, "product is required"},
		{"invalid product", "/api/structure-reviews", `{"product":{"id":"x","title":"T","price":0}}`,
			http.StatusBadRequest, "invalid candidate: price must be positive, got 0"},
		{"no products", "/api/summarize-products", `{"structuredQuery":{"category":"laptop"},"products":[]}`,
			http.StatusBadRequest, "products must contain at least 1 item(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, h, "POST", tt.path, tt.body)
			if code != tt.wantCode {
				t.Fatalf("got %d, want %d (%s)", code, tt.wantCode, resp.Message)
			}
			if resp.Success {
				t.Error("expected success=false")
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

func TestFetchStructureSummarize(t *testing.T) {
	h := newTestRouter(processlogrepo.NewMemorySink(50))
	sq := `{"category":"smartphone","budget":20000,"priority":["camera"],"brand":[]}`

	code, resp := do(t, h, "POST", "/api/fetch-products", `{"structuredQuery":`+sq+`}`)
	if code != http.StatusOK {
		t.Fatalf("fetch: got %d %s", code, resp.Message)
	}
	var products []json.RawMessage
	if err := json.Unmarshal(resp.Data, &products); err != nil || len(products) == 0 {
		t.Fatalf("fetch: products %s, err %v", resp.Data, err)
	}

	code, resp = do(t, h, "POST", "/api/structure-reviews", `{"product":`+string(products[0])+`}`)
	if code != http.StatusOK {
		t.Fatalf("structure: got %d %s", code, resp.Message)
	}
	var sentiment map[string]string
	if err := json.Unmarshal(resp.Data, &sentiment); err != nil {
		t.Fatalf("structure: decode %v", err)
	}
	if sentiment["sentiment"] == "" {
		t.Errorf("expected overall sentiment, got %v", sentiment)
	}

	body := `{"structuredQuery":` + sq + `,"products":[` + string(bytes.Join(toBytes(products), []byte(","))) + `]}`
	code, resp = do(t, h, "POST", "/api/summarize-products", body)
	if code != http.StatusOK {
		t.Fatalf("summarize: got %d %s", code, resp.Message)
	}
	var rec struct {
		Recommendation string   `json:"recommendation"`
		TopPicks       []string `json:"topPicks"`
	}
	if err := json.Unmarshal(resp.Data, &rec); err != nil {
		t.Fatalf("summarize: decode %v", err)
	}
	if rec.Recommendation == "" || len(rec.TopPicks) == 0 {
		t.Errorf("unexpected recommendation %+v", rec)
	}
}

func toBytes(raws []json.RawMessage) [][]byte {
	out := make([][]byte, len(raws))
	for i, r := range raws {
		out[i] = r
	}
	return out
}

func TestRecommend_FullRun(t *testing.T) {
	h := newTestRouter(processlogrepo.NewMemorySink(100))

	code, resp := do(t, h, "POST", "/api/recommend", `{"query":"wireless earbuds under 3000"}`)
	if code != http.StatusOK {
		t.Fatalf("got %d %s", code, resp.Message)
	}

	var run struct {
		RunID           string `json:"runId"`
		StructuredQuery struct {
			Category string `json:"category"`
		} `json:"structuredQuery"`
		Products []struct {
			ID                string            `json:"id"`
			Price             int               `json:"price"`
			StructuredReviews map[string]string `json:"structuredReviews"`
		} `json:"products"`
		Recommendation struct {
			TopPicks []string `json:"topPicks"`
		} `json:"recommendation"`
	}
	if err := json.Unmarshal(resp.Data, &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.RunID == "" || run.StructuredQuery.Category != "earbuds" {
		t.Errorf("unexpected run header %+v", run)
	}
	if len(run.Products) == 0 {
		t.Fatal("expected products")
	}
	for _, p := range run.Products {
		if p.Price > 3000 {
			t.Errorf("product %s over budget: %d", p.ID, p.Price)
		}
		if len(p.StructuredReviews) == 0 {
			t.Errorf("product %s not enriched", p.ID)
		}
	}
	if len(run.Recommendation.TopPicks) == 0 {
		t.Error("expected top picks")
	}
}

func TestProcessLogs(t *testing.T) {
	h := newTestRouter(processlogrepo.NewMemorySink(100))

	do(t, h, "POST", "/api/parse-query", `{"query":"laptop"}`)

	code, resp := do(t, h, "GET", "/api/process-logs", "")
	if code != http.StatusOK {
		t.Fatalf("list: got %d", code)
	}
	var entries []processloguc.Entry
	if err := json.Unmarshal(resp.Data, &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Step != pipelineuc.StepParsing || entries[1].Step != pipelineuc.StepParsed {
		t.Errorf("unexpected entries %+v", entries)
	}

	code, resp = do(t, h, "DELETE", "/api/process-logs", "")
	if code != http.StatusOK || resp.Message != "Process logs cleared" {
		t.Fatalf("clear: got %d %+v", code, resp)
	}

	_, resp = do(t, h, "GET", "/api/process-logs", "")
	if string(resp.Data) != "[]" {
		t.Errorf("after clear: %s", resp.Data)
	}
}

func TestProcessLogs_SinkFailure(t *testing.T) {
	h := newTestRouter(failingSink{})

	// Recording failures never reach the caller.
	code, _ := do(t, h, "POST", "/api/parse-query", `{"query":"laptop"}`)
	if code != http.StatusOK {
		t.Fatalf("parse with failing sink: got %d", code)
	}

	code, resp := do(t, h, "GET", "/api/process-logs", "")
	if code != http.StatusInternalServerError || resp.Message != "Failed to read process logs" {
		t.Errorf("list: got %d %+v", code, resp)
	}

	code, resp = do(t, h, "DELETE", "/api/process-logs", "")
	if code != http.StatusInternalServerError || resp.Message != "Failed to clear process logs" {
		t.Errorf("clear: got %d %+v", code, resp)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		sink       sinkPinger
		wantStatus string
		wantCheck  string
	}{
		{"healthy", processlogrepo.NewMemorySink(1), "ok", "ok"},
		{"degraded", failingSink{}, "degraded", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(tt.sink)

			req := httptest.NewRequest("GET", "/health", http.NoBody)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("got %d", rr.Code)
			}
			var resp healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Checks[healthuc.ComponentProcessLog] != tt.wantCheck {
				t.Errorf("checks = %v", resp.Checks)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(processlogrepo.NewMemorySink(1))

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("got %d", rr.Code)
	}
}
