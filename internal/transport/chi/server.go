package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
	"github.com/kailas-cloud/shopsense/internal/logger"
	healthuc "github.com/kailas-cloud/shopsense/internal/usecase/health"
	pipelineuc "github.com/kailas-cloud/shopsense/internal/usecase/pipeline"
	processloguc "github.com/kailas-cloud/shopsense/internal/usecase/processlog"
)

const (
	maxBodyBytes = 1 << 20

	// StepReceived is the process-log step written by POST /api/query.
	StepReceived = "Received user query"
)

// errorHandler tries to handle an error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the shopsense HTTP API.
type Server struct {
	pipeline      *pipelineuc.Service
	processLog    *processloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline *pipelineuc.Service,
	processLog *processloguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline:   pipeline,
		processLog: processLog,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		bodyTooLargeHandler,
		invalidInputHandler(domain.ErrInvalidQuery),
		invalidInputHandler(domain.ErrInvalidCandidate),
		malformedBodyHandler,
	}
	return s
}

// Register mounts the API, health and metrics routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Route("/api", func(r gochi.Router) {
		r.Post("/query", s.SubmitQuery)
		r.Post("/parse-query", s.ParseQuery)
		r.Post("/fetch-products", s.FetchProducts)
		r.Post("/structure-reviews", s.StructureReviews)
		r.Post("/summarize-products", s.SummarizeProducts)
		r.Post("/recommend", s.Recommend)
		r.Get("/process-logs", s.ListProcessLogs)
		r.Delete("/process-logs", s.ClearProcessLogs)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	ProcessID string `json:"processId,omitempty"`
}

type runResponse struct {
	RunID           string                `json:"runId"`
	StructuredQuery query.StructuredQuery `json:"structuredQuery"`
	Products        []product.Candidate   `json:"products"`
	Recommendation  recommendation.Result `json:"recommendation"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SubmitQuery handles POST /api/query.
func (s *Server) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.processLog.Record(r.Context(), StepReceived, processloguc.Fields{"query": req.Query})

	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Message:   "Query received successfully",
		ProcessID: uuid.NewString(),
	})
}

// ParseQuery handles POST /api/parse-query.
func (s *Server) ParseQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeData(w, s.pipeline.Interpret(r.Context(), req.Query))
}

// FetchProducts handles POST /api/fetch-products.
func (s *Server) FetchProducts(w http.ResponseWriter, r *http.Request) {
	var req fetchProductsRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeData(w, s.pipeline.Acquire(r.Context(), *req.StructuredQuery))
}

// StructureReviews handles POST /api/structure-reviews. The candidate travels
// in the body; no listing state is kept between requests.
func (s *Server) StructureReviews(w http.ResponseWriter, r *http.Request) {
	var req structureReviewsRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeData(w, s.pipeline.StructureReviews(r.Context(), *req.Product))
}

// SummarizeProducts handles POST /api/summarize-products.
func (s *Server) SummarizeProducts(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeData(w, s.pipeline.Recommend(r.Context(), *req.StructuredQuery, req.Products))
}

// Recommend handles POST /api/recommend, running the whole pipeline.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}

	run := s.pipeline.Run(r.Context(), req.Query)
	writeData(w, runResponse{
		RunID:           run.ID,
		StructuredQuery: run.Query,
		Products:        run.Products,
		Recommendation:  run.Recommendation,
	})
}

// ListProcessLogs handles GET /api/process-logs.
func (s *Server) ListProcessLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.processLog.List(r.Context())
	if err != nil {
		s.internalError(w, r, err, "Failed to read process logs")
		return
	}
	if entries == nil {
		entries = []processloguc.Entry{}
	}
	writeData(w, entries)
}

// ClearProcessLogs handles DELETE /api/process-logs.
func (s *Server) ClearProcessLogs(w http.ResponseWriter, r *http.Request) {
	if err := s.processLog.Clear(r.Context()); err != nil {
		s.internalError(w, r, err, "Failed to clear process logs")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Process logs cleared"})
}

// HealthCheck handles GET /health. A degraded service still answers
// recommendations, so only an unhealthy one reports 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body into dst. On failure the error
// response is already written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		s.handleError(w, r, err)
		return false
	}
	if err := validateRequest(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Debug("Rejected request", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.internalError(w, r, err, "Internal server error")
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger.FromContext(r.Context()).Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// invalidInputHandler maps a domain validation sentinel to 400. Domain
// validation messages carry no internals and are returned as-is.
func invalidInputHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return true
	}
}

func bodyTooLargeHandler(w http.ResponseWriter, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	return true
}

func malformedBodyHandler(w http.ResponseWriter, err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		writeError(w, http.StatusBadRequest, "invalid request body")
		return true
	}
	return false
}
