package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
	"github.com/kailas-cloud/shopsense/internal/logger"
	"github.com/kailas-cloud/shopsense/internal/usecase/processlog"
)

// Stage labels for duration metrics.
const (
	StageInterpret = "interpret"
	StageAcquire   = "acquire"
	StageStructure = "structure"
	StageRecommend = "recommend"
)

// Process-log step names.
const (
	StepParsing          = "Parsing natural language query"
	StepParsed           = "Query parsed to structured parameters"
	StepSearching        = "Initiating product search"
	StepFetched          = "Products fetched successfully"
	StepAnalyzingReviews = "Analyzing reviews for product"
	StepReviewsDone      = "Reviews structured by sentiment and features"
	StepRecommending     = "Generating personalized recommendation"
	StepRecommended      = "Recommendation generated"
)

// Run is the outcome of one end-to-end pipeline pass.
type Run struct {
	ID             string
	Query          query.StructuredQuery
	Products       []product.Candidate
	Recommendation recommendation.Result
}

// Service wires the four stages and records a process-log step around each.
type Service struct {
	interpreter Interpreter
	acquirer    Acquirer
	structurer  Structurer
	recommender Recommender
	recorder    Recorder
	durations   *prometheus.HistogramVec
}

// New creates a pipeline. durations (label "stage") may be nil.
func New(
	i Interpreter, a Acquirer, s Structurer, r Recommender,
	rec Recorder, durations *prometheus.HistogramVec,
) *Service {
	return &Service{
		interpreter: i,
		acquirer:    a,
		structurer:  s,
		recommender: r,
		recorder:    rec,
		durations:   durations,
	}
}

// Interpret parses text into a structured query.
func (s *Service) Interpret(ctx context.Context, text string) query.StructuredQuery {
	defer s.observe(StageInterpret, time.Now())

	s.recorder.Record(ctx, StepParsing, processlog.Fields{"query": text})
	q := s.interpreter.Interpret(ctx, text)
	s.recorder.Record(ctx, StepParsed, q)
	return q
}

// Acquire fetches candidates for q.
func (s *Service) Acquire(ctx context.Context, q query.StructuredQuery) []product.Candidate {
	defer s.observe(StageAcquire, time.Now())

	s.recorder.Record(ctx, StepSearching, q)
	cands := s.acquirer.Acquire(ctx, q)
	s.recorder.Record(ctx, StepFetched, cands)
	return cands
}

// StructureReviews derives the sentiment map for c.
func (s *Service) StructureReviews(ctx context.Context, c product.Candidate) product.SentimentMap {
	defer s.observe(StageStructure, time.Now())

	s.recorder.Record(ctx, StepAnalyzingReviews, processlog.Fields{
		"productId":    c.ID(),
		"productTitle": c.Title(),
		"reviewCount":  len(c.Reviews()),
	})
	m := s.structurer.Structure(ctx, c)
	s.recorder.Record(ctx, StepReviewsDone, processlog.Fields{
		"productId":         c.ID(),
		"structuredReviews": m,
	})
	return m
}

// Recommend ranks candidates against q and narrates the result.
func (s *Service) Recommend(
	ctx context.Context, q query.StructuredQuery, candidates []product.Candidate,
) recommendation.Result {
	defer s.observe(StageRecommend, time.Now())

	s.recorder.Record(ctx, StepRecommending, processlog.Fields{
		"structuredQuery": q,
		"productCount":    len(candidates),
	})
	res := s.recommender.Recommend(ctx, q, candidates)
	s.recorder.Record(ctx, StepRecommended, res)
	return res
}

// Run executes interpret, acquire, structure (every candidate) and recommend.
func (s *Service) Run(ctx context.Context, text string) Run {
	id := uuid.NewString()
	ctx, log := logger.With(ctx, zap.String("run_id", id))

	q := s.Interpret(ctx, text)
	cands := s.Acquire(ctx, q)

	enriched := make([]product.Candidate, len(cands))
	for i, c := range cands {
		enriched[i] = c.WithStructuredReviews(s.StructureReviews(ctx, c))
	}

	res := s.Recommend(ctx, q, enriched)

	log.Info("Pipeline run completed",
		zap.String("category", string(q.Category())),
		zap.Int("candidates", len(enriched)),
		zap.Strings("top_picks", res.TopPicks()),
	)
	return Run{ID: id, Query: q, Products: enriched, Recommendation: res}
}

func (s *Service) observe(stage string, start time.Time) {
	if s.durations != nil {
		s.durations.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
