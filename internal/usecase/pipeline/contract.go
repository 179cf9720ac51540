package pipeline

import (
	"context"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
)

// Interpreter turns free text into a structured query.
type Interpreter interface {
	Interpret(ctx context.Context, text string) query.StructuredQuery
}

// Acquirer produces a non-empty candidate list for a query.
type Acquirer interface {
	Acquire(ctx context.Context, q query.StructuredQuery) []product.Candidate
}

// Structurer derives per-feature sentiment from a candidate.
type Structurer interface {
	Structure(ctx context.Context, c product.Candidate) product.SentimentMap
}

// Recommender ranks candidates and narrates the result.
type Recommender interface {
	Recommend(ctx context.Context, q query.StructuredQuery, candidates []product.Candidate) recommendation.Result
}

// Recorder captures step summaries for the process log.
type Recorder interface {
	Record(ctx context.Context, step string, data any)
}
