package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
	"github.com/kailas-cloud/shopsense/internal/logger"
)

const (
	placeholderTitle = "recommended product"
	placeholderID    = "unknown"
)

// Service ranks candidates and narrates the outcome.
type Service struct {
	weights Weights
}

// New creates a recommendation engine with the given weights.
func New(weights Weights) *Service {
	return &Service{weights: weights}
}

// Recommend never fails. An empty catalog yields a single placeholder pick.
func (s *Service) Recommend(
	ctx context.Context, q query.StructuredQuery, candidates []product.Candidate,
) (res recommendation.Result) {
	log := logger.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Warn("recommendation failed, using fallback", zap.Any("panic", r))
			res = fallback(candidates)
		}
	}()

	ranked, err := s.weights.Rank(q, candidates)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCatalog) {
			log.Warn("no candidates to rank, returning placeholder")
		} else {
			log.Warn("ranking failed, using fallback", zap.Error(err))
		}
		return fallback(candidates)
	}

	top := ranked[:min(recommendation.MaxTopPicks, len(ranked))]
	ids := make([]string, len(top))
	for i, sp := range top {
		ids[i] = sp.Candidate.ID()
	}

	log.Debug("recommendation ranked",
		zap.Int("candidates", len(candidates)),
		zap.Strings("top_picks", ids),
		zap.Float64("top_score", top[0].Score),
	)
	return recommendation.New(narrate(q, top), ids)
}

// Rank exposes the scored ordering without narration.
func (s *Service) Rank(q query.StructuredQuery, candidates []product.Candidate) ([]recommendation.Scored, error) {
	ranked, err := s.weights.Rank(q, candidates)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return ranked, nil
}

func fallback(candidates []product.Candidate) recommendation.Result {
	title, id := placeholderTitle, placeholderID
	if len(candidates) > 0 {
		title, id = candidates[0].Title(), candidates[0].ID()
	}
	text := fmt.Sprintf("Based on your search, the %s appears to be a good match for your requirements. "+
		"It offers a good balance of features and value.", title)
	return recommendation.New(text, []string{id})
}
