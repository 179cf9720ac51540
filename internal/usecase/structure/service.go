package structure

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/logger"
)

// Service derives per-feature sentiment from a candidate's title and features.
// Review text is never read.
type Service struct{}

// New creates a review structurer.
func New() *Service { return &Service{} }

// Default is returned when structuring fails.
func Default() product.SentimentMap {
	return product.NewSentimentMap(
		product.Sentiment{Key: product.KeyBattery, Phrase: "good"},
		product.Sentiment{Key: product.KeyCamera, Phrase: "average in low light"},
		product.Sentiment{Key: product.KeyPerformance, Phrase: PerformanceGood},
		product.Sentiment{Key: product.KeyDisplay, Phrase: "bright and vibrant"},
		product.Sentiment{Key: product.KeySentiment, Phrase: SentimentPositive},
	)
}

// Structure is pure and total.
func (s *Service) Structure(ctx context.Context, c product.Candidate) (m product.SentimentMap) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Warn("review structuring failed, using default",
				zap.String("product_id", c.ID()), zap.Any("panic", r))
			m = Default()
		}
	}()
	return structure(c)
}

// Enrich returns a copy of c carrying its structured reviews.
func (s *Service) Enrich(ctx context.Context, c product.Candidate) product.Candidate {
	return c.WithStructuredReviews(s.Structure(ctx, c))
}

func structure(c product.Candidate) product.SentimentMap {
	sig := newSignals(c)

	entries := make([]product.Sentiment, 0, len(featureRules)+1)
	phrases := make([]string, 0, len(featureRules))
	for _, r := range featureRules {
		phrase := resolve(r, sig)
		entries = append(entries, product.Sentiment{Key: r.key, Phrase: phrase})
		phrases = append(phrases, phrase)
	}
	entries = append(entries, product.Sentiment{Key: product.KeySentiment, Phrase: overall(phrases)})

	return product.NewSentimentMap(entries...)
}

func resolve(r featureRule, sig signals) string {
	for _, t := range r.tiers {
		if t.match(sig) {
			return t.phrase
		}
	}
	return Average
}

func overall(phrases []string) string {
	allAverage := true
	for _, p := range phrases {
		if strings.Contains(p, "excellent") {
			return SentimentVeryPositive
		}
		if p != Average {
			allAverage = false
		}
	}
	if allAverage {
		return SentimentMixed
	}
	return SentimentPositive
}
