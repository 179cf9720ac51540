package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
)

// Weights are the additive scoring terms. Changing them changes rankings.
type Weights struct {
	Rating            float64 // per rating star
	BudgetFit         float64 // scaled by price/budget when within budget
	OverBudgetPenalty float64 // subtracted when price exceeds budget
	TitleMatch        float64 // priority tag found in title
	FeatureMatch      float64 // priority tag found in any feature
	ReviewExcellent   float64
	ReviewGood        float64
	ReviewAverage     float64
	BrandMatch        float64 // brand token found in title
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Rating:            10,
		BudgetFit:         30,
		OverBudgetPenalty: 50,
		TitleMatch:        15,
		FeatureMatch:      20,
		ReviewExcellent:   25,
		ReviewGood:        15,
		ReviewAverage:     5,
		BrandMatch:        25,
	}
}

// Validate rejects negative weights.
func (w Weights) Validate() error {
	named := []struct {
		name string
		v    float64
	}{
		{"rating", w.Rating},
		{"budget_fit", w.BudgetFit},
		{"over_budget_penalty", w.OverBudgetPenalty},
		{"title_match", w.TitleMatch},
		{"feature_match", w.FeatureMatch},
		{"review_excellent", w.ReviewExcellent},
		{"review_good", w.ReviewGood},
		{"review_average", w.ReviewAverage},
		{"brand_match", w.BrandMatch},
	}
	for _, n := range named {
		if n.v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %g", n.name, n.v)
		}
	}
	return nil
}

// Score computes a candidate's score for the query.
func (w Weights) Score(q query.StructuredQuery, c product.Candidate) float64 {
	score := 0.0

	if r, ok := c.Rating(); ok {
		score += r * w.Rating
	}

	if q.HasBudget() {
		if c.Price() <= q.Budget() {
			score += w.BudgetFit * float64(c.Price()) / float64(q.Budget())
		} else {
			score -= w.OverBudgetPenalty
		}
	}

	title := strings.ToLower(c.Title())
	features := lowerAll(c.Features())
	reviews := c.StructuredReviews().Entries()

	for _, tag := range q.Priority() {
		tag = strings.ToLower(tag)
		if strings.Contains(title, tag) {
			score += w.TitleMatch
		}
		if anyContains(features, tag) {
			score += w.FeatureMatch
		}
		score += w.reviewBonus(reviews, tag)
	}

	for _, b := range q.Brand() {
		if strings.Contains(title, strings.ToLower(b)) {
			score += w.BrandMatch
		}
	}

	return score
}

// reviewBonus inspects only the first review key containing tag.
func (w Weights) reviewBonus(reviews []product.Sentiment, tag string) float64 {
	for _, e := range reviews {
		if !strings.Contains(strings.ToLower(e.Key), tag) {
			continue
		}
		phrase := strings.ToLower(e.Phrase)
		switch {
		case strings.Contains(phrase, "excellent"), strings.Contains(phrase, "great"):
			return w.ReviewExcellent
		case strings.Contains(phrase, "good"):
			return w.ReviewGood
		case strings.Contains(phrase, "average"):
			return w.ReviewAverage
		}
		return 0
	}
	return 0
}

// Rank scores every candidate and sorts descending; ties keep input order.
func (w Weights) Rank(q query.StructuredQuery, candidates []product.Candidate) ([]recommendation.Scored, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	scored := make([]recommendation.Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = recommendation.Scored{Candidate: c, Score: w.Score(q, c)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored, nil
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func anyContains(ss []string, sub string) bool {
	for _, s := range ss {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
