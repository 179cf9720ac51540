package shopsense

import (
	"strings"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
	"github.com/kailas-cloud/shopsense/internal/usecase/recommend"
)

func queryFromDomain(q query.StructuredQuery) Query {
	return Query{
		Category: string(q.Category()),
		Budget:   q.Budget(),
		Priority: q.Priority(),
		Brand:    q.Brand(),
	}
}

func queryToDomain(q Query) (query.StructuredQuery, error) {
	return query.New(query.Category(strings.ToLower(q.Category)), q.Budget, q.Priority, q.Brand) //nolint:wrapcheck // sentinel already attached
}

func productFromDomain(c product.Candidate) Product {
	p := Product{
		ID:         c.ID(),
		Title:      c.Title(),
		Price:      c.Price(),
		Features:   c.Features(),
		Reviews:    c.Reviews(),
		Image:      c.Image(),
		ProductURL: c.ProductURL(),
	}
	if r, ok := c.Rating(); ok {
		p.Rating = &r
	}
	if m := c.StructuredReviews(); m.Len() > 0 {
		p.StructuredReviews = sentimentsFromDomain(m)
	}
	return p
}

func productsFromDomain(cs []product.Candidate) []Product {
	out := make([]Product, len(cs))
	for i, c := range cs {
		out[i] = productFromDomain(c)
	}
	return out
}

func productToDomain(p Product) (product.Candidate, error) {
	c, err := product.New(p.ID, product.Attrs{
		Title:      p.Title,
		Price:      p.Price,
		Rating:     p.Rating,
		Features:   p.Features,
		Reviews:    p.Reviews,
		Image:      p.Image,
		ProductURL: p.ProductURL,
	})
	if err != nil {
		return product.Candidate{}, err //nolint:wrapcheck // sentinel already attached
	}
	if len(p.StructuredReviews) > 0 {
		c = c.WithStructuredReviews(sentimentsToDomain(p.StructuredReviews))
	}
	return c, nil
}

func sentimentsFromDomain(m product.SentimentMap) []Sentiment {
	entries := m.Entries()
	out := make([]Sentiment, len(entries))
	for i, e := range entries {
		out[i] = Sentiment{Key: e.Key, Phrase: e.Phrase}
	}
	return out
}

func sentimentsToDomain(ss []Sentiment) product.SentimentMap {
	entries := make([]product.Sentiment, len(ss))
	for i, s := range ss {
		entries[i] = product.Sentiment{Key: s.Key, Phrase: s.Phrase}
	}
	return product.NewSentimentMap(entries...)
}

func recommendationFromDomain(r recommendation.Result) Recommendation {
	return Recommendation{Text: r.Recommendation(), TopPicks: r.TopPicks()}
}

func weightsToDomain(w Weights) recommend.Weights {
	return recommend.Weights{
		Rating:            w.Rating,
		BudgetFit:         w.BudgetFit,
		OverBudgetPenalty: w.OverBudgetPenalty,
		TitleMatch:        w.TitleMatch,
		FeatureMatch:      w.FeatureMatch,
		ReviewExcellent:   w.ReviewExcellent,
		ReviewGood:        w.ReviewGood,
		ReviewAverage:     w.ReviewAverage,
		BrandMatch:        w.BrandMatch,
	}
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	d := recommend.DefaultWeights()
	return Weights{
		Rating:            d.Rating,
		BudgetFit:         d.BudgetFit,
		OverBudgetPenalty: d.OverBudgetPenalty,
		TitleMatch:        d.TitleMatch,
		FeatureMatch:      d.FeatureMatch,
		ReviewExcellent:   d.ReviewExcellent,
		ReviewGood:        d.ReviewGood,
		ReviewAverage:     d.ReviewAverage,
		BrandMatch:        d.BrandMatch,
	}
}
