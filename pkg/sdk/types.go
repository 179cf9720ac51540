package shopsense

import (
	"encoding/json"
	"time"
)

// Query is normalized shopping intent. Budget 0 means no ceiling.
type Query struct {
	Category string
	Budget   int
	Priority []string
	Brand    []string
}

// Sentiment is one feature-to-phrase verdict derived from reviews.
type Sentiment struct {
	Key    string
	Phrase string
}

// Product is a candidate listing.
type Product struct {
	ID         string
	Title      string
	Price      int
	Rating     *float64 // nil when the listing has no rating
	Features   []string
	Reviews    []string
	Image      string
	ProductURL string

	// StructuredReviews is filled by Structure or Run, in key order.
	StructuredReviews []Sentiment
}

// Recommendation is the narrated outcome of ranking.
type Recommendation struct {
	Text     string
	TopPicks []string // product ids, best first
}

// RunResult is the outcome of Run.
type RunResult struct {
	ID             string
	Query          Query
	Products       []Product
	Recommendation Recommendation
}

// Weights are the additive scoring terms used for ranking.
type Weights struct {
	Rating            float64
	BudgetFit         float64
	OverBudgetPenalty float64
	TitleMatch        float64
	FeatureMatch      float64
	ReviewExcellent   float64
	ReviewGood        float64
	ReviewAverage     float64
	BrandMatch        float64
}

// Step is one recorded pipeline step. Data is a JSON summary of the step payload.
type Step struct {
	Time time.Time
	Name string
	Data json.RawMessage
}
