package recommendation

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
)

// MaxTopPicks is the number of candidates highlighted by a recommendation.
const MaxTopPicks = 3

// Scored is a candidate paired with its request-scoped score.
type Scored struct {
	Candidate product.Candidate
	Score     float64
}

// Result is a ranked, narrated recommendation.
type Result struct {
	text     string
	topPicks []string
}

// New creates a Result. At most MaxTopPicks ids are kept.
func New(text string, topPicks []string) Result {
	if len(topPicks) > MaxTopPicks {
		topPicks = topPicks[:MaxTopPicks]
	}
	return Result{text: text, topPicks: slices.Clone(topPicks)}
}

// Recommendation returns the narrative text.
func (r Result) Recommendation() string { return r.text }

// TopPicks returns candidate ids, highest score first.
func (r Result) TopPicks() []string { return slices.Clone(r.topPicks) }

type wireResult struct {
	Recommendation string   `json:"recommendation"`
	TopPicks       []string `json:"topPicks"`
}

// MarshalJSON encodes the result.
func (r Result) MarshalJSON() ([]byte, error) {
	picks := r.topPicks
	if picks == nil {
		picks = []string{}
	}
	return json.Marshal(wireResult{Recommendation: r.text, TopPicks: picks}) //nolint:wrapcheck // plain struct encoding
}

// UnmarshalJSON decodes a result.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode recommendation: %w", err)
	}
	*r = New(w.Recommendation, w.TopPicks)
	return nil
}
