package processlog

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
)

// Fields is a free-form step payload.
type Fields map[string]any

const (
	titleLimit   = 30
	previewLimit = 100
	stringLimit  = 50
)

type candidateSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Price         int    `json:"price"`
	FeaturesCount int    `json:"features_count"`
}

type listSummary struct {
	Count  int               `json:"count"`
	Sample *candidateSummary `json:"sample"`
}

type resultSummary struct {
	TopPicks              []string `json:"topPicks"`
	RecommendationPreview string   `json:"recommendationPreview"`
}

// Summarize reduces a step payload to something small enough to log.
func Summarize(data any) any {
	switch v := data.(type) {
	case nil:
		return nil
	case query.StructuredQuery, product.SentimentMap:
		return v
	case product.Candidate:
		return summarizeCandidate(v)
	case []product.Candidate:
		s := listSummary{Count: len(v)}
		if len(v) > 0 {
			first := summarizeCandidate(v[0])
			s.Sample = &first
		}
		return s
	case recommendation.Result:
		return resultSummary{
			TopPicks:              v.TopPicks(),
			RecommendationPreview: truncate(v.Recommendation(), previewLimit),
		}
	case string:
		return truncate(v, stringLimit)
	case Fields:
		return summarizeFields(v)
	case map[string]any:
		return summarizeFields(v)
	default:
		return v
	}
}

func summarizeCandidate(c product.Candidate) candidateSummary {
	return candidateSummary{
		ID:            c.ID(),
		Title:         truncate(c.Title(), titleLimit),
		Price:         c.Price(),
		FeaturesCount: len(c.Features()),
	}
}

// summarizeFields keeps top-level keys. Domain values are summarized, long
// strings truncated, and other nested collections collapsed to a marker.
func summarizeFields(f map[string]any) map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		switch tv := v.(type) {
		case nil, bool, int, int64, float64:
			out[k] = tv
		case string, query.StructuredQuery, product.SentimentMap, product.Candidate,
			[]product.Candidate, recommendation.Result:
			out[k] = Summarize(tv)
		default:
			out[k] = collapse(tv)
		}
	}
	return out
}

func collapse(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("Array(%d)", rv.Len())
	case reflect.Map, reflect.Struct, reflect.Pointer:
		return "Object"
	default:
		return v
	}
}

// truncate cuts s to limit runes and marks the cut with "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
