package query

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/shopsense/internal/domain"
)

// Category is a normalized product category.
type Category string

// Known categories. Electronics is the generic fallback.
const (
	Smartphone     Category = "smartphone"
	Laptop         Category = "laptop"
	Television     Category = "television"
	Headphones     Category = "headphones"
	Earbuds        Category = "earbuds"
	Camera         Category = "camera"
	Smartwatch     Category = "smartwatch"
	Tablet         Category = "tablet"
	Speaker        Category = "speaker"
	Refrigerator   Category = "refrigerator"
	WashingMachine Category = "washing_machine"
	AirConditioner Category = "air_conditioner"
	Electronics    Category = "electronics"
)

// Feature tags used in priority lists.
const (
	FeatureCamera      = "camera"
	FeatureBattery     = "battery"
	FeaturePerformance = "performance"
	FeatureDisplay     = "display"
	FeatureStorage     = "storage"
	FeaturePrice       = "price"
	FeatureDesign      = "design"
	FeatureSound       = "sound"
	FeaturePortability = "portability"
	FeatureCharging    = "charging"
)

// StructuredQuery is normalized shopping intent (immutable value object).
type StructuredQuery struct {
	category Category
	budget   int
	priority []string
	brand    []string
}

// New validates and creates a StructuredQuery.
// budget 0 means unset. Priority tags must be unique; brands are lowercased
// and deduplicated keeping the first occurrence.
func New(category Category, budget int, priority, brand []string) (StructuredQuery, error) {
	if category == "" {
		return StructuredQuery{}, fmt.Errorf("%w: category is required", domain.ErrInvalidQuery)
	}
	if budget < 0 {
		return StructuredQuery{}, fmt.Errorf("%w: budget must not be negative, got %d", domain.ErrInvalidQuery, budget)
	}

	seen := make(map[string]struct{}, len(priority))
	for _, p := range priority {
		if p == "" {
			return StructuredQuery{}, fmt.Errorf("%w: empty priority tag", domain.ErrInvalidQuery)
		}
		if _, dup := seen[p]; dup {
			return StructuredQuery{}, fmt.Errorf("%w: duplicate priority %q", domain.ErrInvalidQuery, p)
		}
		seen[p] = struct{}{}
	}

	return StructuredQuery{
		category: category,
		budget:   budget,
		priority: slices.Clone(priority),
		brand:    dedupeBrands(brand),
	}, nil
}

// Default returns the safe fallback query used when interpretation fails.
func Default() StructuredQuery {
	return StructuredQuery{
		category: Smartphone,
		budget:   20000,
		priority: []string{FeaturePerformance, FeatureCamera},
		brand:    []string{},
	}
}

// Category returns the product category.
func (q StructuredQuery) Category() Category { return q.category }

// Budget returns the budget ceiling, 0 when unset.
func (q StructuredQuery) Budget() int { return q.budget }

// HasBudget reports whether a budget ceiling is set.
func (q StructuredQuery) HasBudget() bool { return q.budget > 0 }

// Priority returns the feature tags in relevance order.
func (q StructuredQuery) Priority() []string { return slices.Clone(q.priority) }

// Brand returns the brand tokens in insertion order.
func (q StructuredQuery) Brand() []string { return slices.Clone(q.brand) }

// SearchString joins category, brands, priorities and the budget clause.
func (q StructuredQuery) SearchString() string {
	parts := make([]string, 0, 2+len(q.brand)+len(q.priority))
	parts = append(parts, string(q.category))
	parts = append(parts, q.brand...)
	parts = append(parts, q.priority...)
	if q.HasBudget() {
		parts = append(parts, fmt.Sprintf("under %d", q.budget))
	}
	return strings.Join(parts, " ")
}

type wireQuery struct {
	Category string   `json:"category"`
	Budget   *int     `json:"budget"`
	Priority []string `json:"priority"`
	Brand    []string `json:"brand"`
}

// MarshalJSON encodes the query; an unset budget is null.
func (q StructuredQuery) MarshalJSON() ([]byte, error) {
	w := wireQuery{
		Category: string(q.category),
		Priority: q.priority,
		Brand:    q.brand,
	}
	if w.Priority == nil {
		w.Priority = []string{}
	}
	if w.Brand == nil {
		w.Brand = []string{}
	}
	if q.HasBudget() {
		b := q.budget
		w.Budget = &b
	}
	return json.Marshal(w) //nolint:wrapcheck // plain struct encoding
}

// UnmarshalJSON decodes and validates a query.
func (q *StructuredQuery) UnmarshalJSON(data []byte) error {
	var w wireQuery
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	budget := 0
	if w.Budget != nil {
		budget = *w.Budget
	}
	parsed, err := New(Category(strings.ToLower(w.Category)), budget, w.Priority, w.Brand)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func dedupeBrands(brand []string) []string {
	out := make([]string, 0, len(brand))
	seen := make(map[string]struct{}, len(brand))
	for _, b := range brand {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
