package interpret

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/logger"
)

// Service turns free text into a StructuredQuery using fixed rule tables.
type Service struct{}

// New creates an interpreter.
func New() *Service { return &Service{} }

// Interpret never fails: any internal fault yields query.Default().
func (s *Service) Interpret(ctx context.Context, text string) (q query.StructuredQuery) {
	log := logger.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Warn("query interpretation failed, using default", zap.Any("panic", r))
			q = query.Default()
		}
	}()

	q, err := parse(text)
	if err != nil {
		log.Warn("query interpretation failed, using default", zap.Error(err))
		return query.Default()
	}

	log.Debug("query interpreted",
		zap.String("category", string(q.Category())),
		zap.Int("budget", q.Budget()),
		zap.Strings("priority", q.Priority()),
		zap.Strings("brand", q.Brand()),
	)
	return q
}

func parse(text string) (query.StructuredQuery, error) {
	lower := strings.ToLower(text)

	category := extractCategory(lower)
	budget, err := extractBudget(lower)
	if err != nil {
		return query.StructuredQuery{}, err
	}
	priority := extractPriorities(lower)
	brand := extractBrands(lower)

	for _, rc := range reclassifications {
		if containsAny(lower, rc.tokens) {
			category = rc.category
			brand = append(brand, rc.brand)
		}
	}

	if len(priority) == 0 {
		if d, ok := defaultPriorities[category]; ok {
			priority = slices.Clone(d)
		} else {
			priority = slices.Clone(fallbackPriorities)
		}
	}

	priority = applyOverrides(lower, category, priority)

	return query.New(category, budget, priority, brand) //nolint:wrapcheck // domain error carries context
}

func extractCategory(lower string) query.Category {
	for _, r := range categoryRules {
		if r.re.MatchString(lower) {
			return r.category
		}
	}
	return query.Electronics
}

// extractBudget returns 0 when no rule matches.
func extractBudget(lower string) (int, error) {
	for _, r := range budgetRules {
		m := r.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		digits := strings.ReplaceAll(m[1], ",", "")
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, fmt.Errorf("parse budget %q: %w", m[1], err)
		}
		mult := r.multiplier
		if len(m) > 2 && m[2] != "" {
			mult = 1000
		}
		if mult > 1 && n > math.MaxInt/mult {
			return 0, fmt.Errorf("budget %q overflows", m[0])
		}
		return n * mult, nil
	}
	return 0, nil
}

func extractPriorities(lower string) []string {
	var out []string
	for _, r := range featureRules {
		if containsAny(lower, r.keywords) && !slices.Contains(out, r.feature) {
			out = append(out, r.feature)
		}
	}
	return out
}

func extractBrands(lower string) []string {
	var out []string
	for _, b := range brandVocabulary {
		if strings.Contains(lower, b) {
			out = append(out, b)
		}
	}
	for _, bi := range brandImplications {
		if strings.Contains(lower, bi.token) {
			out = append(out, bi.brand)
		}
	}
	return out
}

func applyOverrides(lower string, category query.Category, priority []string) []string {
	for _, o := range overrides {
		if !containsAny(lower, o.tokens) {
			continue
		}
		if len(o.categories) > 0 && !slices.Contains(o.categories, category) {
			continue
		}
		if slices.Contains(priority, o.feature) {
			continue
		}
		if o.place == front {
			priority = append([]string{o.feature}, priority...)
		} else {
			priority = append(priority, o.feature)
		}
	}
	return priority
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
