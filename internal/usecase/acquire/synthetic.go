package acquire

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
)

const placeholderImageURL = "https://via.placeholder.com/200x200?text="

// Synthesize builds a deterministic offline catalog for q. The result is never
// empty: when brand or budget filtering removes every listing, a single relief
// listing takes its place. With a budget set, every price fits it.
func Synthesize(q query.StructuredQuery) []product.Candidate {
	sh, ok := shelfFor(q.Category())
	if !ok {
		return toCandidates(genericListings(q.Category(), q.Budget()))
	}

	items := sh.listings
	if brands := q.Brand(); len(brands) > 0 {
		items = filterByBrand(items, brands)
		if len(items) == 0 {
			items = []listing{sh.brandRelief(brands[0], q.Budget())}
		}
	}
	if q.HasBudget() {
		items = filterByBudget(items, q.Budget())
		if len(items) == 0 {
			items = []listing{sh.budgetRelief(q.Budget())}
		}
	}
	return toCandidates(items)
}

func filterByBrand(items []listing, brands []string) []listing {
	var out []listing
	for _, it := range items {
		title := strings.ToLower(it.title)
		for _, b := range brands {
			if strings.Contains(title, b) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func filterByBudget(items []listing, budget int) []listing {
	var out []listing
	for _, it := range items {
		if it.price <= budget {
			out = append(out, it)
		}
	}
	return out
}

func toCandidates(items []listing) []product.Candidate {
	out := make([]product.Candidate, 0, len(items))
	for _, it := range items {
		c, err := product.New(it.id, product.Attrs{
			Title:    it.title,
			Price:    it.price,
			Rating:   product.Rating(it.rating),
			Features: it.features,
			Reviews:  it.reviews,
			Image:    placeholderImage(it.title),
		})
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// placeholderImage returns a generated image URI labelled with the first ten
// characters of title.
func placeholderImage(title string) string {
	label := title
	if utf8.RuneCountInString(label) > 10 {
		label = string([]rune(label)[:10])
	}
	return placeholderImageURL + strings.ReplaceAll(url.QueryEscape(label), "+", "%20")
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
