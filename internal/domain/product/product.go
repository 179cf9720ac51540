package product

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/shopsense/internal/domain"
)

// MaxRating is the upper bound of a marketplace star rating.
const MaxRating = 5.0

// Attrs holds the descriptive attributes of a listing.
type Attrs struct {
	Title      string
	Price      int
	Rating     *float64
	Features   []string
	Reviews    []string
	Image      string
	ProductURL string
}

// Candidate is a single product listing. Identity is fixed at creation;
// enrichment returns a new value.
type Candidate struct {
	id         string
	title      string
	price      int
	rating     *float64
	features   []string
	reviews    []string
	image      string
	productURL string
	structured SentimentMap
}

// New validates and creates a Candidate.
func New(id string, a Attrs) (Candidate, error) {
	if id == "" {
		return Candidate{}, fmt.Errorf("%w: id is required", domain.ErrInvalidCandidate)
	}
	if a.Title == "" {
		return Candidate{}, fmt.Errorf("%w: title is required", domain.ErrInvalidCandidate)
	}
	if a.Price <= 0 {
		return Candidate{}, fmt.Errorf("%w: price must be positive, got %d", domain.ErrInvalidCandidate, a.Price)
	}
	var rating *float64
	if a.Rating != nil {
		r := *a.Rating
		if r < 0 || r > MaxRating {
			return Candidate{}, fmt.Errorf("%w: rating %.2f out of range [0,5]", domain.ErrInvalidCandidate, r)
		}
		rating = &r
	}

	return Candidate{
		id:         id,
		title:      a.Title,
		price:      a.Price,
		rating:     rating,
		features:   slices.Clone(a.Features),
		reviews:    slices.Clone(a.Reviews),
		image:      a.Image,
		productURL: a.ProductURL,
	}, nil
}

// Rating is a convenience for building Attrs.
func Rating(r float64) *float64 { return &r }

// ID returns the candidate identifier.
func (c Candidate) ID() string { return c.id }

// Title returns the listing title.
func (c Candidate) Title() string { return c.title }

// Price returns the listing price.
func (c Candidate) Price() int { return c.price }

// Rating returns the star rating and whether one is present.
func (c Candidate) Rating() (float64, bool) {
	if c.rating == nil {
		return 0, false
	}
	return *c.rating, true
}

// Features returns the feature strings.
func (c Candidate) Features() []string { return slices.Clone(c.features) }

// Reviews returns the review strings.
func (c Candidate) Reviews() []string { return slices.Clone(c.reviews) }

// Image returns the image URI.
func (c Candidate) Image() string { return c.image }

// ProductURL returns the listing URI, empty when unknown.
func (c Candidate) ProductURL() string { return c.productURL }

// StructuredReviews returns the sentiment map, empty before enrichment.
func (c Candidate) StructuredReviews() SentimentMap { return c.structured }

// WithStructuredReviews returns a copy enriched with the given sentiment map.
func (c Candidate) WithStructuredReviews(m SentimentMap) Candidate {
	out := c
	out.features = slices.Clone(c.features)
	out.reviews = slices.Clone(c.reviews)
	out.structured = NewSentimentMap(m.entries...)
	return out
}

type wireCandidate struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Price             int           `json:"price"`
	Rating            *float64      `json:"rating"`
	Features          []string      `json:"features"`
	Reviews           []string      `json:"reviews"`
	Image             string        `json:"image"`
	ProductURL        string        `json:"productUrl,omitempty"`
	StructuredReviews *SentimentMap `json:"structuredReviews,omitempty"`
}

// MarshalJSON encodes the candidate in the public wire shape.
func (c Candidate) MarshalJSON() ([]byte, error) {
	w := wireCandidate{
		ID:         c.id,
		Title:      c.title,
		Price:      c.price,
		Rating:     c.rating,
		Features:   c.features,
		Reviews:    c.reviews,
		Image:      c.image,
		ProductURL: c.productURL,
	}
	if w.Features == nil {
		w.Features = []string{}
	}
	if w.Reviews == nil {
		w.Reviews = []string{}
	}
	if c.structured.Len() > 0 {
		s := c.structured
		w.StructuredReviews = &s
	}
	return json.Marshal(w) //nolint:wrapcheck // plain struct encoding
}

// UnmarshalJSON decodes and validates a candidate.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var w wireCandidate
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidCandidate, err)
	}
	parsed, err := New(w.ID, Attrs{
		Title:      w.Title,
		Price:      w.Price,
		Rating:     w.Rating,
		Features:   w.Features,
		Reviews:    w.Reviews,
		Image:      w.Image,
		ProductURL: w.ProductURL,
	})
	if err != nil {
		return err
	}
	if w.StructuredReviews != nil {
		parsed = parsed.WithStructuredReviews(*w.StructuredReviews)
	}
	*c = parsed
	return nil
}
