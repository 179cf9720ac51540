package domain

import "errors"

var (
	// ErrInvalidQuery signals a structured query that violates its invariants.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidCandidate signals a product candidate with missing or out-of-range attributes.
	ErrInvalidCandidate = errors.New("invalid candidate")
	// ErrEmptyCatalog signals that ranking was asked to score zero candidates.
	ErrEmptyCatalog = errors.New("empty catalog")
	// ErrNoListings signals that a rendered results page yielded no extractable cards.
	ErrNoListings = errors.New("no listings extracted")
	// ErrBrowserUnavailable signals that no page-rendering session could be opened.
	ErrBrowserUnavailable = errors.New("browser unavailable")
	// ErrBrowserBusy signals that every browser session slot stayed taken for the whole queue wait.
	ErrBrowserBusy = errors.New("no browser session slot free")
)
