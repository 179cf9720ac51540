package shopsense

import "github.com/kailas-cloud/shopsense/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrInvalidCandidate = domain.ErrInvalidCandidate
)
