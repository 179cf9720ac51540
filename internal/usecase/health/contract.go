package health

import "context"

// Pinger checks availability of a backing component.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the marketplace circuit state.
type BreakerReporter interface {
	BreakerState() string
}
