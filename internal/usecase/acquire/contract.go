package acquire

import (
	"context"
	"time"
)

// Browser opens isolated page-rendering sessions.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session is a single rendered page. Close must be safe to call on every path.
type Session interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Content(ctx context.Context) (string, error)
	Close() error
}

// Limiter paces outbound marketplace requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}
