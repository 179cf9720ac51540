package processlog

import "context"

// Sink persists process-log entries. Implementations keep only the most
// recent entries up to their capacity and list them oldest first.
type Sink interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}
