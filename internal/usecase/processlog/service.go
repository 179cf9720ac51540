package processlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/logger"
)

// Service records summarized pipeline steps into a sink.
type Service struct {
	sink Sink
	now  func() time.Time
}

// New creates a process-log service.
func New(sink Sink) *Service {
	return &Service{sink: sink, now: time.Now}
}

// Record summarizes data and appends it under step. Failures are logged and
// dropped so recording never affects the caller.
func (s *Service) Record(ctx context.Context, step string, data any) {
	log := logger.FromContext(ctx)

	raw, err := json.Marshal(Summarize(data))
	if err != nil {
		log.Warn("Failed to encode process log data", zap.String("step", step), zap.Error(err))
		raw = json.RawMessage(`"Error processing log data"`)
	}

	e := Entry{Timestamp: s.now().UTC(), Step: step, Data: raw}
	if err := s.sink.Append(ctx, e); err != nil {
		log.Warn("Failed to record process step", zap.String("step", step), zap.Error(err))
		return
	}
	log.Debug("Process step recorded", zap.String("step", step))
}

// List returns retained entries, oldest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.sink.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list process log: %w", err)
	}
	return entries, nil
}

// Clear drops all retained entries.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.sink.Clear(ctx); err != nil {
		return fmt.Errorf("clear process log: %w", err)
	}
	return nil
}
