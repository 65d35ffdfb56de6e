// Package sinks provides progress.Sink implementations for structured logs
// and Prometheus metrics.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/progress"
)

// LogSink emits structured logs for the batch progress stream. It is the
// CLI equivalent of the original's stderr percentage line.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageJobDone:
			s.logger.Info("job completed",
				zap.String("batch_id", evt.BatchID.String()),
				zap.String("identifier", evt.Identifier),
				zap.Bool("success", evt.Success),
				zap.Float64("fraction", evt.Fraction()),
				zap.Duration("dur", evt.Dur),
				zap.String("note", evt.Note),
			)
		default:
			s.logger.Info("batch progress",
				zap.String("batch_id", evt.BatchID.String()),
				zap.String("stage", string(evt.Stage)),
				zap.Int("total", evt.Total),
				zap.Duration("dur", evt.Dur),
			)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
