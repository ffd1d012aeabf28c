// Package notify is the outbound notification sink. Callers fire and forget;
// the sink decides how messages reach the user (the SPA toasts whatever the
// response echoes back, this side logs and counts).
package notify

import (
	"context"
	"log/slog"

	"baryo/internal/platform/metrics"
)

// Kind classifies a notification for presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notifier delivers a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string, kind Kind)
}

// Sink is the default Notifier: structured log plus a per-kind counter.
type Sink struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewSink(logger *slog.Logger, m *metrics.Metrics) *Sink {
	return &Sink{logger: logger, metrics: m}
}

func (s *Sink) Notify(ctx context.Context, message string, kind Kind) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "notification", "kind", string(kind), "message", message)
	}
	if s.metrics != nil {
		s.metrics.Notifications.WithLabelValues(string(kind)).Inc()
	}
}

// Discard swallows notifications; used in tests.
type Discard struct{}

func (Discard) Notify(context.Context, string, Kind) {}
