package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"baryo/internal/platform/metrics"
	"baryo/internal/platform/middleware"
)

// Publisher hands events to the worker over a bounded channel. Emit never
// blocks the request path: when the buffer is full the event is dropped
// and counted.
type Publisher struct {
	inbox   chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewPublisher(buffer int, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		inbox:   make(chan Event, buffer),
		logger:  logger,
		metrics: m,
	}
}

// Inbox is consumed by the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Emit stamps the event with identity, request and device context and
// enqueues it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		if requestID, ok := ctx.Value(middleware.ContextKeyRequestID).(string); ok {
			event.RequestID = requestID
		}
	}
	if event.Device == "" {
		if device, ok := ctx.Value(middleware.ContextKeyDevice).(string); ok {
			event.Device = device
		}
	}

	select {
	case p.inbox <- event:
	default:
		p.metrics.AuditEventsDropped.Inc()
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			slog.String("action", event.Action),
			slog.String("user_id", event.UserID),
		)
	}
}
