package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher and persists them to the
// outbox. A failed append is logged, not fatal: losing one event must not
// take the consumer loop down.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append audit event",
					slog.String("event_id", event.ID),
					slog.String("action", event.Action),
					slog.Any("error", err),
				)
			}
		}
	}
}
