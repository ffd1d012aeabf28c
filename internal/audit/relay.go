package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"baryo/internal/platform/metrics"
)

const (
	relayBatchSize = 100
	relayInterval  = 5 * time.Second
)

// Relay drains unrelayed events from the outbox into a Kafka topic. It
// polls rather than tails so a relay restart picks up where it left off.
type Relay struct {
	store   Store
	client  *kgo.Client
	topic   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRelay(store Store, client *kgo.Client, topic string, logger *slog.Logger, m *metrics.Metrics) *Relay {
	return &Relay{store: store, client: client, topic: topic, logger: logger, metrics: m}
}

// EnsureTopic creates the audit topic if the cluster does not have it yet.
func (r *Relay) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	admin := kadm.NewClient(r.client)
	topics, err := admin.ListTopics(ctx, r.topic)
	if err != nil {
		return fmt.Errorf("list audit topics: %w", err)
	}
	if topics.Has(r.topic) {
		return nil
	}
	if _, err := admin.CreateTopic(ctx, partitions, replication, nil, r.topic); err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	return nil
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(relayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Flush(ctx); err != nil {
				r.logger.ErrorContext(ctx, "relay audit events", slog.Any("error", err))
			}
		}
	}
}

// Flush relays one batch of unrelayed events and marks them done. Events
// are only marked after every produce in the batch succeeded, so a crash
// mid-batch re-relays rather than loses.
func (r *Relay) Flush(ctx context.Context) error {
	events, err := r.store.Unrelayed(ctx, relayBatchSize)
	if err != nil {
		return err
	}
	r.metrics.AuditRelayBacklog.Set(float64(len(events)))
	if len(events) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(events))
	ids := make([]string, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal audit event %s: %w", event.ID, err)
		}
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(event.UserID),
			Value: payload,
		})
		ids = append(ids, event.ID)
	}

	results := r.client.ProduceSync(ctx, records...)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("produce audit events: %w", err)
	}
	return r.store.MarkRelayed(ctx, ids)
}
