package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persists audit events in PostgreSQL. The relayed flag
// makes the table an outbox for the Kafka relay.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is applied at startup. Idempotent so restarts are safe.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	user_id    TEXT NOT NULL,
	action     TEXT NOT NULL,
	resource   TEXT NOT NULL,
	device     TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	metadata   JSONB,
	relayed    BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS audit_events_user_idx ON audit_events (user_id, occurred_at);
CREATE INDEX IF NOT EXISTS audit_events_unrelayed_idx ON audit_events (occurred_at) WHERE NOT relayed;
`

// EnsureSchema creates the audit table if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	query := `
		INSERT INTO audit_events (id, occurred_at, user_id, action, resource, device, request_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.UserID, event.Action,
		event.Resource, event.Device, event.RequestID, metadata,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Event, error) {
	query := `
		SELECT id, occurred_at, user_id, action, resource, device, request_id, metadata
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) Unrelayed(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT id, occurred_at, user_id, action, resource, device, request_id, metadata
		FROM audit_events
		WHERE NOT relayed
		ORDER BY occurred_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unrelayed audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) MarkRelayed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE audit_events SET relayed = TRUE WHERE id = ANY($1::uuid[])`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark audit events relayed: %w", err)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var event Event
		var metadata []byte
		err := rows.Scan(
			&event.ID, &event.Timestamp, &event.UserID, &event.Action,
			&event.Resource, &event.Device, &event.RequestID, &metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}
