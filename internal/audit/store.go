package audit

import (
	"context"
	"sync"
)

// Store is an append-only outbox for audit events. Unrelayed and
// MarkRelayed exist for the Kafka relay loop.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
	Unrelayed(ctx context.Context, limit int) ([]Event, error)
	MarkRelayed(ctx context.Context, ids []string) error
}

// InMemoryStore backs development and unit tests.
type InMemoryStore struct {
	mu      sync.Mutex
	events  []Event
	relayed map[string]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{relayed: make(map[string]bool)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, event := range s.events {
		if event.UserID == userID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Unrelayed(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, event := range s.events {
		if s.relayed[event.ID] {
			continue
		}
		out = append(out, event)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkRelayed(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.relayed[id] = true
	}
	return nil
}
