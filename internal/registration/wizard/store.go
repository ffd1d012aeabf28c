package wizard

import (
	"context"
	"sync"

	dErrors "baryo/pkg/domain-errors"
)

// ErrNotFound keeps session 404s consistent across store implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "wizard session not found")

// Store persists wizard sessions between requests.
type Store interface {
	Save(ctx context.Context, session *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryStore keeps sessions in a map; the default for development and
// single-instance deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

func (s *InMemoryStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
