package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"baryo/pkg/platform/seal"
)

const redisKeyPrefix = "baryo:docreq:"

// RedisStore persists document request sessions with a TTL. Values are
// sealed; requirement uploads carry IDs and personal documents.
type RedisStore struct {
	client *redis.Client
	sealer *seal.Sealer
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, sealer *seal.Sealer, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, sealer: sealer, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal document session: %w", err)
	}
	box, err := s.sealer.Seal(payload)
	if err != nil {
		return fmt.Errorf("seal document session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+session.ID, box, s.ttl).Err(); err != nil {
		return fmt.Errorf("save document session: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, id string) (*Session, error) {
	box, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find document session: %w", err)
	}
	payload, err := s.sealer.Open(box)
	if err != nil {
		return nil, fmt.Errorf("open document session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal document session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete document session: %w", err)
	}
	return nil
}
