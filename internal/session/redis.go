package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mackflow-bridge/internal/models"
)

// RedisStore keeps sessions and dispatch records as JSON values in Redis,
// relying on key expiry for cleanup.
type RedisStore struct {
	client *redis.Client
	ttls   TTLs
}

func NewRedisStore(client *redis.Client, ttls TTLs) *RedisStore {
	return &RedisStore{client: client, ttls: ttls}
}

func (s *RedisStore) GetSession(ctx context.Context, key string) (*models.ConversationSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", key, err)
	}

	var sess models.ConversationSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", key, err)
	}
	return &sess, nil
}

func (s *RedisStore) PutSession(ctx context.Context, key string, sess *models.ConversationSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", key, err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+key, data, s.ttls.Session).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) GetDispatch(ctx context.Context, key string) (*models.DispatchRecord, error) {
	data, err := s.client.Get(ctx, dispatchKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch record %s: %w", key, err)
	}

	var rec models.DispatchRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode dispatch record %s: %w", key, err)
	}
	return &rec, nil
}

func (s *RedisStore) PutDispatch(ctx context.Context, key string, rec *models.DispatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode dispatch record %s: %w", key, err)
	}
	if err := s.client.Set(ctx, dispatchKeyPrefix+key, data, s.ttls.Dispatch).Err(); err != nil {
		return fmt.Errorf("failed to store dispatch record %s: %w", key, err)
	}
	return nil
}
