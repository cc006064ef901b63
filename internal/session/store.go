// Package session persists conversation state and dispatch records keyed by
// conversation key. Two backends are provided: Redis for production and an
// in-memory map for single-instance or test use.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mackflow-bridge/internal/models"
)

// Store is the persistence capability the triage and dispatch layers need.
// Lookups return (nil, nil) when the key is unknown or the entry has expired.
type Store interface {
	GetSession(ctx context.Context, key string) (*models.ConversationSession, error)
	PutSession(ctx context.Context, key string, sess *models.ConversationSession) error
	DeleteSession(ctx context.Context, key string) error

	GetDispatch(ctx context.Context, key string) (*models.DispatchRecord, error)
	PutDispatch(ctx context.Context, key string, rec *models.DispatchRecord) error
}

// TTLs bundles the expiries applied by a Store implementation.
type TTLs struct {
	Session  time.Duration
	Dispatch time.Duration
}

const (
	sessionKeyPrefix  = "session:"
	dispatchKeyPrefix = "dispatch:"
)

func encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode store entry: %w", err)
	}
	return data, nil
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode store entry: %w", err)
	}
	return nil
}
