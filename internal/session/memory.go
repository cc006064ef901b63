package session

import (
	"context"
	"sync"
	"time"

	"mackflow-bridge/internal/models"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded map with lazy expiry. It is suitable for
// single-instance deployments and tests; idempotency guarantees do not
// survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttls    TTLs
	now     func() time.Time
}

func NewMemoryStore(ttls TTLs) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttls:    ttls,
		now:     time.Now,
	}
}

func (s *MemoryStore) get(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return entry.value
}

func (s *MemoryStore) put(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
}

func (s *MemoryStore) GetSession(ctx context.Context, key string) (*models.ConversationSession, error) {
	data := s.get(sessionKeyPrefix + key)
	if data == nil {
		return nil, nil
	}
	var sess models.ConversationSession
	if err := decode(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemoryStore) PutSession(ctx context.Context, key string, sess *models.ConversationSession) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	s.put(sessionKeyPrefix+key, data, s.ttls.Session)
	return nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionKeyPrefix+key)
	return nil
}

func (s *MemoryStore) GetDispatch(ctx context.Context, key string) (*models.DispatchRecord, error) {
	data := s.get(dispatchKeyPrefix + key)
	if data == nil {
		return nil, nil
	}
	var rec models.DispatchRecord
	if err := decode(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MemoryStore) PutDispatch(ctx context.Context, key string, rec *models.DispatchRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	s.put(dispatchKeyPrefix+key, data, s.ttls.Dispatch)
	return nil
}
