package session

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
)

// MemoryStore is a process-local Store used by tests and as a driver for
// running without a database. Payloads are deep-copied on both load and save
// so callers never share map state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]json.RawMessage)}
}

func (s *MemoryStore) Load(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.sessions[token]
	if !ok {
		return New(token), nil
	}
	return &Session{token: token, values: maps.Clone(values)}, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.token] = maps.Clone(sess.values)
	sess.dirty = false
	sess.isNew = false
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}
