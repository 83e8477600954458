package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Session is one visitor's server-side state: a bag of JSON values keyed by
// string, addressed by an opaque token carried in a cookie. Handlers mutate
// it through Set/Delete and the middleware persists it after the request iff
// it was marked dirty.
type Session struct {
	token  string
	values map[string]json.RawMessage
	dirty  bool
	isNew  bool
}

func New(token string) *Session {
	return &Session{
		token:  token,
		values: make(map[string]json.RawMessage),
		isNew:  true,
	}
}

func (s *Session) Token() string { return s.token }

func (s *Session) IsNew() bool { return s.isNew }

// Get unmarshals the value stored under key into dst. The second return is
// false when the key is absent.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode session value %q: %w", key, err)
	}
	return true, nil
}

// GetRaw returns the stored JSON without decoding it.
func (s *Session) GetRaw(key string) (json.RawMessage, bool) {
	raw, ok := s.values[key]
	return raw, ok
}

func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session value %q: %w", key, err)
	}
	s.values[key] = raw
	s.dirty = true
	return nil
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

func (s *Session) Dirty() bool { return s.dirty }

// MarkDirty forces a save even when no value changed through Set/Delete.
func (s *Session) MarkDirty() { s.dirty = true }

// Store loads and persists sessions by token. Load returns a fresh empty
// session when the token is unknown or expired, never an error for a miss.
type Store interface {
	Load(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}
