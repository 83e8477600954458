package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresStore keeps session payloads in a sessions table, one row per
// token, with an expiry bound enforced on load.
type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewPostgresStore(db *sql.DB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl}
}

func (s *PostgresStore) Load(ctx context.Context, token string) (*Session, error) {
	const query = `SELECT data FROM sessions WHERE token = $1 AND expires_at > NOW()`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, token).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return New(token), nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		// Unreadable payload: start over rather than lock the visitor out.
		return New(token), nil
	}

	return &Session{token: token, values: values}, nil
}

func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess.values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	const upsert = `
INSERT INTO sessions (token, data, expires_at, updated_at)
VALUES ($1, $2, NOW() + $3::interval, NOW())
ON CONFLICT (token) DO UPDATE
SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = NOW()
`
	interval := fmt.Sprintf("%d seconds", int64(s.ttl.Seconds()))
	if _, err := s.db.ExecContext(ctx, upsert, sess.token, data, interval); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	sess.dirty = false
	sess.isNew = false
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
