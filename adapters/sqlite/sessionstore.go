package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// SessionStore is a SQLite implementation of ports.SessionStore.
// Missing or expired tokens resolve to an invalid session; errors are
// reserved for infrastructure failures so the guard can fail closed.
type SessionStore struct {
	db    *DB
	clock ports.Clock
}

// NewSessionStore creates a session store.
func NewSessionStore(db *DB, clock ports.Clock) *SessionStore {
	return &SessionStore{db: db, clock: clock}
}

// Get resolves a session token.
func (s *SessionStore) Get(ctx context.Context, token string) (ports.Session, error) {
	var sess ports.Session
	var verified int
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, email, email_verified, expires_at
		FROM sessions WHERE token = ?
	`, token).Scan(&sess.UserID, &sess.Email, &verified, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Session{Valid: false}, nil
	}
	if err != nil {
		return ports.Session{}, fmt.Errorf("get session: %w", err)
	}

	sess.EmailVerified = verified != 0
	sess.Valid = s.clock.Now().Before(sess.ExpiresAt)
	return sess, nil
}

// Put stores a session (seeding and tests).
func (s *SessionStore) Put(ctx context.Context, token string, sess ports.Session, expiresAt time.Time) error {
	verified := 0
	if sess.EmailVerified {
		verified = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, email, email_verified, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			email_verified = excluded.email_verified,
			expires_at = excluded.expires_at
	`, token, sess.UserID, sess.Email, verified, expiresAt)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// Ensure interface compliance.
var _ ports.SessionStore = (*SessionStore)(nil)
