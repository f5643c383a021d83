package memory

import (
	"context"
	"sync"

	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// SessionStore is an in-memory implementation of ports.SessionStore.
// Unknown tokens resolve to an invalid session rather than an error;
// errors are reserved for infrastructure failures.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]ports.Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]ports.Session)}
}

// Get resolves a session token.
func (s *SessionStore) Get(_ context.Context, token string) (ports.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return ports.Session{Valid: false}, nil
	}
	return sess, nil
}

// Put stores a session under a token (seeding and tests).
func (s *SessionStore) Put(token string, sess ports.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sess
}

// Revoke removes a session.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Ensure interface compliance.
var _ ports.SessionStore = (*SessionStore)(nil)
