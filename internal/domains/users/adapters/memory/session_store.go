package memory

import (
	"context"
	"sync"
	"time"

	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		sessions: map[string]sessionEntry{},
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sessionEntry{userID: userID, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, entry := range s.sessions {
		if entry.userID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *SessionStore) IsActive(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[token]
	if !ok {
		return false, nil
	}
	return entry.expiresAt.After(s.now()), nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, entry := range s.sessions {
		if !entry.expiresAt.After(now) {
			delete(s.sessions, token)
		}
	}
	return nil
}
