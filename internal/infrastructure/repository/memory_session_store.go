package repository

import (
	"context"
	"sync"
	"time"

	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/ports"
)

// MemorySessionStore implements ports.SessionStore in process memory.
// Used in tests and when the gateway runs without MongoDB.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	ttl      time.Duration
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
	}
}

// Get retrieves a session by ID
func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, nil
	}

	copied := *session
	if session.Store != nil {
		store := *session.Store
		copied.Store = &store
	}
	return &copied, nil
}

// SetToken persists the bearer token, creating the session if needed
func (s *MemorySessionStore) SetToken(ctx context.Context, sessionID string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[sessionID]
	if session == nil {
		session = &domain.Session{ID: sessionID, CreatedAt: time.Now()}
		s.sessions[sessionID] = session
	}
	session.Token = token
	session.ExpiresAt = time.Now().Add(s.ttl)
	return nil
}

// SetStoreIdentity persists the cached store identity
func (s *MemorySessionStore) SetStoreIdentity(ctx context.Context, sessionID string, store *domain.StoreIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[sessionID]
	if session == nil {
		session = &domain.Session{
			ID:        sessionID,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(s.ttl),
		}
		s.sessions[sessionID] = session
	}
	session.Store = store
	return nil
}

// Clear removes the session
func (s *MemorySessionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

var _ ports.SessionStore = (*MemorySessionStore)(nil)
