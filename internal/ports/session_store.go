package ports

import (
	"context"

	"textloop-gateway/internal/domain"
)

// SessionStore defines the interface for session persistence. It is the one
// shared mutable resource in the gateway: written by the session handshake,
// by the 401 handler in the platform client, and by logout.
type SessionStore interface {
	// Get retrieves a session by ID. Returns nil (not an error) when the
	// session does not exist or has expired.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// SetToken persists the bearer token, creating the session if needed.
	SetToken(ctx context.Context, sessionID string, token string) error

	// SetStoreIdentity persists the cached store identity alongside the token.
	SetStoreIdentity(ctx context.Context, sessionID string, store *domain.StoreIdentity) error

	// Clear removes the session (token and store identity together).
	// Clearing an absent session is not an error.
	Clear(ctx context.Context, sessionID string) error
}
