package domain

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	sessionKey   contextKey = "session"
)

// WithSessionID stores the session ID in the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionIDFromContext retrieves the session ID from the context
func GetSessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSession stores the resolved session in the context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSessionFromContext retrieves the resolved session from the context.
// Returns nil for unauthenticated requests.
func GetSessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok {
		return s
	}
	return nil
}
