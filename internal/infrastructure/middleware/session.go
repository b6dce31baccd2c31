package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// SessionCookieName carries the opaque session ID between browser and
// gateway. The ID identifies the session document; the bearer token itself
// never leaves the server side.
const SessionCookieName = "tl_session"

// SessionMiddleware resolves the session cookie into a session and threads
// both the ID and (when present) the resolved session through the request
// context. Requests without a cookie get a fresh ID minted so the OAuth
// callback has a session to write into.
func SessionMiddleware(store ports.SessionStore, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			}

			if sessionID == "" {
				sessionID = newSessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx = domain.WithSessionID(ctx, sessionID)

			session, err := store.Get(ctx, sessionID)
			if err != nil {
				logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to load session")
			}
			if session != nil {
				ctx = domain.WithSession(ctx, session)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClearSessionCookie expires the session cookie on the response.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// newSessionID generates a random session ID (16 bytes = 32 hex characters)
func newSessionID() string {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(idBytes)
}
