package api

import (
	"html/template"
	"math"
	"net/http"

	"textloop-gateway/internal/application"
	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/infrastructure/middleware"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// interstitialTemplate renders the post-OAuth status screen. The meta
// refresh keeps the message on screen for the handshake's fixed delay
// before the browser moves on.
var interstitialTemplate = template.Must(template.New("interstitial").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.Seconds}};url={{.Target}}">
<title>Textloop</title>
</head>
<body>
<p>{{.Message}}</p>
<p><a href="{{.Target}}">Continue</a></p>
</body>
</html>
`))

// AuthHandler serves the OAuth callback and logout routes.
type AuthHandler struct {
	handshake    *application.HandshakeService
	sessions     ports.SessionStore
	dashboardURL string
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(handshake *application.HandshakeService, sessions ports.SessionStore, dashboardURL string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		handshake:    handshake,
		sessions:     sessions,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// Callback handles the redirect back from the platform's OAuth flow. Query
// parameters: token (session credential) or error (human-readable message).
// No other parameters are recognized.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := domain.GetSessionIDFromContext(ctx)

	query := r.URL.Query()
	result := h.handshake.Complete(ctx, sessionID, query.Get("token"), query.Get("error"))

	status := http.StatusOK
	if result.State == application.HandshakeError {
		status = http.StatusUnauthorized
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := interstitialTemplate.Execute(w, map[string]any{
		// The refresh parser reads an integer second count; round sub-second
		// delays up so the message stays on screen at least as long as asked.
		"Seconds": int(math.Ceil(result.Delay.Seconds())),
		"Target":  h.dashboardURL + result.RedirectPath,
		"Message": result.Message,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to render handshake interstitial")
	}
}

// Logout clears the session document and the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := domain.GetSessionIDFromContext(ctx)

	if sessionID != "" {
		if err := h.sessions.Clear(ctx, sessionID); err != nil {
			h.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to clear session on logout")
		}
	}

	middleware.ClearSessionCookie(w)
	RenderData(w, http.StatusOK, map[string]any{"loggedOut": true})
}

// Me reports the current session's store identity, or authenticated=false
// when there is no session. The dashboard shell uses this to decide between
// the marketing site and the app.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := domain.GetSessionFromContext(r.Context())
	if session == nil || session.Token == "" {
		RenderData(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	RenderData(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"store":         session.Store,
	})
}
