package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// HandshakeState is a terminal state of the post-OAuth handshake.
type HandshakeState string

const (
	HandshakeSuccess HandshakeState = "success"
	HandshakeError   HandshakeState = "error"
)

// Redirect delays give the user time to read the status screen before the
// browser moves on.
const (
	providerErrorDelay = 3 * time.Second
	missingTokenDelay  = 3 * time.Second
	verifyFailureDelay = 2 * time.Second
	successDelay       = 1500 * time.Millisecond
)

// HandshakeResult describes the terminal state of a handshake and where the
// browser should go next.
type HandshakeResult struct {
	State        HandshakeState
	Message      string
	RedirectPath string
	Delay        time.Duration
}

// HandshakeService runs the one-shot session handshake after the platform's
// OAuth flow redirects back to the dashboard. It persists the token
// optimistically, derives a provisional store identity from the token's
// claims, then verifies with the platform, degrading gracefully when the
// verify endpoint is flaky but refusing to proceed with zero identity
// information.
type HandshakeService struct {
	verifier ports.IdentityVerifier
	sessions ports.SessionStore
	logger   zerolog.Logger
}

// NewHandshakeService creates a new handshake service
func NewHandshakeService(verifier ports.IdentityVerifier, sessions ports.SessionStore, logger zerolog.Logger) *HandshakeService {
	return &HandshakeService{
		verifier: verifier,
		sessions: sessions,
		logger:   logger,
	}
}

// Complete runs the handshake for the given session. token and errParam come
// from the OAuth callback query string; exactly one of them is normally set.
// The procedure is not retryable: every path ends in a terminal result.
func (s *HandshakeService) Complete(ctx context.Context, sessionID, token, errParam string) HandshakeResult {
	if errParam != "" {
		s.logger.Warn().Str("sessionId", sessionID).Str("error", errParam).Msg("OAuth provider returned an error")
		return HandshakeResult{
			State:        HandshakeError,
			Message:      errParam,
			RedirectPath: "/login",
			Delay:        providerErrorDelay,
		}
	}

	if token == "" {
		return HandshakeResult{
			State:        HandshakeError,
			Message:      "No authentication token received. Please try signing in again.",
			RedirectPath: "/login",
			Delay:        missingTokenDelay,
		}
	}

	// Persist the token before any validation so the verify call below is
	// authenticated. A token that later proves invalid is purged again on
	// the fatal path.
	if err := s.sessions.SetToken(ctx, sessionID, token); err != nil {
		s.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to persist session token")
	}

	provisional := s.decodeProvisionalIdentity(sessionID, token)
	if provisional != nil {
		if err := s.sessions.SetStoreIdentity(ctx, sessionID, provisional); err != nil {
			s.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to persist provisional store identity")
		}
	}

	// Later calls authenticate with the token we just received, not with
	// whatever an earlier session carried.
	ctx = domain.WithSession(ctx, &domain.Session{ID: sessionID, Token: token, Store: provisional})

	identity, err := s.verifier.VerifyToken(ctx)
	if err == nil {
		merged := mergeIdentity(identity, provisional)
		if err := s.sessions.SetStoreIdentity(ctx, sessionID, merged); err != nil {
			s.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to persist verified store identity")
		}
		s.logger.Info().Str("sessionId", sessionID).Str("shopDomain", merged.ShopDomain).Msg("Session handshake completed")
		return successResult()
	}

	if provisional != nil && provisional.ShopDomain != "" {
		// Soft fail: the verify endpoint is down or flaky but the token's own
		// claims gave us an identity, and the token may still work for later
		// calls.
		s.logger.Warn().Err(err).Str("sessionId", sessionID).Msg("Token verification failed, continuing with identity from token claims")
		return successResult()
	}

	settingsIdentity, settingsErr := s.verifier.FetchSettings(ctx)
	if settingsErr == nil && settingsIdentity != nil && settingsIdentity.ShopDomain != "" {
		if err := s.sessions.SetStoreIdentity(ctx, sessionID, settingsIdentity); err != nil {
			s.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to persist store identity from settings")
		}
		s.logger.Warn().Str("sessionId", sessionID).Msg("Token verification failed, recovered identity from settings")
		return successResult()
	}

	// No identity from any source: purge the optimistically stored token and
	// give up.
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to clear session after fatal handshake failure")
	}
	s.logger.Error().
		AnErr("verifyError", err).
		AnErr("settingsError", settingsErr).
		Str("sessionId", sessionID).
		Msg("Session handshake failed with no identity source")

	return HandshakeResult{
		State:        HandshakeError,
		Message:      "We couldn't verify your session. Please sign in again.",
		RedirectPath: "/login",
		Delay:        verifyFailureDelay,
	}
}

// decodeProvisionalIdentity attempts a local, unverified decode of the token
// to pre-populate the store identity before the verify call returns. The
// decoded claims are advisory only; failures are swallowed because the token
// may be an opaque credential rather than a JWT and still be valid.
func (s *HandshakeService) decodeProvisionalIdentity(sessionID, token string) *domain.StoreIdentity {
	if len(strings.Split(token, ".")) != 3 {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.logger.Debug().Err(err).Str("sessionId", sessionID).Msg("Token is not a decodable JWT, skipping provisional identity")
		return nil
	}

	storeID := claimString(claims, "storeId")
	shopDomain := claimString(claims, "shopDomain")
	if storeID == "" || shopDomain == "" {
		return nil
	}

	return &domain.StoreIdentity{ID: storeID, ShopDomain: shopDomain}
}

// mergeIdentity overlays the authoritative identity on the provisional one,
// preferring platform values but keeping the decoded shop domain when the
// platform omits it.
func mergeIdentity(authoritative, provisional *domain.StoreIdentity) *domain.StoreIdentity {
	merged := *authoritative
	if merged.ShopDomain == "" && provisional != nil {
		merged.ShopDomain = provisional.ShopDomain
	}
	if merged.ID == "" && provisional != nil {
		merged.ID = provisional.ID
	}
	return &merged
}

func successResult() HandshakeResult {
	return HandshakeResult{
		State:        HandshakeSuccess,
		Message:      "You're signed in. Taking you to your dashboard...",
		RedirectPath: "/dashboard",
		Delay:        successDelay,
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
