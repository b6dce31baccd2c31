package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/infrastructure/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware_ResolvesCookieToSession(t *testing.T) {
	t.Parallel()

	store := repository.NewMemorySessionStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, store.SetToken(ctx, "sess-1", "tok-1"))
	require.NoError(t, store.SetStoreIdentity(ctx, "sess-1", &domain.StoreIdentity{
		ID:         "store-1",
		ShopDomain: "demo.myshopify.com",
	}))

	var gotID string
	var gotSession *domain.Session
	handler := SessionMiddleware(store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = domain.GetSessionIDFromContext(r.Context())
		gotSession = domain.GetSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/campaigns", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "sess-1", gotID)
	require.NotNil(t, gotSession)
	require.Equal(t, "tok-1", gotSession.Token)
	require.Equal(t, "demo.myshopify.com", gotSession.Store.ShopDomain)

	// An existing cookie is not re-set.
	require.Empty(t, rec.Result().Cookies())
}

func TestSessionMiddleware_MintsCookieWhenAbsent(t *testing.T) {
	t.Parallel()

	store := repository.NewMemorySessionStore(time.Hour)

	var gotID string
	var gotSession *domain.Session
	handler := SessionMiddleware(store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = domain.GetSessionIDFromContext(r.Context())
		gotSession = domain.GetSessionFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

	require.Len(t, gotID, 32, "minted IDs are 16 random bytes hex-encoded")
	require.Nil(t, gotSession, "a fresh session ID has no stored session yet")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	require.Equal(t, SessionCookieName, cookie.Name)
	require.Equal(t, gotID, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestSessionMiddleware_UnknownCookieKeepsID(t *testing.T) {
	t.Parallel()

	store := repository.NewMemorySessionStore(time.Hour)

	var gotID string
	var gotSession *domain.Session
	handler := SessionMiddleware(store, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = domain.GetSessionIDFromContext(r.Context())
		gotSession = domain.GetSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-id"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// The ID stays so the OAuth callback can write into it; there is just no
	// resolved session.
	require.Equal(t, "stale-id", gotID)
	require.Nil(t, gotSession)
}
