package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/infrastructure/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testSessionContext() context.Context {
	ctx := domain.WithSessionID(context.Background(), "sess-1")
	return domain.WithSession(ctx, &domain.Session{
		ID:    "sess-1",
		Token: "tok-abc",
		Store: &domain.StoreIdentity{ID: "store-1", ShopDomain: "demo.myshopify.com"},
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *repository.MemorySessionStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := repository.NewMemorySessionStore(time.Hour)
	return NewClient(server.URL, sessions, zerolog.Nop()), sessions
}

func TestClient_InjectsCredentials(t *testing.T) {
	t.Parallel()

	var gotAuth, gotShop string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotShop = r.Header.Get("X-Shopify-Shop-Domain")
		w.Write([]byte(`{}`))
	})

	_, err := client.Get(testSessionContext(), "/campaigns", nil)
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-abc", gotAuth)
	require.Equal(t, "demo.myshopify.com", gotShop)
}

func TestClient_NoSessionNoHeaders(t *testing.T) {
	t.Parallel()

	var hasAuth bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	})

	_, err := client.Get(context.Background(), "/campaigns", nil)
	require.NoError(t, err)
	require.False(t, hasAuth)
}

func TestClient_UnwrapsSuccessEnvelope(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"foo":1}}`))
	})

	raw, err := client.Get(testSessionContext(), "/campaigns", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"foo":1}`, string(raw))
}

func TestClient_NonEnvelopePassesThrough(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"campaigns":[],"pagination":{}}`,
		`[1,2,3]`,
		`{"success":false,"data":{"foo":1}}`,
		`{"success":true}`,
	} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		raw, err := client.Get(testSessionContext(), "/x", nil)
		require.NoError(t, err)
		require.JSONEq(t, body, string(raw), "body %s", body)
	}
}

func TestClient_ErrorMessagePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"body message wins", `{"message":"Name is required","error":"BAD_REQUEST"}`, "Name is required"},
		{"first detail with field", `{"details":[{"field":"name","message":"is required"},{"field":"trigger","message":"unknown"}]}`, "name: is required"},
		{"detail without field", `{"details":[{"message":"invalid payload"}]}`, "invalid payload"},
		{"error code fallback", `{"error":"INVALID_STATE"}`, "INVALID_STATE"},
		{"generic fallback", `{}`, "Request failed with status 422"},
		{"non-JSON body", `oops`, "Request failed with status 422"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			})

			_, err := client.Post(testSessionContext(), "/campaigns", map[string]any{})
			apiErr := AsError(err)
			require.NotNil(t, apiErr)
			require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
			require.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestClient_UnauthorizedPurgesSession(t *testing.T) {
	t.Parallel()

	client, sessions := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	})

	ctx := testSessionContext()
	require.NoError(t, sessions.SetToken(ctx, "sess-1", "tok-abc"))

	_, err := client.Get(ctx, "/campaigns", nil)
	require.True(t, IsUnauthorized(err))
	require.Equal(t, "Your session has expired. Please sign in again.", AsError(err).Message)

	stored, getErr := sessions.Get(ctx, "sess-1")
	require.NoError(t, getErr)
	require.Nil(t, stored, "session must be purged after a 401")
}

func TestClient_RetriesServerErrorOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"ok":true}}`))
	})

	raw, err := client.Get(testSessionContext(), "/campaigns", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(raw))
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad input"}`))
	})

	_, err := client.Post(testSessionContext(), "/campaigns", map[string]any{})
	require.Equal(t, "bad input", AsError(err).Message)
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_PersistentServerErrorSurfaces(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"still broken"}`))
	})

	_, err := client.Get(testSessionContext(), "/campaigns", nil)
	apiErr := AsError(err)
	require.NotNil(t, apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, int32(2), calls.Load(), "exactly one retry")
}

func TestClient_NetworkError(t *testing.T) {
	t.Parallel()

	sessions := repository.NewMemorySessionStore(time.Hour)
	client := NewClient("http://127.0.0.1:1", sessions, zerolog.Nop())

	_, err := client.Get(testSessionContext(), "/campaigns", nil)
	apiErr := AsError(err)
	require.NotNil(t, apiErr)
	require.True(t, apiErr.IsNetworkError)
	require.Equal(t, 0, apiErr.Status)
}

func TestClient_QueryEncoding(t *testing.T) {
	t.Parallel()

	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	})

	query := map[string][]string{"page": {"2"}, "search": {"flash sale"}}
	_, err := client.Get(testSessionContext(), "/campaigns", query)
	require.NoError(t, err)
	require.Equal(t, "page=2&search=flash+sale", gotQuery)
}

func TestClient_VerifyToken(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/verify", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"store":{"storeId":"store-9","shopDomain":"nine.myshopify.com","shopName":"Nine","credits":12.5,"currency":"USD"}}}`))
	})

	identity, err := client.VerifyToken(testSessionContext())
	require.NoError(t, err)
	require.Equal(t, "store-9", identity.ID)
	require.Equal(t, "nine.myshopify.com", identity.ShopDomain)
	require.Equal(t, 12.5, identity.Credits)
}

func TestClient_FetchSettingsFlatIdentity(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/settings", r.URL.Path)
		w.Write([]byte(`{"id":"store-3","shopDomain":"three.myshopify.com","timezone":"UTC"}`))
	})

	identity, err := client.FetchSettings(testSessionContext())
	require.NoError(t, err)
	require.Equal(t, "store-3", identity.ID)
	require.Equal(t, "three.myshopify.com", identity.ShopDomain)
}
