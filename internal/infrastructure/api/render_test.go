package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"textloop-gateway/internal/infrastructure/middleware"
	"textloop-gateway/internal/infrastructure/platform"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRenderError_UnauthorizedClearsCookieAndRedirects(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RenderError(rec, zerolog.Nop(), &platform.Error{
		Message: "Your session has expired. Please sign in again.",
		Status:  http.StatusUnauthorized,
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge, "the session cookie must be expired")

	var body struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Status   int    `json:"status"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, http.StatusUnauthorized, body.Status)
	require.Equal(t, "/login", body.Redirect)
	require.Equal(t, "Your session has expired. Please sign in again.", body.Message)
}

func TestRenderError_NonUnauthorizedKeepsCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RenderError(rec, zerolog.Nop(), &platform.Error{Message: "Name is required", Status: http.StatusBadRequest})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	var body struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Empty(t, body.Redirect)
}

func TestRenderError_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *platform.Error
		want int
	}{
		{"network error maps to bad gateway", &platform.Error{Message: "down", Status: 0, IsNetworkError: true}, http.StatusBadGateway},
		{"status zero maps to internal", &platform.Error{Message: "encode failed", Status: 0}, http.StatusInternalServerError},
		{"timeout keeps 408", &platform.Error{Message: "slow", Status: http.StatusRequestTimeout, IsTimeoutError: true}, http.StatusRequestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RenderError(rec, zerolog.Nop(), tt.err)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}
