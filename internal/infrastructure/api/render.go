// Package api exposes the dashboard's REST surface over chi. Handlers are
// thin: parse, delegate to an application service, render. All failure
// rendering funnels through RenderError so the platform error taxonomy maps
// to HTTP exactly once.
package api

import (
	"encoding/json"
	"net/http"

	"textloop-gateway/internal/infrastructure/middleware"
	"textloop-gateway/internal/infrastructure/platform"

	"github.com/rs/zerolog"
)

// envelope mirrors the platform's response envelope so the dashboard sees
// one contract end to end.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorResponse struct {
	Success        bool                  `json:"success"`
	Message        string                `json:"message"`
	Status         int                   `json:"status"`
	Code           string                `json:"code,omitempty"`
	Details        []platform.FieldError `json:"details,omitempty"`
	IsNetworkError bool                  `json:"isNetworkError,omitempty"`
	IsTimeoutError bool                  `json:"isTimeoutError,omitempty"`
	Redirect       string                `json:"redirect,omitempty"`
}

// RenderData writes a success envelope.
func RenderData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// RenderError maps a normalized platform error onto the HTTP response. A 401
// additionally clears the session cookie and carries a login redirect hint;
// the session document itself was already purged by the platform client.
func RenderError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	apiErr := platform.AsError(err)
	if apiErr == nil {
		logger.Error().Err(err).Msg("Unexpected error reached the handler layer")
		apiErr = &platform.Error{Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError}
	}

	httpStatus := apiErr.Status
	switch {
	case apiErr.IsNetworkError:
		httpStatus = http.StatusBadGateway
	case apiErr.Status == 0:
		httpStatus = http.StatusInternalServerError
	}

	body := errorResponse{
		Message:        apiErr.Message,
		Status:         apiErr.Status,
		Code:           apiErr.Code,
		Details:        apiErr.Details,
		IsNetworkError: apiErr.IsNetworkError,
		IsTimeoutError: apiErr.IsTimeoutError,
	}

	if apiErr.Status == http.StatusUnauthorized {
		middleware.ClearSessionCookie(w)
		body.Redirect = "/login"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeBody parses a JSON object request body. Returns false after writing
// a 400 when the body does not parse.
func decodeBody(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RenderError(w, logger, &platform.Error{
			Message: "Request body must be a JSON object",
			Status:  http.StatusBadRequest,
		})
		return nil, false
	}
	return payload, true
}
