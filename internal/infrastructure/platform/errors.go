package platform

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// FieldError is one entry of the platform's validation detail list.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error is the single normalized failure shape surfaced by the client.
// Message is always non-empty; callers never see transport plumbing.
type Error struct {
	Message        string          `json:"message"`
	Status         int             `json:"status"`
	Code           string          `json:"code,omitempty"`
	Details        []FieldError    `json:"details,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	IsNetworkError bool            `json:"isNetworkError,omitempty"`
	IsTimeoutError bool            `json:"isTimeoutError,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// AsError unwraps err into a *Error, or nil if it is not one.
func AsError(err error) *Error {
	if apiErr, ok := err.(*Error); ok {
		return apiErr
	}
	return nil
}

// IsUnauthorized reports whether err is a normalized 401.
func IsUnauthorized(err error) bool {
	apiErr := AsError(err)
	return apiErr != nil && apiErr.Status == http.StatusUnauthorized
}

func networkError() *Error {
	return &Error{
		Message:        "Network error. Please check your connection and try again.",
		Status:         0,
		IsNetworkError: true,
	}
}

func timeoutError() *Error {
	return &Error{
		Message:        "Request timeout. The server took too long to respond.",
		Status:         http.StatusRequestTimeout,
		IsTimeoutError: true,
	}
}

func unauthorizedError() *Error {
	return &Error{
		Message: "Your session has expired. Please sign in again.",
		Status:  http.StatusUnauthorized,
	}
}

// errorBody is the platform's error envelope.
type errorBody struct {
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details"`
}

// httpError shapes a non-2xx response into an Error. The message is chosen
// with priority: body message, first validation detail, body error code,
// generic text.
func httpError(status int, raw []byte) *Error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" && len(body.Details) > 0 {
		detail := body.Details[0]
		if detail.Field != "" {
			message = fmt.Sprintf("%s: %s", detail.Field, detail.Message)
		} else {
			message = detail.Message
		}
	}
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}

	return &Error{
		Message: message,
		Status:  status,
		Code:    body.Code,
		Details: body.Details,
		Data:    json.RawMessage(raw),
	}
}
