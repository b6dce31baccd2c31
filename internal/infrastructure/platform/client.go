// Package platform is the HTTP client for the Textloop platform REST API.
// It owns the cross-cutting request/response behavior the rest of the
// gateway relies on: credential injection from the session in the context,
// success-envelope unwrapping, and normalization of every failure into a
// single *Error shape.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const requestTimeout = 30 * time.Second

// shopDomainHeader is a secondary tenant identification channel, independent
// of the token, for platform deployments that key tenancy by header.
const shopDomainHeader = "X-Shopify-Shop-Domain"

// Client implements ports.PlatformAPI and ports.IdentityVerifier over HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions ports.SessionStore
	logger   zerolog.Logger
}

// NewClient creates a platform API client. sessions is used to purge the
// session when the platform answers 401.
func NewClient(baseURL string, sessions ports.SessionStore, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: requestTimeout},
		sessions: sessions,
		logger:   logger,
	}
}

// Get performs a GET request against the platform API.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	target := path
	if len(query) > 0 {
		target = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, target, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("failed to encode request body: %v", err), Status: 0}
		}
	}

	start := time.Now()
	result, err := c.doOnce(ctx, method, path, payload)

	// 5xx responses get exactly one retry; 4xx are treated as non-transient.
	if apiErr := AsError(err); apiErr != nil && apiErr.Status >= http.StatusInternalServerError {
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", apiErr.Status).
			Msg("Platform returned a server error, retrying once")
		result, err = c.doOnce(ctx, method, path, payload)
	}

	requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	requestOutcomes.WithLabelValues(method, path, outcomeLabel(err)).Inc()

	return result, err
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte) (json.RawMessage, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to create request: %v", err), Status: 0}
	}
	req.Header.Set("Content-Type", "application/json")

	if session := domain.GetSessionFromContext(ctx); session != nil {
		if session.Token != "" {
			req.Header.Set("Authorization", "Bearer "+session.Token)
		}
		if session.Store != nil && session.Store.ShopDomain != "" {
			req.Header.Set(shopDomainHeader, session.Store.ShopDomain)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, timeoutError()
		}
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("Platform request failed before a response was received")
		return nil, networkError()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("Platform response body could not be read")
		return nil, networkError()
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.purgeSession(ctx)
		return nil, unauthorizedError()
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, httpError(resp.StatusCode, raw)
	}

	return unwrapEnvelope(raw), nil
}

// purgeSession implements the hard-logout side effect of a 401: the token and
// cached store identity are removed together. There is no refresh-token flow.
func (c *Client) purgeSession(ctx context.Context) {
	session := domain.GetSessionFromContext(ctx)
	if session == nil {
		return
	}
	if err := c.sessions.Clear(ctx, session.ID); err != nil {
		c.logger.Error().Err(err).Str("sessionId", session.ID).Msg("Failed to clear session after 401")
		return
	}
	c.logger.Info().Str("sessionId", session.ID).Msg("Session cleared after unauthorized response")
}

// unwrapEnvelope returns the payload of a {success: true, data: ...} body, or
// the body unchanged when it is not envelope-shaped. Downstream consumers
// never see the envelope.
func unwrapEnvelope(raw []byte) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw
	}

	success, hasSuccess := fields["success"]
	data, hasData := fields["data"]
	if hasSuccess && hasData && string(bytes.TrimSpace(success)) == "true" {
		return data
	}
	return raw
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// identityPayload accepts the identity fields the verify and settings
// endpoints return, either flat or nested under "store".
type identityPayload struct {
	ID         string  `json:"id"`
	StoreID    string  `json:"storeId"`
	ShopDomain string  `json:"shopDomain"`
	ShopName   string  `json:"shopName"`
	Credits    float64 `json:"credits"`
	Currency   string  `json:"currency"`
}

func (p *identityPayload) toDomain() *domain.StoreIdentity {
	id := p.ID
	if id == "" {
		id = p.StoreID
	}
	return &domain.StoreIdentity{
		ID:         id,
		ShopDomain: p.ShopDomain,
		ShopName:   p.ShopName,
		Credits:    p.Credits,
		Currency:   p.Currency,
	}
}

// VerifyToken asks the platform to verify the session token carried in the
// context and returns the authoritative store identity.
func (c *Client) VerifyToken(ctx context.Context) (*domain.StoreIdentity, error) {
	raw, err := c.Post(ctx, "/auth/verify", nil)
	if err != nil {
		return nil, err
	}
	return decodeIdentity(raw)
}

// FetchSettings retrieves store settings and projects the identity fields
// out of them. Used as a last-resort identity source when verify fails.
func (c *Client) FetchSettings(ctx context.Context) (*domain.StoreIdentity, error) {
	raw, err := c.Get(ctx, "/settings", nil)
	if err != nil {
		return nil, err
	}
	return decodeIdentity(raw)
}

func decodeIdentity(raw json.RawMessage) (*domain.StoreIdentity, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	source := raw
	if nested, ok := fields["store"]; ok {
		source = nested
	}

	var payload identityPayload
	if err := json.Unmarshal(source, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	return payload.toDomain(), nil
}
