package ports

import (
	"context"
	"encoding/json"
	"net/url"

	"textloop-gateway/internal/domain"
)

// PlatformAPI is the transport-level surface of the Textloop platform REST
// API. Implementations inject credentials from the session in the context,
// unwrap the platform's success envelope, and normalize failures into
// *platform.Error values. Callers always receive either the unwrapped
// payload or one error with a message.
type PlatformAPI interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// IdentityVerifier resolves the authenticated store identity from the
// platform, using the session token carried in the context.
type IdentityVerifier interface {
	// VerifyToken asks the platform to verify the current token and returns
	// the authoritative store identity.
	VerifyToken(ctx context.Context) (*domain.StoreIdentity, error)

	// FetchSettings retrieves store settings as a last-resort identity
	// source when verification is unavailable.
	FetchSettings(ctx context.Context) (*domain.StoreIdentity, error)
}
