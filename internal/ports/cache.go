package ports

import (
	"context"
	"encoding/json"
	"time"
)

// FetchFunc loads a value from the platform when the cache cannot serve it.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// QueryCache is the read-side cache for platform responses. Implementations
// deduplicate concurrent identical fetches and serve stale entries while a
// refresh runs in the background.
type QueryCache interface {
	// GetOrFetch returns the cached value for key if it is within the fresh
	// window, otherwise calls fetch and caches the result.
	GetOrFetch(ctx context.Context, key string, fresh time.Duration, fetch FetchFunc) (json.RawMessage, error)

	// Invalidate drops all cached entries whose key starts with prefix.
	Invalidate(ctx context.Context, prefix string) error
}
