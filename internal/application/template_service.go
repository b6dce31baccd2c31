package application

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"textloop-gateway/internal/application/normalize"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const templateFreshness = 5 * time.Minute

// TemplateService serves the message template library.
type TemplateService struct {
	api    ports.PlatformAPI
	cache  ports.QueryCache
	logger zerolog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(api ports.PlatformAPI, cache ports.QueryCache, logger zerolog.Logger) *TemplateService {
	return &TemplateService{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// List retrieves message templates, optionally filtered by category.
func (s *TemplateService) List(ctx context.Context, category string) (json.RawMessage, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}

	key := "templates:list:" + category
	raw, err := s.cache.GetOrFetch(ctx, key, templateFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/templates", query)
	})
	if err != nil {
		return nil, err
	}
	return normalize.ArrayResponse(raw, "templates"), nil
}

// Categories retrieves the template category list.
func (s *TemplateService) Categories(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.cache.GetOrFetch(ctx, "templates:categories", templateFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/templates/categories", nil)
	})
	if err != nil {
		return nil, err
	}
	return normalize.ArrayResponse(raw, "categories"), nil
}
