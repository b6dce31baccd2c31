package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"textloop-gateway/internal/application/adapters"
	"textloop-gateway/internal/application/normalize"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const (
	contactListFreshness = 30 * time.Second
	audienceFreshness    = 5 * time.Minute
)

// ContactService composes the platform client, normalizers, and the contact
// adapter for the contact endpoints.
type ContactService struct {
	api    ports.PlatformAPI
	cache  ports.QueryCache
	logger zerolog.Logger
}

// NewContactService creates a new contact service
func NewContactService(api ports.PlatformAPI, cache ports.QueryCache, logger zerolog.Logger) *ContactService {
	return &ContactService{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// ListContactsInput carries the list query parameters.
type ListContactsInput struct {
	Page     int
	PageSize int
	Search   string
	Audience string
}

// List retrieves a page of contacts with the phone alias applied to each.
func (s *ContactService) List(ctx context.Context, input ListContactsInput) (*Collection, error) {
	query := listQuery(input.Page, input.PageSize)
	if input.Search != "" {
		query.Set("search", input.Search)
	}
	if input.Audience != "" {
		query.Set("audience", input.Audience)
	}

	key := fmt.Sprintf("contacts:list:%s", query.Encode())
	raw, err := s.cache.GetOrFetch(ctx, key, contactListFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/contacts", query)
	})
	if err != nil {
		return nil, err
	}

	items, pagination := normalize.PaginatedResponse(raw, "contacts")
	if decoded := decodeItems(items); decoded != nil {
		for i, contact := range decoded {
			decoded[i] = adapters.ContactFromAPI(contact)
		}
		items = encodeItems(decoded)
	}

	return &Collection{Items: items, Pagination: pagination}, nil
}

// Create creates a contact. The write payload goes through the contact
// adapter so the platform receives phoneE164, never the ambiguous phone key.
func (s *ContactService) Create(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	result, err := s.api.Post(ctx, "/contacts", adapters.ContactToAPI(payload))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Update updates a contact.
func (s *ContactService) Update(ctx context.Context, id string, payload map[string]any) (json.RawMessage, error) {
	result, err := s.api.Put(ctx, "/contacts/"+url.PathEscape(id), adapters.ContactToAPI(payload))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Delete deletes a contact.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if _, err := s.api.Delete(ctx, "/contacts/"+url.PathEscape(id)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Import submits a batch of contacts, each run through the contact adapter.
func (s *ContactService) Import(ctx context.Context, contacts []map[string]any) (json.RawMessage, error) {
	prepared := make([]map[string]any, len(contacts))
	for i, contact := range contacts {
		prepared[i] = adapters.ContactToAPI(contact)
	}

	result, err := s.api.Post(ctx, "/contacts/import", map[string]any{"contacts": prepared})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Audiences retrieves the saved audience segments.
func (s *ContactService) Audiences(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.cache.GetOrFetch(ctx, "contacts:audiences", audienceFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/audiences", nil)
	})
	if err != nil {
		return nil, err
	}
	return normalize.ArrayResponse(raw, "audiences"), nil
}

func (s *ContactService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "contacts:"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate contact cache")
	}
}
