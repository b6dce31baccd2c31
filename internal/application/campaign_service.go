package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"textloop-gateway/internal/application/normalize"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// Cache freshness windows per endpoint. Stale entries are served while a
// background refresh runs, so these bound staleness of the happy path, not
// availability.
const (
	campaignListFreshness  = 30 * time.Second
	campaignStatsFreshness = 60 * time.Second
)

// CampaignService composes the platform client, normalizers, and cache for
// the campaign endpoints.
type CampaignService struct {
	api    ports.PlatformAPI
	cache  ports.QueryCache
	logger zerolog.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(api ports.PlatformAPI, cache ports.QueryCache, logger zerolog.Logger) *CampaignService {
	return &CampaignService{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// ListCampaignsInput carries the list query parameters.
type ListCampaignsInput struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

// List retrieves a page of campaigns.
func (s *CampaignService) List(ctx context.Context, input ListCampaignsInput) (*Collection, error) {
	query := listQuery(input.Page, input.PageSize)
	if input.Status != "" {
		query.Set("status", input.Status)
	}
	if input.Search != "" {
		query.Set("search", input.Search)
	}

	key := fmt.Sprintf("campaigns:list:%s", query.Encode())
	raw, err := s.cache.GetOrFetch(ctx, key, campaignListFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/campaigns", query)
	})
	if err != nil {
		return nil, err
	}

	items, pagination := normalize.PaginatedResponse(raw, "campaigns")
	return &Collection{Items: items, Pagination: pagination}, nil
}

// Get retrieves a single campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return s.api.Get(ctx, "/campaigns/"+url.PathEscape(id), nil)
}

// Create creates a campaign and invalidates the campaign cache.
func (s *CampaignService) Create(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	result, err := s.api.Post(ctx, "/campaigns", payload)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Update updates a campaign.
func (s *CampaignService) Update(ctx context.Context, id string, payload map[string]any) (json.RawMessage, error) {
	result, err := s.api.Put(ctx, "/campaigns/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Delete deletes a campaign.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if _, err := s.api.Delete(ctx, "/campaigns/"+url.PathEscape(id)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Send queues a campaign for sending.
func (s *CampaignService) Send(ctx context.Context, id string) (json.RawMessage, error) {
	result, err := s.api.Post(ctx, "/campaigns/"+url.PathEscape(id)+"/send", nil)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Stats retrieves delivery statistics for a campaign.
func (s *CampaignService) Stats(ctx context.Context, id string) (json.RawMessage, error) {
	key := "campaigns:stats:" + id
	return s.cache.GetOrFetch(ctx, key, campaignStatsFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/campaigns/"+url.PathEscape(id)+"/stats", nil)
	})
}

func (s *CampaignService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "campaigns:"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate campaign cache")
	}
}

func listQuery(page, pageSize int) url.Values {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	return query
}
