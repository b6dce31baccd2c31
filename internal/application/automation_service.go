package application

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"textloop-gateway/internal/application/adapters"
	"textloop-gateway/internal/application/normalize"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const automationFreshness = 60 * time.Second

// AutomationService composes the platform client, normalizers, and the
// automation adapter for the automation endpoints.
type AutomationService struct {
	api    ports.PlatformAPI
	cache  ports.QueryCache
	logger zerolog.Logger
}

// NewAutomationService creates a new automation service
func NewAutomationService(api ports.PlatformAPI, cache ports.QueryCache, logger zerolog.Logger) *AutomationService {
	return &AutomationService{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// List retrieves all automations, reconciled into the canonical dashboard
// shape.
func (s *AutomationService) List(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.cache.GetOrFetch(ctx, "automations:list", automationFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/automations", nil)
	})
	if err != nil {
		return nil, err
	}

	items := normalize.ArrayResponse(raw, "automations")
	decoded := decodeItems(items)
	if decoded == nil {
		return items, nil
	}
	for i, automation := range decoded {
		decoded[i] = adapters.AutomationFromAPI(automation)
	}
	return encodeItems(decoded), nil
}

// Create creates an automation using the platform's create contract.
func (s *AutomationService) Create(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	result, err := s.api.Post(ctx, "/automations", adapters.AutomationToAPI(payload, false))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.adaptOne(result), nil
}

// Update updates an automation. The outgoing payload carries both field
// namings; see adapters.AutomationToAPI.
func (s *AutomationService) Update(ctx context.Context, id string, payload map[string]any) (json.RawMessage, error) {
	result, err := s.api.Put(ctx, "/automations/"+url.PathEscape(id), adapters.AutomationToAPI(payload, true))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.adaptOne(result), nil
}

// Toggle switches an automation between active and draft.
func (s *AutomationService) Toggle(ctx context.Context, id string, active bool) (json.RawMessage, error) {
	status := "draft"
	if active {
		status = "active"
	}
	return s.Update(ctx, id, map[string]any{"status": status})
}

// Delete deletes an automation. System-default automations are rejected by
// the platform; the error passes through normalized.
func (s *AutomationService) Delete(ctx context.Context, id string) error {
	if _, err := s.api.Delete(ctx, "/automations/"+url.PathEscape(id)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// adaptOne runs a single automation response through the read adapter,
// passing the payload through untouched when it is not an object.
func (s *AutomationService) adaptOne(raw json.RawMessage) json.RawMessage {
	var automation map[string]any
	if err := json.Unmarshal(raw, &automation); err != nil {
		return raw
	}
	adapted, err := json.Marshal(adapters.AutomationFromAPI(automation))
	if err != nil {
		return raw
	}
	return adapted
}

func (s *AutomationService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "automations:"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate automation cache")
	}
}
