package api

import (
	"net/http"
	"strconv"

	"textloop-gateway/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CampaignsHandler serves the campaign routes.
type CampaignsHandler struct {
	campaigns *application.CampaignService
	logger    zerolog.Logger
}

// NewCampaignsHandler creates a new campaigns handler
func NewCampaignsHandler(campaigns *application.CampaignService, logger zerolog.Logger) *CampaignsHandler {
	return &CampaignsHandler{
		campaigns: campaigns,
		logger:    logger,
	}
}

// Routes mounts the campaign routes on a router
func (h *CampaignsHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/send", h.Send)
	r.Get("/{id}/stats", h.Stats)
}

// List handles GET /campaigns
func (h *CampaignsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.campaigns.List(r.Context(), application.ListCampaignsInput{
		Page:     queryInt(query.Get("page")),
		PageSize: queryInt(query.Get("pageSize")),
		Status:   query.Get("status"),
		Search:   query.Get("search"),
	})
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Get handles GET /campaigns/{id}
func (h *CampaignsHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Create handles POST /campaigns
func (h *CampaignsHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, h.logger)
	if !ok {
		return
	}
	result, err := h.campaigns.Create(r.Context(), payload)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusCreated, result)
}

// Update handles PUT /campaigns/{id}
func (h *CampaignsHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, h.logger)
	if !ok {
		return
	}
	result, err := h.campaigns.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Delete handles DELETE /campaigns/{id}
func (h *CampaignsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, map[string]any{"deleted": true})
}

// Send handles POST /campaigns/{id}/send
func (h *CampaignsHandler) Send(w http.ResponseWriter, r *http.Request) {
	result, err := h.campaigns.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Stats handles GET /campaigns/{id}/stats
func (h *CampaignsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.campaigns.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// queryInt parses a positive integer query parameter, returning 0 (meaning
// "use the default") for anything else.
func queryInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
