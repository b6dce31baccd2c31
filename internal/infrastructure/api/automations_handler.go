package api

import (
	"encoding/json"
	"net/http"

	"textloop-gateway/internal/application"
	"textloop-gateway/internal/infrastructure/platform"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AutomationsHandler serves the automation routes.
type AutomationsHandler struct {
	automations *application.AutomationService
	logger      zerolog.Logger
}

// NewAutomationsHandler creates a new automations handler
func NewAutomationsHandler(automations *application.AutomationService, logger zerolog.Logger) *AutomationsHandler {
	return &AutomationsHandler{
		automations: automations,
		logger:      logger,
	}
}

// Routes mounts the automation routes on a router
func (h *AutomationsHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /automations
func (h *AutomationsHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.automations.List(r.Context())
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Create handles POST /automations
func (h *AutomationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, h.logger)
	if !ok {
		return
	}
	result, err := h.automations.Create(r.Context(), payload)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusCreated, result)
}

// Update handles PUT /automations/{id}
func (h *AutomationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, h.logger)
	if !ok {
		return
	}
	result, err := h.automations.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Toggle handles POST /automations/{id}/toggle
func (h *AutomationsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		RenderError(w, h.logger, &platform.Error{
			Message: "active: must be a boolean",
			Status:  http.StatusBadRequest,
		})
		return
	}

	result, err := h.automations.Toggle(r.Context(), chi.URLParam(r, "id"), *body.Active)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Delete handles DELETE /automations/{id}
func (h *AutomationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.automations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, map[string]any{"deleted": true})
}
