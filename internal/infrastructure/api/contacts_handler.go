package api

import (
	"encoding/json"
	"net/http"

	"textloop-gateway/internal/application"
	"textloop-gateway/internal/infrastructure/platform"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ContactsHandler serves the contact routes.
type ContactsHandler struct {
	contacts *application.ContactService
	logger   zerolog.Logger
}

// NewContactsHandler creates a new contacts handler
func NewContactsHandler(contacts *application.ContactService, logger zerolog.Logger) *ContactsHandler {
	return &ContactsHandler{
		contacts: contacts,
		logger:   logger,
	}
}

// Routes mounts the contact routes on a router
func (h *ContactsHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/import", h.Import)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /contacts
func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.contacts.List(r.Context(), application.ListContactsInput{
		Page:     queryInt(query.Get("page")),
		PageSize: queryInt(query.Get("pageSize")),
		Search:   query.Get("search"),
		Audience: query.Get("audience"),
	})
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Create handles POST /contacts
func (h *ContactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, h.logger)
	if !ok {
		return
	}
	result, err := h.contacts.Create(r.Context(), payload)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusCreated, result)
}

// Update handles PUT /contacts/{id}
func (h *ContactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, h.logger)
	if !ok {
		return
	}
	result, err := h.contacts.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Delete handles DELETE /contacts/{id}
func (h *ContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, map[string]any{"deleted": true})
}

// Import handles POST /contacts/import
func (h *ContactsHandler) Import(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contacts []map[string]any `json:"contacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Contacts) == 0 {
		RenderError(w, h.logger, &platform.Error{
			Message: "Request body must contain a non-empty contacts array",
			Status:  http.StatusBadRequest,
		})
		return
	}

	result, err := h.contacts.Import(r.Context(), body.Contacts)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Audiences handles GET /audiences
func (h *ContactsHandler) Audiences(w http.ResponseWriter, r *http.Request) {
	result, err := h.contacts.Audiences(r.Context())
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}
