package api

import (
	"encoding/json"
	"net/http"

	"textloop-gateway/internal/application"
	"textloop-gateway/internal/infrastructure/platform"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AccountHandler serves settings, billing, reporting, and template routes.
type AccountHandler struct {
	account   *application.AccountService
	templates *application.TemplateService
	logger    zerolog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(account *application.AccountService, templates *application.TemplateService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		account:   account,
		templates: templates,
		logger:    logger,
	}
}

// Routes mounts the account routes on a router
func (h *AccountHandler) Routes(r chi.Router) {
	r.Get("/settings", h.Settings)
	r.Put("/settings", h.UpdateSettings)
	r.Get("/billing/packages", h.Packages)
	r.Get("/billing/transactions", h.Transactions)
	r.Post("/billing/purchase", h.Purchase)
	r.Get("/reports/dashboard", h.DashboardStats)
	r.Get("/reports/messages", h.MessageReport)
	r.Get("/templates", h.Templates)
	r.Get("/templates/categories", h.TemplateCategories)
}

// Settings handles GET /settings
func (h *AccountHandler) Settings(w http.ResponseWriter, r *http.Request) {
	result, err := h.account.Settings(r.Context())
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// UpdateSettings handles PUT /settings
func (h *AccountHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, h.logger)
	if !ok {
		return
	}
	result, err := h.account.UpdateSettings(r.Context(), payload)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Packages handles GET /billing/packages
func (h *AccountHandler) Packages(w http.ResponseWriter, r *http.Request) {
	result, err := h.account.Packages(r.Context())
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Transactions handles GET /billing/transactions
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.account.Transactions(r.Context(), queryInt(query.Get("page")), queryInt(query.Get("pageSize")))
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Purchase handles POST /billing/purchase
func (h *AccountHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PackageID string `json:"packageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PackageID == "" {
		RenderError(w, h.logger, &platform.Error{
			Message: "packageId: must be a non-empty string",
			Status:  http.StatusBadRequest,
		})
		return
	}

	result, err := h.account.PurchaseCredits(r.Context(), body.PackageID)
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// DashboardStats handles GET /reports/dashboard
func (h *AccountHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.account.DashboardStats(r.Context())
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// MessageReport handles GET /reports/messages
func (h *AccountHandler) MessageReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.account.MessageReport(r.Context(), queryInt(r.URL.Query().Get("days")))
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// Templates handles GET /templates
func (h *AccountHandler) Templates(w http.ResponseWriter, r *http.Request) {
	result, err := h.templates.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}

// TemplateCategories handles GET /templates/categories
func (h *AccountHandler) TemplateCategories(w http.ResponseWriter, r *http.Request) {
	result, err := h.templates.Categories(r.Context())
	if err != nil {
		RenderError(w, h.logger, err)
		return
	}
	RenderData(w, http.StatusOK, result)
}
