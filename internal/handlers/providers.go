package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/registry"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

// ProviderHandler is the administrative write side of the provider
// registry. Every successful write invalidates the registry snapshot so
// the pipeline picks the change up on its next resolution.
type ProviderHandler struct {
	store    registry.Store
	registry *registry.Registry
	logger   *utils.Logger
}

func NewProviderHandler(store registry.Store, reg *registry.Registry, logger *utils.Logger) *ProviderHandler {
	return &ProviderHandler{
		store:    store,
		registry: reg,
		logger:   logger,
	}
}

func (h *ProviderHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list providers", "error", err)
		h.respondError(w, utils.NewInternalError("Failed to list providers"))
		return
	}

	h.respondJSON(w, http.StatusOK, configs)
}

func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	cfg, appErr := decodeProvider(r)
	if appErr != nil {
		h.respondError(w, appErr)
		return
	}

	if err := h.store.Upsert(r.Context(), cfg); err != nil {
		h.logger.Error("Failed to save provider", "error", err, "provider", cfg.Name)
		h.respondError(w, utils.NewInternalError("Failed to save provider"))
		return
	}
	h.registry.Invalidate()

	h.logger.Info("Provider configuration saved", "provider", cfg.Name, "active", cfg.Active)
	h.respondJSON(w, http.StatusCreated, cfg)
}

func (h *ProviderHandler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		h.respondError(w, utils.NewBadRequestError("Provider name is required"))
		return
	}

	existing, err := h.store.GetByName(r.Context(), name)
	if err != nil {
		h.logger.Error("Failed to load provider", "error", err, "provider", name)
		h.respondError(w, utils.NewInternalError("Failed to load provider"))
		return
	}
	if existing == nil {
		h.respondError(w, utils.NewNotFoundError("Provider not found"))
		return
	}

	cfg, appErr := decodeProvider(r)
	if appErr != nil {
		h.respondError(w, appErr)
		return
	}
	// the path segment names the provider, not the body
	cfg.Name = name
	cfg.CreatedAt = existing.CreatedAt

	if err := h.store.Upsert(r.Context(), cfg); err != nil {
		h.logger.Error("Failed to update provider", "error", err, "provider", name)
		h.respondError(w, utils.NewInternalError("Failed to update provider"))
		return
	}
	h.registry.Invalidate()

	h.logger.Info("Provider configuration updated", "provider", name, "active", cfg.Active)
	h.respondJSON(w, http.StatusOK, cfg)
}

func (h *ProviderHandler) SetProviderActive(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		h.respondError(w, utils.NewBadRequestError("Provider name is required"))
		return
	}

	var body struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		h.respondError(w, utils.NewBadRequestError("An active flag is required"))
		return
	}

	if err := h.store.SetActive(r.Context(), name, *body.Active); err != nil {
		if err == sql.ErrNoRows {
			h.respondError(w, utils.NewNotFoundError("Provider not found"))
			return
		}
		h.logger.Error("Failed to update provider activity", "error", err, "provider", name)
		h.respondError(w, utils.NewInternalError("Failed to update provider"))
		return
	}
	h.registry.Invalidate()

	h.logger.Info("Provider activity updated", "provider", name, "active", *body.Active)
	h.respondJSON(w, http.StatusOK, map[string]any{"name": name, "active": *body.Active})
}

func decodeProvider(r *http.Request) (*models.ProviderConfig, *utils.AppError) {
	var cfg models.ProviderConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		return nil, utils.NewBadRequestError("Invalid request body")
	}
	if cfg.Name == "" {
		return nil, utils.NewBadRequestError("Provider name is required")
	}
	if len(cfg.Capabilities) == 0 {
		return nil, utils.NewBadRequestError("Provider must declare at least one capability")
	}
	for _, capability := range cfg.Preferred {
		if !cfg.Supports(capability) {
			return nil, utils.NewBadRequestError("Provider cannot be preferred for a capability it does not support")
		}
	}
	return &cfg, nil
}

func (h *ProviderHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *ProviderHandler) respondError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
