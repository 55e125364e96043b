package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/catalog-admin/internal/service"
)

// SecretHandler lists and issues registration keys.
type SecretHandler struct {
	secrets *service.SecretService
}

// NewSecretHandler creates a new SecretHandler.
func NewSecretHandler(secrets *service.SecretService) *SecretHandler {
	return &SecretHandler{secrets: secrets}
}

// HandleList returns every registration key.
// GET /api/secrets
func (h *SecretHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	secrets, err := h.secrets.List(r.Context())
	if err != nil {
		writeServiceError(w, "list secrets", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"secrets": toSecretDTOs(secrets)})
}

// HandleGenerate issues new registration keys.
// POST /api/secrets
// Request:  {"count":5,"prefix":"2026","category":"USER"}
func (h *SecretHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count    int    `json:"count"`
		Prefix   string `json:"prefix"`
		Category string `json:"category"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	created, err := h.secrets.Generate(r.Context(), req.Count, req.Prefix, req.Category)
	if err != nil {
		writeServiceError(w, "generate secrets", err)
		return
	}

	var issuer int64
	if user := UserFromContext(r.Context()); user != nil {
		issuer = user.ID
	}
	slog.Info("registration keys generated", "count", len(created), "user_id", issuer)
	writeJSON(w, http.StatusCreated, map[string]any{"secrets": toSecretDTOs(created)})
}
