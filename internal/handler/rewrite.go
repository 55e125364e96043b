package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/catalog-admin/internal/domain"
)

const maxRewriteBytes = 64 << 10

// RewriteHandler exposes copy rewriting.
type RewriteHandler struct {
	rewriter domain.Rewriter
}

// NewRewriteHandler creates a new RewriteHandler.
func NewRewriteHandler(rewriter domain.Rewriter) *RewriteHandler {
	return &RewriteHandler{rewriter: rewriter}
}

// HandleRewrite rewrites listing copy. When the rewrite service is
// unavailable the original text comes back unchanged.
// POST /api/copywriting/rewrite
// Request:  {"text":"..."}
// Response: {"text":"..."}
func (h *RewriteHandler) HandleRewrite(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRewriteBytes)
	var req struct {
		Text string `json:"text"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"text": h.rewriter.Rewrite(r.Context(), req.Text),
	})
}
