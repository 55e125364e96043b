package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/catalog-admin/internal/domain"
)

// AssetSource reads back assets kept by a store that serves its own bytes.
type AssetSource interface {
	Open(ctx context.Context, name string) (*domain.StoredAsset, error)
}

// HandleAsset serves a stored asset by name.
// GET {UploadURLPrefix}/{name}
func HandleAsset(src AssetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if name == "" || strings.ContainsAny(name, `/\`) {
			http.NotFound(w, r)
			return
		}

		asset, err := src.Open(r.Context(), name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			slog.Error("serve asset", "name", name, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		// Names are unique per upload, so content never changes under one.
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeContent(w, r, asset.Name, asset.CreatedAt, bytes.NewReader(asset.Data))
	}
}
