package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/service"
)

// multipartMemory is how much of a multipart body is kept in memory; the
// rest spills to temporary files.
const multipartMemory = 10 << 20

// MaterialHandler serves material creation, listing, lookup and deletion.
type MaterialHandler struct {
	catalog        *service.CatalogService
	maxUploadBytes int64
	metrics        *Metrics
}

// NewMaterialHandler creates a new MaterialHandler. metrics may be nil.
func NewMaterialHandler(catalog *service.CatalogService, maxUploadBytes int64, metrics *Metrics) *MaterialHandler {
	return &MaterialHandler{catalog: catalog, maxUploadBytes: maxUploadBytes, metrics: metrics}
}

// HandleCreate creates a material from a multipart form.
// POST /api/materials
// Fields: title, description, material_type_id, is_published,
// cover_image (file, required), other_images (files, repeated).
func (h *MaterialHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	tooLarge := fmt.Sprintf("Upload exceeds the %d byte limit.", h.maxUploadBytes)
	if r.ContentLength > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "Expected a multipart form.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	categoryID, err := optionalID(r.FormValue("material_type_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid category.",
			"fields": []fieldErrorDTO{{Field: "material_type_id", Message: "category must be a number"}},
		})
		return
	}

	in := service.NewMaterial{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		CategoryID:  categoryID,
		IsPublished: formBool(r.FormValue("is_published")),
	}

	files := r.MultipartForm.File
	if covers := files["cover_image"]; len(covers) > 0 {
		cover, err := readUpload(covers[0])
		if err != nil {
			slog.Error("read cover upload", "error", err)
			writeError(w, http.StatusBadRequest, "Could not read the cover image.")
			return
		}
		in.Cover = &cover
	}
	for _, fh := range files["other_images"] {
		u, err := readUpload(fh)
		if err != nil {
			slog.Error("read image upload", "error", err)
			writeError(w, http.StatusBadRequest, "Could not read an uploaded image.")
			return
		}
		in.Others = append(in.Others, u)
	}

	material, err := h.catalog.CreateMaterial(r.Context(), in)
	if err != nil {
		writeServiceError(w, "create material", err)
		return
	}

	for _, u := range append([]domain.Upload{*in.Cover}, in.Others...) {
		h.metrics.addUploadedBytes(len(u.Data))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"material": toMaterialDTO(material),
	})
}

// HandleList lists materials newest first.
// GET /api/materials?category_id=1&published=1
func (h *MaterialHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, err := optionalID(q.Get("category_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category_id.")
		return
	}

	materials, err := h.catalog.ListMaterials(r.Context(), domain.MaterialFilter{
		CategoryID:    categoryID,
		PublishedOnly: formBool(q.Get("published")),
	})
	if err != nil {
		writeServiceError(w, "list materials", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"materials": toMaterialDTOs(materials),
	})
}

// HandleGet returns one material with its images, cover first.
// GET /api/materials/{id}
func (h *MaterialHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	material, err := h.catalog.GetMaterial(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get material", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"material": toMaterialDTO(material),
	})
}

// HandleDelete removes a material and its stored images.
// DELETE /api/materials/{id}
func (h *MaterialHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	if err := h.catalog.DeleteMaterial(r.Context(), id); err != nil {
		writeServiceError(w, "delete material", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{Filename: fh.Filename, Data: data}, nil
}

// optionalID parses an optional id form value. Empty and "0" mean none.
func optionalID(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "0" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return nil, fmt.Errorf("invalid id %q", v)
	}
	return &id, nil
}

// formBool interprets checkbox-style values.
func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "y", "yes":
		return true
	}
	return false
}
