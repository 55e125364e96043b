package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/service"
)

// CategoryHandler serves the category ("material type") API. Every response
// uses the {success, message, data} envelope.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleList returns all categories, newest first.
// GET /api/material-types
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.writeError(w, "list categories", err)
		return
	}
	writeEnvelope(w, http.StatusOK, "", toCategoryDTOs(categories))
}

// HandleGet returns one category.
// GET /api/material-types/{id}
func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, "Invalid id.", nil)
		return
	}
	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get category", err)
		return
	}
	count, err := h.categories.MaterialCount(r.Context(), id)
	if err != nil {
		h.writeError(w, "count category materials", err)
		return
	}
	dto := toCategoryDTO(category)
	dto.MaterialCount = &count
	writeEnvelope(w, http.StatusOK, "", dto)
}

// HandleCreate adds a category.
// POST /api/material-types
// Request:  {"name":"...","description":"..."}
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.writeError(w, "create category", err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Category created.", toCategoryDTO(category))
}

// HandleUpdate renames or redescribes a category.
// PUT /api/material-types/{id}
func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, "Invalid id.", nil)
		return
	}
	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	category, err := h.categories.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.writeError(w, "update category", err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Category updated.", toCategoryDTO(category))
}

// HandleDelete removes a category; its materials become uncategorized.
// DELETE /api/material-types/{id}
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, "Invalid id.", nil)
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete category", err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Category deleted.", nil)
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyName):
		writeEnvelope(w, http.StatusBadRequest, "Category name is required.", nil)
	case errors.Is(err, domain.ErrDuplicateName):
		writeEnvelope(w, http.StatusBadRequest, "A category with that name already exists.", nil)
	case errors.Is(err, domain.ErrNotFound):
		writeEnvelope(w, http.StatusNotFound, "Category not found.", nil)
	default:
		slog.Error(op, "error", err)
		writeEnvelope(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.", nil)
	}
}

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
