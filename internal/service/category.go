package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/msomdec/catalog-admin/internal/domain"
)

// CategoryService manages the category registry.
type CategoryService struct {
	categories domain.CategoryRepository
	materials  domain.MaterialRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categories domain.CategoryRepository, materials domain.MaterialRepository) *CategoryService {
	return &CategoryService{categories: categories, materials: materials}
}

// Create adds a category after trimming and validating its name.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if err := s.validateName(ctx, name, nil); err != nil {
		return nil, err
	}

	category := &domain.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// Update renames and redescribes a category. Keeping the current name is allowed.
func (s *CategoryService) Update(ctx context.Context, id int64, name, description string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	name = strings.TrimSpace(name)
	if err := s.validateName(ctx, name, &id); err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = strings.TrimSpace(description)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// Delete removes a category. Materials that referenced it become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	orphaned, err := s.categories.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.Info("category deleted", "category_id", id, "orphaned_materials", orphaned)
	return nil
}

// List returns every category, newest first.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Get returns a single category.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// MaterialCount returns how many materials reference the category, which is
// how many would become uncategorised if it were deleted.
func (s *CategoryService) MaterialCount(ctx context.Context, id int64) (int, error) {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return 0, err
	}
	n, err := s.materials.CountByCategory(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return n, nil
}

// validateName runs the emptiness and uniqueness checks. The uniqueness
// check is advisory; the repository's unique constraint decides races.
func (s *CategoryService) validateName(ctx context.Context, name string, excludeID *int64) error {
	var v validation
	v.check(!IsBlank(name), "name", "category name is required", domain.ErrEmptyName)
	if !v.failed("name") {
		taken, err := s.categories.NameTaken(ctx, name, excludeID)
		if err != nil {
			return fmt.Errorf("check category name: %w", err)
		}
		v.check(!taken, "name", "category name already exists", domain.ErrDuplicateName)
	}
	return v.Err()
}
