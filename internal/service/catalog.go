package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msomdec/catalog-admin/internal/domain"
)

const (
	defaultUploadConcurrency = 4
	cleanupTimeout           = 30 * time.Second
)

// imageExtensions maps every accepted sniffed content type to the file
// extensions allowed for it. The first one is used when the upload's own
// extension does not match its content.
var imageExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// imageName sniffs u and returns its filename with an extension that agrees
// with the detected image type. ok is false for anything that is not an
// accepted image.
func imageName(u domain.Upload) (name string, ok bool) {
	exts, ok := imageExtensions[http.DetectContentType(u.Data)]
	if !ok {
		return "", false
	}
	ext := filepath.Ext(u.Filename)
	if slices.Contains(exts, strings.ToLower(ext)) {
		return u.Filename, true
	}
	return strings.TrimSuffix(u.Filename, ext) + exts[0], true
}

// NewMaterial is the input of CatalogService.CreateMaterial.
type NewMaterial struct {
	Title       string
	Description string
	CategoryID  *int64
	IsPublished bool
	Cover       *domain.Upload
	Others      []domain.Upload // empty entries are skipped
}

// CatalogService writes and reads materials together with their image sets.
type CatalogService struct {
	materials   domain.MaterialRepository
	categories  domain.CategoryRepository
	assets      domain.AssetStore
	concurrency int
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(materials domain.MaterialRepository, categories domain.CategoryRepository, assets domain.AssetStore) *CatalogService {
	return &CatalogService{
		materials:   materials,
		categories:  categories,
		assets:      assets,
		concurrency: defaultUploadConcurrency,
	}
}

// CreateMaterial validates the input, stores every upload, and persists the
// material with its images in one transaction. The cover gets sort order 0
// and the other images 1, 2, ... in the order given. If anything fails after
// files were stored, those files are deleted again.
func (s *CatalogService) CreateMaterial(ctx context.Context, in NewMaterial) (*domain.Material, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	uploads := []domain.Upload{*in.Cover}
	for _, u := range in.Others {
		if !u.Empty() {
			uploads = append(uploads, u)
		}
	}
	for i := range uploads {
		uploads[i].Filename, _ = imageName(uploads[i])
	}

	refs, err := s.storeAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	material := &domain.Material{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		CategoryID:  in.CategoryID,
		IsPublished: in.IsPublished,
		Images:      make([]domain.MaterialImage, len(refs)),
	}
	for i, ref := range refs {
		material.Images[i] = domain.MaterialImage{ImageURL: ref, IsCover: i == 0, SortOrder: i}
	}

	if err := s.materials.Create(ctx, material); err != nil {
		s.discard(ctx, refs)
		return nil, fmt.Errorf("create material: %w", err)
	}

	slog.Info("material created", "material_id", material.ID, "images", len(refs))
	return material, nil
}

func (s *CatalogService) validate(ctx context.Context, in NewMaterial) error {
	var v validation
	v.check(!IsBlank(in.Title), "title", "title is required", domain.ErrMissingTitle)
	v.check(!in.Cover.Empty(), "cover_image", "cover image is required", domain.ErrMissingCover)
	if !v.failed("cover_image") {
		_, ok := imageName(*in.Cover)
		v.check(ok, "cover_image", "cover image must be a JPEG, PNG, GIF or WebP image", domain.ErrInvalidImage)
	}
	for _, u := range in.Others {
		if u.Empty() {
			continue
		}
		if _, ok := imageName(u); !ok {
			v.check(false, "other_images", fmt.Sprintf("%s is not a JPEG, PNG, GIF or WebP image", u.Filename), domain.ErrInvalidImage)
			break
		}
	}

	if in.CategoryID != nil {
		_, err := s.categories.GetByID(ctx, *in.CategoryID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get category: %w", err)
		}
		v.check(err == nil, "material_type_id", "category does not exist", domain.ErrUnknownCategory)
	}

	return v.Err()
}

// storeAll writes the uploads concurrently and returns their references in
// input order. On failure every upload that did succeed is deleted.
func (s *CatalogService) storeAll(ctx context.Context, uploads []domain.Upload) ([]string, error) {
	refs := make([]string, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, u := range uploads {
		g.Go(func() error {
			ref, err := s.assets.Store(gctx, u.Data, u.Filename)
			if err != nil {
				return fmt.Errorf("store %q: %w", u.Filename, err)
			}
			refs[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		stored := refs[:0:0]
		for _, ref := range refs {
			if ref != "" {
				stored = append(stored, ref)
			}
		}
		s.discard(ctx, stored)
		return nil, err
	}
	return refs, nil
}

// discard deletes stored assets. Failures are logged and otherwise ignored.
func (s *CatalogService) discard(ctx context.Context, refs []string) {
	if len(refs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, ref := range refs {
		if err := s.assets.Delete(ctx, ref); err != nil {
			slog.Warn("failed to remove stored asset", "ref", ref, "error", err)
		}
	}
}

// GetMaterial returns a material with its images, cover first.
func (s *CatalogService) GetMaterial(ctx context.Context, id int64) (*domain.Material, error) {
	return s.materials.GetByID(ctx, id)
}

// ListMaterials returns materials newest first, narrowed by filter.
func (s *CatalogService) ListMaterials(ctx context.Context, filter domain.MaterialFilter) ([]domain.Material, error) {
	return s.materials.List(ctx, filter)
}

// DeleteMaterial removes a material and its images, then deletes the
// stored files.
func (s *CatalogService) DeleteMaterial(ctx context.Context, id int64) error {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get material: %w", err)
	}

	if err := s.materials.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}

	refs := make([]string, 0, len(material.Images))
	for _, img := range material.Images {
		refs = append(refs, img.ImageURL)
	}
	s.discard(ctx, refs)
	return nil
}
