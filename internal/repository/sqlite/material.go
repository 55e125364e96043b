package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/catalog-admin/internal/dbx"
	"github.com/msomdec/catalog-admin/internal/domain"
)

const materialColumns = `m.id, m.title, m.description, m.category_id, COALESCE(c.name, ''), m.is_published, m.created_at`

// MaterialRepository implements domain.MaterialRepository using SQLite.
type MaterialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new SQLite-backed MaterialRepository.
func NewMaterialRepository(db *sql.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts the material row and every image row in one transaction.
// Image IsCover/SortOrder values are stored as given; the schema rejects a
// second cover or a repeated sort order.
func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	now := time.Now().UTC()
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO materials (title, description, category_id, is_published, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			material.Title, material.Description, material.CategoryID, material.IsPublished, now,
		)
		if err != nil {
			return fmt.Errorf("insert material: %w", err)
		}

		materialID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get material id: %w", err)
		}

		if err := insertImages(ctx, tx, materialID, material.Images); err != nil {
			return err
		}
		material.ID = materialID
		return nil
	})
	if err != nil {
		material.ID = 0
		for i := range material.Images {
			material.Images[i].ID = 0
			material.Images[i].MaterialID = 0
		}
		if isForeignKeyError(err) {
			return domain.ErrUnknownCategory
		}
		return err
	}

	material.CreatedAt = now
	return nil
}

func insertImages(ctx context.Context, tx dbx.DBTX, materialID int64, images []domain.MaterialImage) error {
	for i := range images {
		img := &images[i]
		res, err := tx.ExecContext(ctx,
			`INSERT INTO material_images (material_id, image_url, is_cover, sort_order)
			 VALUES (?, ?, ?, ?)`,
			materialID, img.ImageURL, img.IsCover, img.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("insert image %d: %w", i, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("get image id: %w", err)
		}
		img.ID = id
		img.MaterialID = materialID
	}
	return nil
}

func (r *MaterialRepository) GetByID(ctx context.Context, id int64) (*domain.Material, error) {
	m := &domain.Material{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+materialColumns+`
		 FROM materials m LEFT JOIN categories c ON c.id = m.category_id
		 WHERE m.id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Description, &m.CategoryID, &m.CategoryName, &m.IsPublished, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get material: %w", err)
	}

	images, err := r.loadImages(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	m.Images = images[id]
	return m, nil
}

// List returns materials newest first, each with its images loaded.
func (r *MaterialRepository) List(ctx context.Context, filter domain.MaterialFilter) ([]domain.Material, error) {
	var (
		where []string
		args  []any
	)
	if filter.CategoryID != nil {
		where = append(where, "m.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.PublishedOnly {
		where = append(where, "m.is_published = TRUE")
	}

	query := `SELECT ` + materialColumns + ` FROM materials m LEFT JOIN categories c ON c.id = m.category_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.created_at DESC, m.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []domain.Material
	for rows.Next() {
		var m domain.Material
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.CategoryID, &m.CategoryName, &m.IsPublished, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(materials) == 0 {
		return materials, nil
	}

	ids := make([]int64, len(materials))
	for i := range materials {
		ids[i] = materials[i].ID
	}
	images, err := r.loadImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range materials {
		materials[i].Images = images[materials[i].ID]
	}
	return materials, nil
}

func (r *MaterialRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM materials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MaterialRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM materials WHERE category_id = ?", categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return count, nil
}

// loadImages returns the images of the given materials keyed by material ID,
// each slice ordered cover first and then by ascending sort order.
func (r *MaterialRepository) loadImages(ctx context.Context, materialIDs []int64) (map[int64][]domain.MaterialImage, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(materialIDs)), ",")
	args := make([]any, len(materialIDs))
	for i, id := range materialIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, material_id, image_url, is_cover, sort_order
		 FROM material_images WHERE material_id IN (`+placeholders+`)
		 ORDER BY material_id, is_cover DESC, sort_order ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	defer rows.Close()

	images := make(map[int64][]domain.MaterialImage, len(materialIDs))
	for rows.Next() {
		var img domain.MaterialImage
		if err := rows.Scan(&img.ID, &img.MaterialID, &img.ImageURL, &img.IsCover, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images[img.MaterialID] = append(images[img.MaterialID], img)
	}
	return images, rows.Err()
}
