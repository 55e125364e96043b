package domain

import (
	"context"
	"time"
)

// Material is a catalogued content item with one cover image and an ordered
// set of auxiliary images.
type Material struct {
	ID           int64
	Title        string
	Description  string
	CategoryID   *int64 // nil means uncategorized
	CategoryName string // filled on reads
	IsPublished  bool
	Images       []MaterialImage // cover first, then ascending SortOrder
	CreatedAt    time.Time
}

// Cover returns the material's cover image, or nil if images were not loaded.
func (m *Material) Cover() *MaterialImage {
	for i := range m.Images {
		if m.Images[i].IsCover {
			return &m.Images[i]
		}
	}
	return nil
}

// MaterialImage is one image of a material. The cover always has SortOrder 0;
// the others are numbered 1, 2, 3, ... in upload order.
type MaterialImage struct {
	ID         int64
	MaterialID int64
	ImageURL   string // Asset store reference
	IsCover    bool
	SortOrder  int
}

// MaterialFilter narrows a material listing.
type MaterialFilter struct {
	CategoryID    *int64
	PublishedOnly bool
}

// MaterialRepository handles material and image persistence. A material and
// its images are always written together.
type MaterialRepository interface {
	// Create inserts the material and all of its images in one transaction.
	Create(ctx context.Context, material *Material) error
	GetByID(ctx context.Context, id int64) (*Material, error)
	List(ctx context.Context, filter MaterialFilter) ([]Material, error)
	// Delete removes the material; its images go with it.
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}
