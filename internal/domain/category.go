package domain

import (
	"context"
	"time"
)

// Category is a named grouping that materials optionally belong to.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	// List returns all categories, newest first.
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	// Delete clears the category reference of every dependent material and
	// removes the category row, atomically. It returns the number of
	// materials that were orphaned.
	Delete(ctx context.Context, id int64) (int64, error)
	// NameTaken reports whether another category already uses name.
	// excludeID, when set, is ignored by the check.
	NameTaken(ctx context.Context, name string, excludeID *int64) (bool, error)
}
