package domain

import (
	"context"
	"time"
)

// RegisterSecret is a single-use access key that gates registration.
type RegisterSecret struct {
	ID        int64
	Secret    string
	IsUsed    bool
	UserID    *int64
	CreatedAt time.Time
	UsedAt    *time.Time
}

// RegisterSecretRepository handles registration key persistence.
type RegisterSecretRepository interface {
	Create(ctx context.Context, secret *RegisterSecret) error
	GetBySecret(ctx context.Context, secret string) (*RegisterSecret, error)
	List(ctx context.Context) ([]RegisterSecret, error)
}
