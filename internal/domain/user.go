package domain

import (
	"context"
	"time"
)

// User represents a registered operator of the admin backend.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Register creates the user and redeems the registration secret in a
	// single transaction.
	Register(ctx context.Context, user *User, secret string) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByLogin(ctx context.Context, usernameOrEmail string) (*User, error)
}
