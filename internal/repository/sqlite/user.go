package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/catalog-admin/internal/dbx"
	"github.com/msomdec/catalog-admin/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register inserts the user and marks the registration secret as used by
// that user. The secret is claimed with a conditional UPDATE so two
// concurrent registrations cannot redeem the same key.
func (r *UserRepository) Register(ctx context.Context, user *domain.User, secret string) error {
	now := time.Now().UTC()
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		var used bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_used FROM register_secrets WHERE secret = ?`, secret,
		).Scan(&used)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrSecretInvalid
			}
			return fmt.Errorf("lookup secret: %w", err)
		}
		if used {
			return domain.ErrSecretUsed
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			user.Username, user.Email, user.PasswordHash, now,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return domain.ErrDuplicateUser
			}
			return fmt.Errorf("insert user: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE register_secrets SET is_used = TRUE, user_id = ?, used_at = ?
			 WHERE secret = ? AND is_used = FALSE`,
			id, now, secret,
		)
		if err != nil {
			return fmt.Errorf("redeem secret: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return domain.ErrSecretUsed
		}

		user.ID = id
		return nil
	})
	if err != nil {
		user.ID = 0
		return err
	}

	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// GetByLogin looks a user up by username or email.
func (r *UserRepository) GetByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE username = ? OR email = ? LIMIT 1`, usernameOrEmail, usernameOrEmail,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by login: %w", err)
	}
	return user, nil
}
