package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/catalog-admin/internal/domain"
)

// RegisterSecretRepository implements domain.RegisterSecretRepository using SQLite.
type RegisterSecretRepository struct {
	db *sql.DB
}

// NewRegisterSecretRepository creates a new SQLite-backed RegisterSecretRepository.
func NewRegisterSecretRepository(db *sql.DB) *RegisterSecretRepository {
	return &RegisterSecretRepository{db: db}
}

func (r *RegisterSecretRepository) Create(ctx context.Context, secret *domain.RegisterSecret) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO register_secrets (secret, is_used, created_at) VALUES (?, FALSE, ?)`,
		secret.Secret, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateSecret
		}
		return fmt.Errorf("insert secret: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	secret.ID = id
	secret.IsUsed = false
	secret.CreatedAt = now
	return nil
}

func (r *RegisterSecretRepository) GetBySecret(ctx context.Context, secret string) (*domain.RegisterSecret, error) {
	s := &domain.RegisterSecret{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, secret, is_used, user_id, created_at, used_at FROM register_secrets WHERE secret = ?`, secret,
	).Scan(&s.ID, &s.Secret, &s.IsUsed, &s.UserID, &s.CreatedAt, &s.UsedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get secret: %w", err)
	}
	return s, nil
}

func (r *RegisterSecretRepository) List(ctx context.Context) ([]domain.RegisterSecret, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, secret, is_used, user_id, created_at, used_at FROM register_secrets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()

	var secrets []domain.RegisterSecret
	for rows.Next() {
		var s domain.RegisterSecret
		if err := rows.Scan(&s.ID, &s.Secret, &s.IsUsed, &s.UserID, &s.CreatedAt, &s.UsedAt); err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		secrets = append(secrets, s)
	}
	return secrets, rows.Err()
}
