package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/storage"
)

const maxAssetNameAttempts = 3

// AssetStore implements domain.AssetStore using SQLite BLOBs. References have
// the form "<urlPrefix>/<name>" and are served back through Open.
type AssetStore struct {
	db        *sql.DB
	urlPrefix string
	now       func() time.Time
}

// NewAssetStore creates a BLOB-backed asset store.
func NewAssetStore(db *sql.DB, urlPrefix string) *AssetStore {
	return &AssetStore{
		db:        db,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}
}

func (s *AssetStore) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload %q", domain.ErrStorage, originalName)
	}

	for range maxAssetNameAttempts {
		now := s.now()
		name := storage.ObjectName(now, originalName)
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO asset_blobs (name, data, created_at) VALUES (?, ?, ?)",
			name, data, now.UTC(),
		)
		if isUniqueConstraintError(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: save asset blob: %w", domain.ErrStorage, err)
		}
		return path.Join(s.urlPrefix, name), nil
	}
	return "", fmt.Errorf("%w: could not allocate a unique name for %q", domain.ErrStorage, originalName)
}

func (s *AssetStore) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: reference %q does not belong to this store", domain.ErrStorage, ref)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM asset_blobs WHERE name = ?", name); err != nil {
		return fmt.Errorf("%w: delete asset blob: %w", domain.ErrStorage, err)
	}
	return nil
}

// Open returns the stored asset called name.
func (s *AssetStore) Open(ctx context.Context, name string) (*domain.StoredAsset, error) {
	a := &domain.StoredAsset{Name: name}
	err := s.db.QueryRowContext(ctx,
		"SELECT data, created_at FROM asset_blobs WHERE name = ?", name,
	).Scan(&a.Data, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get asset blob: %w", err)
	}
	return a, nil
}
