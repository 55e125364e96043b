package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/msomdec/catalog-admin/internal/domain"
)

const maxNameAttempts = 3

// LocalStore keeps uploads in a directory on the local filesystem and hands
// out references of the form "<urlPrefix>/<name>".
type LocalStore struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStore creates a store rooted at dir. The directory is created on
// first write, not here.
func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{
		root:      dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}
}

// Root returns the directory uploads are written to.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload %q", domain.ErrStorage, originalName)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("%w: create upload dir: %w", domain.ErrStorage, err)
	}

	for range maxNameAttempts {
		name := ObjectName(s.now(), originalName)
		f, err := os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: create file: %w", domain.ErrStorage, err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("%w: write file: %w", domain.ErrStorage, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("%w: close file: %w", domain.ErrStorage, err)
		}
		return path.Join(s.urlPrefix, name), nil
	}
	return "", fmt.Errorf("%w: could not allocate a unique name for %q", domain.ErrStorage, originalName)
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: reference %q does not belong to this store", domain.ErrStorage, ref)
	}

	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove file: %w", domain.ErrStorage, err)
	}
	return nil
}
