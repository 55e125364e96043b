package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/repository/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func countRows(t *testing.T, db *sqlite.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.SqlDB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

var errStoreFailed = errors.New("disk full")

// memStore is an in-memory domain.AssetStore. References are
// "/mem/<original name>"; failOn makes Store fail for that original name.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	stores  int
	deleted []string
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores++
	if originalName == m.failOn {
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, errStoreFailed)
	}
	ref := "/mem/" + originalName
	m.objects[ref] = data
	return ref, nil
}

func (m *memStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

func (m *memStore) refs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]string, 0, len(m.objects))
	for ref := range m.objects {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

const (
	jpegMagic = "\xff\xd8\xff\xe0"
	pngMagic  = "\x89PNG\r\n\x1a\n"
)

// upload returns an image upload whose content matches its extension.
func upload(name string) domain.Upload {
	magic := jpegMagic
	if strings.HasSuffix(name, ".png") {
		magic = pngMagic
	}
	return domain.Upload{Filename: name, Data: []byte(magic + "bytes of " + name)}
}

func uploadPtr(name string) *domain.Upload {
	u := upload(name)
	return &u
}
