package domain

import (
	"context"
	"time"
)

// AssetStore persists uploaded binaries and hands back a stable reference
// that the presentation layer can resolve to a servable URL.
type AssetStore interface {
	Store(ctx context.Context, data []byte, originalName string) (string, error)
	// Delete removes a previously stored asset. Deleting a missing asset is not an error.
	Delete(ctx context.Context, ref string) error
}

// Upload is one file submitted with a request.
type Upload struct {
	Filename string
	Data     []byte
}

// Empty reports whether the upload carries no usable file.
func (u *Upload) Empty() bool {
	return u == nil || u.Filename == "" || len(u.Data) == 0
}

// StoredAsset is an asset read back from a store that serves its own bytes.
type StoredAsset struct {
	Name      string
	Data      []byte
	CreatedAt time.Time
}
