// Package storage persists rendered export artifacts and hands out the URLs
// they are served under.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store saves one artifact and returns the URL a client can fetch it from.
// Implementations must be safe for concurrent use; the export service calls
// Save once per artifact per request.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (url string, err error)
}

// DiskStore writes artifacts to a local directory that the HTTP server serves
// under /exports/. This mirrors the deployment model of the export worker's
// local mode; swapping in an object store only requires another Store.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore constructs a DiskStore rooted at dir. baseURL (may be empty)
// is prefixed onto the returned /exports/ paths.
func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save writes data to dir/name and returns the served URL.
// The name is reduced to its base to keep writes inside the export directory.
func (s *DiskStore) Save(_ context.Context, name string, data []byte) (string, error) {
	name = filepath.Base(name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("storage.DiskStore.Save: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage.DiskStore.Save: %w", err)
	}
	return s.baseURL + "/exports/" + name, nil
}
