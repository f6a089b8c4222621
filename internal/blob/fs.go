package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore stores blobs on the local filesystem under a base directory. Keys
// use forward slashes (e.g. "jobID/uploadID.pdf") and map to subdirectories.
type FSStore struct {
	baseDir string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates the base directory if needed and returns the store.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// Put writes data under key, creating intermediate directories.
func (f *FSStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := f.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create blob subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

// Get reads the content stored under key.
func (f *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := f.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// resolve maps a key to a path under baseDir, rejecting traversal attempts.
func (f *FSStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key: %q", key)
	}
	return filepath.Join(f.baseDir, clean), nil
}
