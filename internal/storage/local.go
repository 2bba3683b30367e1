package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes files below a directory.
type LocalStore struct {
	dir        string
	publicBase string
}

// NewLocalStore stores files in dir (default "quotes"). When publicBase is
// set, Save returns publicBase/key instead of the file path.
func NewLocalStore(dir, publicBase string) *LocalStore {
	if dir == "" {
		dir = "quotes"
	}
	return &LocalStore{dir: dir, publicBase: publicBase}
}

// Save writes data atomically: readers never observe a partial file.
func (s *LocalStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	key, err := ValidateKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: create: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	if s.publicBase != "" {
		return publicURL(s.publicBase, key), nil
	}
	return path, nil
}
