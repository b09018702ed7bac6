package storage

import (
	"context"
	"encoding/base32"
	"os"
	"path/filepath"
)

// FileStorage stores each key as one file under a root directory. Keys are
// base32-encoded so arbitrary key strings cannot escape the root.
type FileStorage struct {
	root string
}

// NewFileStorage creates a file-backed storage rooted at the given directory.
// The directory is created lazily on first write.
func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) path(key string) string {
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(key))

	return filepath.Join(s.root, encoded+".kv")
}

func (s *FileStorage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}

	if err != nil {
		return nil, err
	}

	return data, nil
}

func (s *FileStorage) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never leaves a torn value.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path(key))
}

func (s *FileStorage) Remove(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

func (s *FileStorage) Close(_ context.Context) error {
	return nil
}
