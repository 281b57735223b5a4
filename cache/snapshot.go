// Package cache implements the content-addressed result cache: an in-memory
// fingerprint-to-result map with per-entry expiry and a write-through
// persisted snapshot that survives process restart.
package cache

import (
	"os"
	"path/filepath"
)

// SnapshotStore is the persistence target for the whole-cache snapshot.
// Failures only degrade durability, never in-session correctness.
type SnapshotStore interface {
	// Load returns the persisted snapshot bytes, or (nil, nil) when no
	// snapshot exists.
	Load() ([]byte, error)

	// Save replaces the persisted snapshot wholesale.
	Save(data []byte) error

	// Wipe discards any persisted snapshot.
	Wipe() error
}

// FileStore persists the snapshot as a single JSON file, replaced atomically
// on every save.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load implements SnapshotStore.
func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save implements SnapshotStore. The write goes through a temp file and a
// rename so a crash mid-write never leaves a truncated snapshot behind.
func (s *FileStore) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Wipe implements SnapshotStore.
func (s *FileStore) Wipe() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
