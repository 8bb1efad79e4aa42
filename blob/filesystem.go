package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore persists each blob as one JSON file under a base
// directory. Record keys map to flat file names: "user-1:profile" becomes
// "user-1_profile.json". Writes go through a temp file and rename so a crash
// mid-write never leaves a truncated record.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates the base directory if needed and returns a
// store rooted there.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FilesystemStore{dir: dir}, nil
}

// path maps a record key to its file path, sanitizing separators so keys
// cannot escape the base directory.
func (f *FilesystemStore) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", string(os.PathSeparator), "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

// SaveBlob writes the bytes for the key atomically.
func (f *FilesystemStore) SaveBlob(key string, data []byte) error {
	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit blob %s: %w", key, err)
	}
	return nil
}

// LoadBlob reads the bytes for the key; a missing file is not an error.
func (f *FilesystemStore) LoadBlob(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, true, nil
}

// DeleteBlob removes the key's file; deleting a missing key is a no-op.
func (f *FilesystemStore) DeleteBlob(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
