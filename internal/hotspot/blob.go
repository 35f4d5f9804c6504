package hotspot

import (
	"os"
	"path/filepath"
)

// BlobStore persists serialized model artifacts by path.
type BlobStore interface {
	Load(path string) ([]byte, error)
	Save(path string, data []byte) error
}

// FileBlobStore stores model blobs on the local filesystem.
type FileBlobStore struct{}

// NewFileBlobStore creates a filesystem-backed blob store.
func NewFileBlobStore() *FileBlobStore {
	return &FileBlobStore{}
}

// Load reads the blob at path. A missing file surfaces as fs.ErrNotExist.
func (FileBlobStore) Load(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Save writes the blob at path, creating parent directories as needed.
func (FileBlobStore) Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
