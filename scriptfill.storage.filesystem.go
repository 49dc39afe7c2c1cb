package scriptfill

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FilesystemStore stores each document as a JSON file under a root directory.
//
// Directory structure:
//
//	<root>/
//	  engine_state.json
//	  presets.json
//
// Writes go to a temporary file in the same directory which is synced and
// then renamed over the target, so a crash never leaves a partial document.
type FilesystemStore struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemStorageDriver is the driver for creating FilesystemStore instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

// Open creates a new FilesystemStore instance.
// The connection string is the root directory path.
func (d *FilesystemStorageDriver) Open(connectionString string) (DocumentStore, error) {
	return NewFilesystemStore(connectionString)
}

// NewFilesystemStore creates a new filesystem-based document store.
// The root directory will be created if it doesn't exist.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}

	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StorageError{
			Message: ErrMsgCreateStorageDir,
			Name:    root,
			Cause:   err,
		}
	}

	return &FilesystemStore{root: root}, nil
}

// Root returns the directory holding the documents
func (s *FilesystemStore) Root() string {
	return s.root
}

// Load reads a document file.
func (s *FilesystemStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateDocumentKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewDocumentNotFoundError(key)
		}
		return nil, &StorageError{Message: ErrMsgReadDocument, Name: key, Cause: err}
	}
	return data, nil
}

// Save writes a document file atomically.
func (s *FilesystemStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateDocumentKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	if err := writeFileAtomic(s.path(key), data); err != nil {
		return &StorageError{Message: ErrMsgWriteDocument, Name: key, Cause: err}
	}
	return nil
}

// Delete removes a document file.
func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateDocumentKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocumentNotFoundError(key)
		}
		return &StorageError{Message: ErrMsgDeleteDocument, Name: key, Cause: err}
	}
	return nil
}

// Keys lists the stored documents in sorted order.
func (s *FilesystemStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: s.root, Cause: err}
	}

	// ReadDir sorts by filename and the suffix is shared, so keys stay sorted
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, FilesystemDocSuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, FilesystemDocSuffix))
	}
	return keys, nil
}

// Close marks the store as closed.
func (s *FilesystemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *FilesystemStore) path(key string) string {
	return filepath.Join(s.root, key+FilesystemDocSuffix)
}

// validateDocumentKey ensures a key is safe to use as a file name
func validateDocumentKey(key string) error {
	if key == "" {
		return &StorageError{Message: ErrMsgInvalidDocumentKey}
	}
	if strings.Contains(key, "..") {
		return &StorageError{Message: ErrMsgPathTraversalDetected, Name: key}
	}
	if strings.ContainsAny(key, "/\\:*?\"<>|") || strings.HasPrefix(key, ".") {
		return &StorageError{Message: ErrMsgInvalidDocumentKey, Name: key}
	}
	return nil
}

// writeFileAtomic replaces path with data via a synced temp file and rename.
// The previous content survives any failure.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, FilesystemTempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, FilesystemFilePermissions); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Ensure FilesystemStore implements DocumentStore
var _ DocumentStore = (*FilesystemStore)(nil)
