package scriptfill

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// DocumentStore persists named JSON documents.
// Implementations must be safe for concurrent use.
//
// Save replaces a document as a whole: after a failed Save the previously
// stored document is still intact.
type DocumentStore interface {
	// Load returns the stored document.
	// Returns an error matching ErrDocumentNotFound if the key was never saved.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores data under key, replacing any previous document.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes a document.
	// Returns an error matching ErrDocumentNotFound if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys in sorted order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	// After Close, the store should not be used.
	Close() error
}

// StorageDriver is a factory for creating document stores.
// Drivers register themselves during init().
type StorageDriver interface {
	// Open creates a new store with the given connection string.
	// The format of the connection string is driver-specific.
	Open(connectionString string) (DocumentStore, error)
}

// Storage driver registry
var (
	storageDriversMu sync.RWMutex
	storageDrivers   = make(map[string]StorageDriver)
)

// RegisterStorageDriver registers a storage driver by name.
// This is typically called from a driver's init() function.
// Panics if a driver with the same name is already registered.
func RegisterStorageDriver(name string, driver StorageDriver) {
	storageDriversMu.Lock()
	defer storageDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}
	if _, exists := storageDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers[name] = driver
}

// OpenStorage opens a document store using the named driver.
//
// Example:
//
//	store, err := scriptfill.OpenStorage("memory", "")
//	store, err := scriptfill.OpenStorage("filesystem", "/home/me/.scriptfill")
//	store, err := scriptfill.OpenStorage("postgres", "postgres://user:pw@localhost/db?sslmode=disable")
func OpenStorage(driverName, connectionString string) (DocumentStore, error) {
	storageDriversMu.RLock()
	driver, ok := storageDrivers[driverName]
	storageDriversMu.RUnlock()

	if !ok {
		return nil, NewStorageDriverNotFoundError(driverName)
	}

	return driver.Open(connectionString)
}

// ListStorageDrivers returns the names of all registered storage drivers in sorted order.
func ListStorageDrivers() []string {
	storageDriversMu.RLock()
	defer storageDriversMu.RUnlock()

	names := make([]string, 0, len(storageDrivers))
	for name := range storageDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Storage error message constants
const (
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgDocumentNotFound        = "document not found"
	ErrMsgInvalidDocumentKey      = "invalid document key"
	ErrMsgPathTraversalDetected   = "path traversal detected in document key"
	ErrMsgInvalidStorageRoot      = "storage root directory cannot be empty"
	ErrMsgCreateStorageDir        = "failed to create storage directory"
	ErrMsgReadStorageDir          = "failed to read storage directory"
	ErrMsgReadDocument            = "failed to read document"
	ErrMsgWriteDocument           = "failed to write document"
	ErrMsgDeleteDocument          = "failed to delete document"

	ErrMsgPostgresEmptyConnString  = "PostgreSQL connection string cannot be empty"
	ErrMsgPostgresConnectionFailed = "failed to connect to PostgreSQL"
	ErrMsgPostgresQueryFailed      = "PostgreSQL query failed"
	ErrMsgPostgresMigrationFailed  = "PostgreSQL migration failed"
	ErrMsgPostgresAlreadyClosed    = "PostgreSQL storage already closed"
)

// ErrDocumentNotFound is matched by errors for keys that were never saved.
var ErrDocumentNotFound = errors.New(ErrMsgDocumentNotFound)

// NewStorageDriverNotFoundError creates an error for missing storage driver.
func NewStorageDriverNotFoundError(name string) error {
	return &StorageError{
		Message: ErrMsgStorageDriverNotFound,
		Name:    name,
	}
}

// NewDocumentNotFoundError creates an error for a missing document.
func NewDocumentNotFoundError(key string) error {
	return &StorageError{
		Message: ErrMsgDocumentNotFound,
		Name:    key,
		Cause:   ErrDocumentNotFound,
	}
}

// NewStorageClosedError creates an error for operations on closed storage.
func NewStorageClosedError() error {
	return &StorageError{
		Message: ErrMsgStorageClosed,
	}
}

// IsDocumentNotFound reports whether err means the document doesn't exist
func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
	Name    string
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Cause != nil && e.Cause != ErrDocumentNotFound {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
