package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage defines the interface for the attachment blob store.
// The store is an external collaborator: messages reference blobs by
// an opaque attachment id, nothing else about the blob is owned here.
type Storage interface {
	// Save stores a blob under the given path
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a blob from the given path
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a blob at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if a blob exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// GetSize returns the size of a blob in bytes
	GetSize(ctx context.Context, path string) (int64, error)

	// GetURL returns a public download URL for a blob
	GetURL(path string) string
}

// Config holds storage configuration
type Config struct {
	Type     string // local
	BasePath string // for local storage
	BaseURL  string // public URL base for download links
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
