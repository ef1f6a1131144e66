// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/mathlinks/internal/models"

// Provider is the interface for vault file operations. Paths are slash-separated
// and relative to the vault root.
type Provider interface {
	// List returns metadata for every Markdown note under dir.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
