package index

import (
	"time"

	"github.com/starford/mathlinks/internal/models"
)

// Cache defines the host metadata cache operations.
// Consumers should depend on this interface (or a narrower one) rather than
// the concrete *DB type.
type Cache interface {
	UpsertFile(c *models.FileCache, checksum string, updatedAt time.Time) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	FileCache(path string) (*models.FileCache, error)
	ResolveLinkpath(linkpath, sourcePath string) (models.File, bool, error)
	ListFiles() ([]models.File, error)
	Close() error
}

// Verify *DB satisfies Cache at compile time.
var _ Cache = (*DB)(nil)
