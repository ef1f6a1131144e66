package index

import (
	"log/slog"
	"time"

	"github.com/starford/mathlinks/internal/parser"
	"github.com/starford/mathlinks/internal/storage"
)

// Sync walks the vault and brings the cache up to date:
//   - new/changed documents are parsed and upserted
//   - documents removed from disk are deleted from the cache
//
// cb, if non-nil, is called for every path whose cached metadata changed.
func Sync(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path))
		if cb != nil {
			cb(EventUpdated, m.Path)
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			logger.Debug("sync: removed stale", slog.String("path", p))
			if cb != nil {
				cb(EventDeleted, p)
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts its structural cache.
func IndexFile(db Cache, path string, data []byte, updatedAt time.Time) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return db.UpsertFile(res.FileCache(path), storage.Checksum(data), updatedAt)
}
