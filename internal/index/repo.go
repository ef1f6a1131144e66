package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/mathlinks/internal/models"
)

// UpsertFile replaces the cached structure of one document within a transaction.
func (db *DB) UpsertFile(c *models.FileCache, checksum string, updatedAt time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	fm := c.Frontmatter
	if fm == nil {
		fm = map[string]any{}
	}
	fmJSON, err := json.Marshal(fm)
	if err != nil {
		return fmt.Errorf("index: encode frontmatter %s: %w", c.Path, err)
	}

	f := models.File{Path: c.Path}
	_, err = tx.Exec(`
		INSERT INTO files (path, basename, dir, checksum, frontmatter, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			basename    = excluded.basename,
			dir         = excluded.dir,
			checksum    = excluded.checksum,
			frontmatter = excluded.frontmatter,
			updated_at  = excluded.updated_at
	`, c.Path, f.Basename(), f.Dir(), checksum, string(fmJSON), updatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM headings WHERE path = ?`, c.Path)
	_, _ = tx.Exec(`DELETE FROM blocks WHERE path = ?`, c.Path)

	if len(c.Headings) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO headings (path, ord, level, text, line) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare heading insert: %w", err)
		}
		defer stmt.Close()
		for i, h := range c.Headings {
			if _, err := stmt.Exec(c.Path, i, h.Level, h.Text, h.Line); err != nil {
				return fmt.Errorf("index: insert heading: %w", err)
			}
		}
	}

	if len(c.Blocks) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO blocks (path, id_key, id, line) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare block insert: %w", err)
		}
		defer stmt.Close()
		for key, b := range c.Blocks {
			if _, err := stmt.Exec(c.Path, key, b.ID, b.Line); err != nil {
				return fmt.Errorf("index: insert block: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a document and its structure.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM headings WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM blocks WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every cached file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListFiles returns every cached document ordered by path.
func (db *DB) ListFiles() ([]models.File, error) {
	rows, err := db.conn.Query(`SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()
	var out []models.File
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, models.File{Path: p})
	}
	return out, rows.Err()
}

// FileCache loads the structural cache of a document. It returns (nil, nil)
// when the file is not cached.
func (db *DB) FileCache(path string) (*models.FileCache, error) {
	var fmJSON string
	err := db.conn.QueryRow(`SELECT frontmatter FROM files WHERE path = ?`, path).Scan(&fmJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: file cache %s: %w", path, err)
	}

	c := &models.FileCache{Path: path, Blocks: map[string]models.Block{}}
	if err := json.Unmarshal([]byte(fmJSON), &c.Frontmatter); err != nil {
		return nil, fmt.Errorf("index: decode frontmatter %s: %w", path, err)
	}
	if len(c.Frontmatter) == 0 {
		c.Frontmatter = nil
	}

	rows, err := db.conn.Query(`SELECT level, text, line FROM headings WHERE path = ? ORDER BY ord`, path)
	if err != nil {
		return nil, fmt.Errorf("index: headings %s: %w", path, err)
	}
	for rows.Next() {
		var h models.Heading
		if err := rows.Scan(&h.Level, &h.Text, &h.Line); err != nil {
			rows.Close()
			return nil, err
		}
		c.Headings = append(c.Headings, h)
	}
	rows.Close()

	rows, err = db.conn.Query(`SELECT id_key, id, line FROM blocks WHERE path = ?`, path)
	if err != nil {
		return nil, fmt.Errorf("index: blocks %s: %w", path, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var b models.Block
		if err := rows.Scan(&key, &b.ID, &b.Line); err != nil {
			return nil, err
		}
		c.Blocks[key] = b
	}
	return c, rows.Err()
}

// ResolveLinkpath finds the document a link path points to, as seen from
// sourcePath. An empty link path refers to the source itself. Resolution order:
// exact vault path, path relative to the source folder (both with ".md"
// appended when missing), then a case-insensitive basename match whose path
// ends with the link path, preferring the source folder, then the shortest path.
func (db *DB) ResolveLinkpath(linkpath, sourcePath string) (models.File, bool, error) {
	linkpath = strings.TrimPrefix(strings.TrimSpace(linkpath), "/")
	if linkpath == "" {
		if sourcePath == "" {
			return models.File{}, false, nil
		}
		return models.File{Path: sourcePath}, true, nil
	}

	withExt := linkpath
	if !strings.HasSuffix(strings.ToLower(withExt), "."+models.DocumentExtension) {
		withExt += "." + models.DocumentExtension
	}
	sourceDir := models.File{Path: sourcePath}.Dir()

	candidates := []string{linkpath, withExt}
	if sourceDir != "" {
		candidates = append(candidates, path.Join(sourceDir, linkpath), path.Join(sourceDir, withExt))
	}
	for _, c := range candidates {
		var p string
		err := db.conn.QueryRow(`SELECT path FROM files WHERE path = ?`, c).Scan(&p)
		if err == nil {
			return models.File{Path: p}, true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.File{}, false, fmt.Errorf("index: resolve %s: %w", linkpath, err)
		}
	}

	base := models.File{Path: withExt}.Basename()
	rows, err := db.conn.Query(`SELECT path, dir FROM files WHERE basename = ? COLLATE NOCASE`, base)
	if err != nil {
		return models.File{}, false, fmt.Errorf("index: resolve %s: %w", linkpath, err)
	}
	defer rows.Close()

	type match struct{ path, dir string }
	var matches []match
	suffix := strings.ToLower("/" + withExt)
	for rows.Next() {
		var m match
		if err := rows.Scan(&m.path, &m.dir); err != nil {
			return models.File{}, false, err
		}
		lower := strings.ToLower(m.path)
		if lower == strings.ToLower(withExt) || strings.HasSuffix(lower, suffix) {
			matches = append(matches, m)
		}
	}
	if err := rows.Err(); err != nil {
		return models.File{}, false, err
	}
	if len(matches) == 0 {
		return models.File{}, false, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		si, sj := matches[i].dir == sourceDir, matches[j].dir == sourceDir
		if si != sj {
			return si
		}
		if len(matches[i].path) != len(matches[j].path) {
			return len(matches[i].path) < len(matches[j].path)
		}
		return matches[i].path < matches[j].path
	})
	return models.File{Path: matches[0].path}, true, nil
}
