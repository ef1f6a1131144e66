// Package models defines the domain types shared by the label pipeline and the vault host.
package models

import (
	"path"
	"strings"
	"time"
)

// DocumentExtension is the extension of files that carry front-matter and links.
const DocumentExtension = "md"

// File identifies a vault file by its slash-separated path relative to the vault root.
type File struct {
	Path string `json:"path"`
}

// Name returns the last path element, e.g. "Note.md".
func (f File) Name() string {
	return path.Base(f.Path)
}

// Extension returns the extension without the leading dot.
func (f File) Extension() string {
	return strings.TrimPrefix(path.Ext(f.Path), ".")
}

// Basename returns the file name with its extension stripped, e.g. "Note".
func (f File) Basename() string {
	name := f.Name()
	return strings.TrimSuffix(name, path.Ext(name))
}

// Dir returns the parent folder ("" for the vault root).
func (f File) Dir() string {
	d := path.Dir(f.Path)
	if d == "." {
		return ""
	}
	return d
}

// IsDocument reports whether the file is a Markdown note.
func (f File) IsDocument() bool {
	return f.Extension() == DocumentExtension
}

// FileMetadata is a lightweight listing entry returned by storage walks.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
