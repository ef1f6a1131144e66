// Package exclusion decides which files are out of scope for label substitution.
package exclusion

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Entry excludes one file (IsFile) or a whole folder.
type Entry struct {
	Path   string `yaml:"path" json:"path"`
	IsFile bool   `yaml:"is_file" json:"isFile"`
}

func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Path, validation.Required),
	)
}

// Matches reports whether path falls under e. Folder entries only match on a
// path-segment boundary: "Archive" covers "Archive/x.md" but not "ArchiveX.md".
func (e Entry) Matches(path string) bool {
	entry := strings.Trim(e.Path, "/")
	path = strings.TrimPrefix(path, "/")
	if entry == "" {
		return false
	}
	if e.IsFile {
		return path == entry
	}
	return strings.HasPrefix(path, entry+"/")
}

// IsExcluded reports whether any entry matches path.
func IsExcluded(path string, entries []Entry) bool {
	for _, e := range entries {
		if e.Matches(path) {
			return true
		}
	}
	return false
}
