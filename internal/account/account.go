// Package account implements the legacy per-extension metadata API. Each
// account is exposed to the label pipeline as one adapter provider.
package account

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/mathlinks/internal/apperr"
	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/models"
)

// Prefixer computes the prefix for a block label. Returning ok=false drops
// the prefix entirely.
type Prefixer func(source models.File, target *models.File, sub *models.Subtarget) (prefix string, ok bool)

// Account is one extension's registration: a map from file path to metadata.
type Account struct {
	id    string
	owner string
	pub   events.Publisher

	mu                       sync.RWMutex
	metadata                 map[string]models.Metadata
	blockPrefix              string
	prefixer                 Prefixer
	enableFileNameBlockLinks bool
}

func newAccount(owner string, pub events.Publisher) *Account {
	return &Account{
		id:          uuid.NewString(),
		owner:       owner,
		pub:         pub,
		metadata:    make(map[string]models.Metadata),
		blockPrefix: "^",
	}
}

// ID is the account's unique identifier.
func (a *Account) ID() string { return a.id }

// Owner is the identity of the extension the account belongs to.
func (a *Account) Owner() string { return a.owner }

// SetBlockPrefix changes the prefix put in front of block labels.
func (a *Account) SetBlockPrefix(p string) {
	a.mu.Lock()
	a.blockPrefix = p
	a.mu.Unlock()
	a.pub.Publish(events.Event{Kind: events.LabelsRefresh})
}

// SetPrefixer installs fn in place of the default block prefix; nil restores it.
func (a *Account) SetPrefixer(fn Prefixer) {
	a.mu.Lock()
	a.prefixer = fn
	a.mu.Unlock()
	a.pub.Publish(events.Event{Kind: events.LabelsRefresh})
}

// SetFileNameBlockLinks toggles "<file label> > <block label>" composition.
func (a *Account) SetFileNameBlockLinks(on bool) {
	a.mu.Lock()
	a.enableFileNameBlockLinks = on
	a.mu.Unlock()
	a.pub.Publish(events.Event{Kind: events.LabelsRefresh})
}

// Update merges patch into the record for path, creating it if needed.
// Fields set in patch replace the stored ones; nil fields are kept.
func (a *Account) Update(path string, patch models.Metadata) error {
	if err := checkDocument(path); err != nil {
		return err
	}

	a.mu.Lock()
	md := a.metadata[path]
	if patch.MathLink != nil {
		v := *patch.MathLink
		md.MathLink = &v
	}
	if patch.MathLinkBlocks != nil {
		blocks := make(map[string]string, len(patch.MathLinkBlocks))
		for k, v := range patch.MathLinkBlocks {
			blocks[k] = v
		}
		md.MathLinkBlocks = blocks
	}
	a.metadata[path] = md
	a.mu.Unlock()

	a.pub.Publish(events.Event{Kind: events.LabelsUpdated, Path: path})
	return nil
}

// Get returns the mathLink of path, or the label of blockID when it is
// non-empty. ok is false when the record exists but lacks the value.
func (a *Account) Get(path, blockID string) (string, bool, error) {
	if err := checkDocument(path); err != nil {
		return "", false, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	md, exists := a.metadata[path]
	if !exists {
		return "", false, fmt.Errorf("account: no metadata for %s: %w", path, apperr.ErrNotFound)
	}
	if blockID == "" {
		if md.MathLink == nil {
			return "", false, nil
		}
		return *md.MathLink, true, nil
	}
	v, ok := md.MathLinkBlocks[blockID]
	return v, ok, nil
}

// Metadata returns a copy of the record for path.
func (a *Account) Metadata(path string) (models.Metadata, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	md, ok := a.metadata[path]
	if !ok {
		return models.Metadata{}, false
	}
	return copyMetadata(md), true
}

// Delete removes the whole record (which == ""), the mathLink field
// (models.KeyMathLink), every block label (models.KeyMathLinkBlocks) or one
// block label (any other value, taken as a block id). Removing something
// that is not there is an error.
func (a *Account) Delete(path, which string) error {
	if err := checkDocument(path); err != nil {
		return err
	}

	a.mu.Lock()
	md, exists := a.metadata[path]
	if !exists {
		a.mu.Unlock()
		return fmt.Errorf("account: no metadata for %s: %w", path, apperr.ErrNotFound)
	}

	switch which {
	case "":
		delete(a.metadata, path)
	case models.KeyMathLink:
		if md.MathLink == nil {
			a.mu.Unlock()
			return fmt.Errorf("account: %s has no %s: %w", path, models.KeyMathLink, apperr.ErrNotFound)
		}
		md.MathLink = nil
		a.metadata[path] = md
	case models.KeyMathLinkBlocks:
		if md.MathLinkBlocks == nil {
			a.mu.Unlock()
			return fmt.Errorf("account: %s has no %s: %w", path, models.KeyMathLinkBlocks, apperr.ErrNotFound)
		}
		md.MathLinkBlocks = nil
		a.metadata[path] = md
	default:
		if _, ok := md.MathLinkBlocks[which]; !ok {
			a.mu.Unlock()
			return fmt.Errorf("account: %s has no block %q: %w", path, which, apperr.ErrNotFound)
		}
		blocks := make(map[string]string, len(md.MathLinkBlocks)-1)
		for k, v := range md.MathLinkBlocks {
			if k != which {
				blocks[k] = v
			}
		}
		md.MathLinkBlocks = blocks
		a.metadata[path] = md
	}
	a.mu.Unlock()

	a.pub.Publish(events.Event{Kind: events.LabelsUpdated, Path: path})
	return nil
}

// Paths lists the files that have a record.
func (a *Account) Paths() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.metadata))
	for p := range a.metadata {
		out = append(out, p)
	}
	return out
}

func checkDocument(path string) error {
	if !(models.File{Path: path}).IsDocument() {
		return fmt.Errorf("account: %s: %w", path, apperr.ErrNotDocument)
	}
	return nil
}

func copyMetadata(md models.Metadata) models.Metadata {
	out := models.Metadata{}
	if md.MathLink != nil {
		v := *md.MathLink
		out.MathLink = &v
	}
	if md.MathLinkBlocks != nil {
		out.MathLinkBlocks = make(map[string]string, len(md.MathLinkBlocks))
		for k, v := range md.MathLinkBlocks {
			out.MathLinkBlocks[k] = v
		}
	}
	return out
}
