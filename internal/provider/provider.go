// Package provider holds the ordered registry of pluggable label sources.
package provider

import (
	"fmt"

	"github.com/starford/mathlinks/internal/models"
)

// Request is what a provider sees for one link. Target and Subtarget are nil
// when the link did not resolve.
type Request struct {
	Link      models.LinkRef
	Target    *models.File
	Subtarget *models.Subtarget
	Source    models.File
}

// SubtargetKind returns the kind of the resolved sub-target, or SubtargetNone.
func (r Request) SubtargetKind() models.SubtargetKind {
	if r.Subtarget == nil {
		return models.SubtargetNone
	}
	return r.Subtarget.Kind
}

// Provider supplies a label for a link. An empty string means "no opinion";
// the next provider is consulted.
//
// Implementations are compared by identity when registered, so they should be
// pointer types.
type Provider interface {
	Provide(req Request) (string, error)
}

// SourceModeProvider is implemented by providers that also want their labels
// shown while the editor is in source mode.
type SourceModeProvider interface {
	Provider
	EnableInSourceMode() bool
}

// Named is implemented by providers that report a display name.
type Named interface {
	Name() string
}

// NameOf returns p's display name, or its Go type when it has none.
func NameOf(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
