// Package live builds the editing-view decorations that replace link
// syntax with rendered labels.
package live

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/starford/mathlinks/internal/mathrender"
	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/settings"
)

// Mode is the editor's view mode.
type Mode string

const (
	ModeLivePreview Mode = "live"
	ModeSource      Mode = "source"
)

// Range is a half-open document range. A cursor is an empty range.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// EditorState is the snapshot a build runs against. Tree is the syntax tree
// of Doc in any node order; Tokenize(Doc) is used when it is nil.
type EditorState struct {
	Path      string  `json:"path"`
	Doc       string  `json:"doc"`
	Mode      Mode    `json:"mode"`
	Visible   []Range `json:"visible"`
	Selection []Range `json:"selection"`
	Tree      *Tree   `json:"tree,omitempty"`
}

// Decoration replaces Doc[From:To] with Widget.
type Decoration struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Widget *Widget `json:"widget"`
}

// Resolver is the label lookup used by the builder.
type Resolver interface {
	Resolve(link models.LinkRef, source models.File) string
	ResolveSourceMode(link models.LinkRef, source models.File) string
	Target(link models.LinkRef, source models.File) (models.File, bool)
}

// SourceModeChecker reports whether any provider wants source-mode labels.
type SourceModeChecker interface {
	SourceModeEnabled() bool
}

// SettingsSource yields the active settings.
type SettingsSource interface {
	Current() settings.Settings
}

// Builder computes decorations. It keeps no state between builds; every
// call recomputes the full set for the visible ranges.
type Builder struct {
	resolver Resolver
	math     *mathrender.Renderer
	settings SettingsSource
	sources  SourceModeChecker
	logger   *slog.Logger
}

// NewBuilder wires a builder.
func NewBuilder(resolver Resolver, math *mathrender.Renderer, s SettingsSource, sources SourceModeChecker, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{resolver: resolver, math: math, settings: s, sources: sources, logger: logger}
}

// Active reports whether decorations are shown for state.
func (b *Builder) Active(state EditorState) bool {
	if b.settings.Current().IsExcluded(state.Path) {
		return false
	}
	switch state.Mode {
	case ModeLivePreview, "":
		return true
	case ModeSource:
		return b.sources.SourceModeEnabled()
	}
	return false
}

// span is the in-progress link being scanned.
type span struct {
	start, end int
	linkText   string
	mathLink   string
	wiki       bool
	embed      bool
	sawURL     bool
}

// Build returns the decorations for every visible range of state.
func (b *Builder) Build(state EditorState) []Decoration {
	if !b.Active(state) {
		return nil
	}
	var tree *Tree
	if state.Tree != nil {
		tree = NewTree(state.Tree.Nodes)
	} else {
		tree = Tokenize(state.Doc)
	}
	visible := state.Visible
	if len(visible) == 0 {
		visible = []Range{{From: 0, To: len(state.Doc)}}
	}
	source := models.File{Path: state.Path}

	var out []Decoration
	for _, r := range visible {
		var cur *span
		pendingEmbed := false
		tree.Iterate(r.From, r.To, func(n Node) {
			text := nodeText(state.Doc, n)
			switch {
			case n.Is(CatEmbed):
				pendingEmbed = true
			case n.Is(CatLinkStart):
				cur = &span{start: n.From, embed: pendingEmbed}
				pendingEmbed = false
			case cur == nil:
			case n.Is(CatAliasPipe):
			case n.Is(CatAlias):
				cur.mathLink += text
			case n.Is(CatInternal):
				cur.wiki = true
				cur.linkText += text
			case n.Is(CatLinkEnd):
				if cur.wiki {
					cur.end = n.To
					out = b.complete(out, cur, state, source)
					cur = nil
				}
			case n.Is(CatLinkString):
				if cur.sawURL {
					cur.end = n.To
					out = b.complete(out, cur, state, source)
					cur = nil
				}
			case n.Is(CatURL):
				cur.sawURL = true
				cur.linkText = decodeURL(text)
			case n.Is(CatLinkText):
				cur.mathLink += text
			}
		})
	}
	return out
}

func (b *Builder) complete(out []Decoration, s *span, state EditorState, source models.File) []Decoration {
	if s.embed || s.linkText == "" || isExternal(s.linkText) {
		return out
	}
	if overlapsSelection(s.start, s.end, state.Selection) {
		return out
	}

	ref := models.ParseLinkRef(s.linkText)
	label := strings.TrimSpace(s.mathLink)
	if label == "" {
		if state.Mode == ModeSource {
			label = b.resolver.ResolveSourceMode(ref, source)
		} else {
			label = b.resolver.Resolve(ref, source)
		}
	}
	if label == "" {
		return out
	}

	w := &Widget{
		Label:    label,
		LinkText: s.linkText,
		Source:   source.Path,
		HTML:     b.math.RenderString(label),
	}
	if f, ok := b.resolver.Target(ref, source); ok {
		w.Target = f.Path
	}
	w.Holder = mathrender.OuterHTML(w.Element())
	return append(out, Decoration{From: s.start, To: s.end, Widget: w})
}

// overlapsSelection treats touching ranges as overlapping, so a cursor
// placed right at a link edge leaves the link editable.
func overlapsSelection(from, to int, sel []Range) bool {
	for _, r := range sel {
		if r.From <= to && r.To >= from {
			return true
		}
	}
	return false
}

func nodeText(doc string, n Node) string {
	if n.From < 0 || n.To > len(doc) || n.From > n.To {
		return ""
	}
	return doc[n.From:n.To]
}

func decodeURL(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

func isExternal(link string) bool {
	if strings.Contains(link, "://") {
		return true
	}
	lower := strings.ToLower(link)
	return strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "obsidian:")
}
