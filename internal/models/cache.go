package models

import (
	"fmt"
	"strings"
)

// Front-matter keys read by the native label provider.
const (
	KeyMathLink       = "mathLink"
	KeyMathLinkBlocks = "mathLink-blocks"

	// AutoMathLink asks for the label to be generated from templates.
	AutoMathLink = "auto"
)

// Heading is one ATX heading of a document.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
	Line  int    `json:"line"`
}

// Block is a block anchor ("^id") of a document.
type Block struct {
	ID   string `json:"id"`
	Line int    `json:"line"`
}

// FileCache is the structural cache of a document kept by the host index.
type FileCache struct {
	Path        string           `json:"path"`
	Frontmatter map[string]any   `json:"frontmatter,omitempty"`
	Headings    []Heading        `json:"headings,omitempty"`
	Blocks      map[string]Block `json:"blocks,omitempty"`
}

// Metadata holds the MathLinks fields of a file. A nil field is absent.
type Metadata struct {
	MathLink       *string           `json:"mathLink,omitempty"`
	MathLinkBlocks map[string]string `json:"mathLink-blocks,omitempty"`
}

// Metadata extracts the native MathLinks fields from the front-matter.
func (c *FileCache) Metadata() Metadata {
	var md Metadata
	if c == nil || c.Frontmatter == nil {
		return md
	}
	if raw, ok := c.Frontmatter[KeyMathLink]; ok && raw != nil {
		s := scalarString(raw)
		md.MathLink = &s
	}
	if raw, ok := c.Frontmatter[KeyMathLinkBlocks].(map[string]any); ok {
		md.MathLinkBlocks = make(map[string]string, len(raw))
		for id, v := range raw {
			if v == nil {
				continue
			}
			md.MathLinkBlocks[id] = scalarString(v)
		}
	}
	return md
}

// ResolveSubpath resolves "#Heading", "#Parent#Child" or "#^block" against the cache.
// Headings compare case-insensitively with whitespace collapsed; a nested
// subpath matches headings in document order.
func (c *FileCache) ResolveSubpath(subpath string) Subtarget {
	subpath = strings.TrimPrefix(subpath, "#")
	if c == nil || subpath == "" {
		return Subtarget{}
	}
	if strings.HasPrefix(subpath, "^") {
		id := strings.ToLower(strings.TrimPrefix(subpath, "^"))
		if b, ok := c.Blocks[id]; ok {
			return Subtarget{Kind: SubtargetBlock, BlockID: b.ID}
		}
		return Subtarget{}
	}

	want := strings.Split(subpath, "#")
	next := 0
	var match *Heading
	for i := range c.Headings {
		if next == len(want) {
			break
		}
		if normalizeHeading(c.Headings[i].Text) == normalizeHeading(want[next]) {
			match = &c.Headings[i]
			next++
		}
	}
	if match == nil || next < len(want) {
		return Subtarget{}
	}
	return Subtarget{Kind: SubtargetHeading, Heading: match.Text, Level: match.Level}
}

func normalizeHeading(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
