package models

import "strings"

// LinkRef is a parsed link target: [[path#subpath]].
//
// Subpath keeps its leading '#', so "Note#^abc" parses to {Path: "Note", Subpath: "#^abc"}.
type LinkRef struct {
	Path    string `json:"path"`
	Subpath string `json:"subpath"`
}

// ParseLinkRef splits raw link text at the first '#'.
func ParseLinkRef(linktext string) LinkRef {
	linktext = strings.TrimSpace(linktext)
	i := strings.Index(linktext, "#")
	if i < 0 {
		return LinkRef{Path: linktext}
	}
	return LinkRef{Path: strings.TrimSpace(linktext[:i]), Subpath: linktext[i:]}
}

// String reassembles the raw link text.
func (l LinkRef) String() string {
	return l.Path + l.Subpath
}

// Breadcrumb rewrites "name#heading" as "name > heading" and "name#^id" as
// "name > ^id". A same-file anchor maps to the sub-target portion alone.
func Breadcrumb(linktext string) string {
	parts := strings.Split(linktext, "#")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " > ")
}

// SubtargetKind tags a Subtarget.
type SubtargetKind int

const (
	SubtargetNone SubtargetKind = iota
	SubtargetHeading
	SubtargetBlock
)

func (k SubtargetKind) String() string {
	switch k {
	case SubtargetHeading:
		return "heading"
	case SubtargetBlock:
		return "block"
	default:
		return "none"
	}
}

// Subtarget is the result of resolving a LinkRef subpath against a FileCache.
type Subtarget struct {
	Kind    SubtargetKind `json:"kind"`
	Heading string        `json:"heading,omitempty"`
	Level   int           `json:"level,omitempty"`
	BlockID string        `json:"block_id,omitempty"`
}
