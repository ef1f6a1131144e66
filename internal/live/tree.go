package live

import (
	"sort"
	"strings"
)

// Token categories. A node's Name holds one or more of them, space separated.
const (
	CatLinkStart  = "formatting-link-start"
	CatLinkEnd    = "formatting-link-end"
	CatInternal   = "hmd-internal-link"
	CatAliasPipe  = "link-alias-pipe"
	CatAlias      = "link-alias"
	CatLinkText   = "link"
	CatLinkString = "formatting-link-string"
	CatURL        = "url"
	CatEmbed      = "formatting-embed"
	CatFormatting = "formatting"
)

// Node is one syntax token covering Doc[From:To].
type Node struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Name string `json:"name"`
}

// Is reports whether the node carries category cat.
func (n Node) Is(cat string) bool {
	for _, c := range strings.Fields(n.Name) {
		if c == cat {
			return true
		}
	}
	return false
}

// Tree is a flat, position-ordered token stream.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// NewTree sorts nodes by position.
func NewTree(nodes []Node) *Tree {
	sorted := append([]Node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })
	return &Tree{Nodes: sorted}
}

// Iterate calls fn for every node lying entirely inside [from, to).
func (t *Tree) Iterate(from, to int, fn func(Node)) {
	start := sort.Search(len(t.Nodes), func(i int) bool { return t.Nodes[i].From >= from })
	for _, n := range t.Nodes[start:] {
		if n.From >= to {
			return
		}
		if n.To <= to {
			fn(n)
		}
	}
}
