// Package outline renders the headings of a document for the outline view.
package outline

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/mathlinks/internal/mathrender"
	"github.com/starford/mathlinks/internal/models"
)

// Item is one outline entry.
type Item struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Line    int    `json:"line"`
}

// Items lists the headings of fc in document order.
func Items(fc *models.FileCache) []Item {
	if fc == nil {
		return nil
	}
	out := make([]Item, len(fc.Headings))
	for i, h := range fc.Headings {
		out[i] = Item{Heading: h.Text, Level: h.Level, Line: h.Line}
	}
	return out
}

// ItemRenderer turns one outline entry into a node.
type ItemRenderer interface {
	RenderItem(item Item) *html.Node
}

// MathRenderer typesets math in heading text.
type MathRenderer struct {
	math *mathrender.Renderer
}

func NewMathRenderer(math *mathrender.Renderer) *MathRenderer {
	return &MathRenderer{math: math}
}

func (r *MathRenderer) RenderItem(item Item) *html.Node {
	n := newItem(item)
	r.math.Render(item.Heading, n)
	return n
}

// PlainRenderer shows heading text as is.
type PlainRenderer struct{}

func (PlainRenderer) RenderItem(item Item) *html.Node {
	n := newItem(item)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: item.Heading})
	return n
}

func newItem(item Item) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: "tree-item-inner"},
			{Key: "data-level", Val: strconv.Itoa(item.Level)},
			{Key: "data-line", Val: strconv.Itoa(item.Line)},
		},
	}
}

// Render renders every item with r and wraps them in a container.
func Render(r ItemRenderer, items []Item) *html.Node {
	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: "outline"}},
	}
	for _, it := range items {
		root.AppendChild(r.RenderItem(it))
	}
	return root
}
