// Package mathrender splits labels into text and $math$ runs and renders
// them into HTML nodes.
package mathrender

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// mathRe matches $...$ where the closing delimiter does not follow whitespace.
var mathRe = regexp.MustCompile(`\$(.*?[^\s])\$`)

// Segment is one run of a label.
type Segment struct {
	Text string `json:"text"`
	Math bool   `json:"math"`
}

// Source returns the label text the segment came from.
func (s Segment) Source() string {
	if s.Math {
		return "$" + s.Text + "$"
	}
	return s.Text
}

// Split cuts label into literal and math segments in order. Empty literal
// runs are omitted.
func Split(label string) []Segment {
	var out []Segment
	last := 0
	for _, m := range mathRe.FindAllStringSubmatchIndex(label, -1) {
		if m[0] > last {
			out = append(out, Segment{Text: label[last:m[0]]})
		}
		out = append(out, Segment{Text: label[m[2]:m[3]], Math: true})
		last = m[1]
	}
	if last < len(label) {
		out = append(out, Segment{Text: label[last:]})
	}
	return out
}

// Join reassembles the source text of segs.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Source())
	}
	return b.String()
}

// Typesetter turns TeX into nodes. Typeset may return a placeholder that is
// only filled in by Flush.
type Typesetter interface {
	Typeset(tex string) *html.Node
	Flush()
}

// Renderer renders labels with a Typesetter. Calls are serialized so a flush
// only ever completes the caller's own jobs.
type Renderer struct {
	mu sync.Mutex
	ts Typesetter
}

// New creates a renderer; a nil ts selects a QueueTypesetter.
func New(ts Typesetter) *Renderer {
	if ts == nil {
		ts = NewQueueTypesetter()
	}
	return &Renderer{ts: ts}
}

// Render replaces the children of target with the rendered label and
// flushes the typesetter before returning.
func (r *Renderer) Render(label string, target *html.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := target.FirstChild; c != nil; c = target.FirstChild {
		target.RemoveChild(c)
	}
	for _, seg := range Split(label) {
		if seg.Math {
			target.AppendChild(r.ts.Typeset(seg.Text))
			continue
		}
		target.AppendChild(&html.Node{Type: html.TextNode, Data: seg.Text})
	}
	r.ts.Flush()
}

// RenderString renders label and returns the HTML of its nodes.
func (r *Renderer) RenderString(label string) string {
	span := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	r.Render(label, span)
	return InnerHTML(span)
}

// OuterHTML serializes n itself.
func OuterHTML(n *html.Node) string {
	var b strings.Builder
	_ = html.Render(&b, n)
	return b.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}
