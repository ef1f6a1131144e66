package mathrender

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class names of math placeholders.
const (
	ClassMath   = "math math-inline"
	ClassLoaded = "is-loaded"
)

// QueueTypesetter emits empty math placeholders and fills them with
// delimited TeX on Flush, for typesetting in the browser.
type QueueTypesetter struct {
	mu      sync.Mutex
	pending []queued
}

type queued struct {
	node *html.Node
	tex  string
}

func NewQueueTypesetter() *QueueTypesetter {
	return &QueueTypesetter{}
}

func (q *QueueTypesetter) Typeset(tex string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: ClassMath}},
	}
	q.mu.Lock()
	q.pending = append(q.pending, queued{node: n, tex: tex})
	q.mu.Unlock()
	return n
}

// Pending returns the number of unflushed jobs.
func (q *QueueTypesetter) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *QueueTypesetter) Flush() {
	q.mu.Lock()
	jobs := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, j := range jobs {
		j.node.AppendChild(&html.Node{Type: html.TextNode, Data: `\(` + j.tex + `\)`})
		for i, a := range j.node.Attr {
			if a.Key == "class" && !strings.Contains(a.Val, ClassLoaded) {
				j.node.Attr[i].Val = a.Val + " " + ClassLoaded
			}
		}
	}
}
