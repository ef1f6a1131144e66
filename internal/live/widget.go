package live

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Widget is the rendered replacement of one link.
// Target is the resolved file, empty when the link does not resolve. HTML
// is the math-rendered label and Holder the serialized Element.
type Widget struct {
	Label    string `json:"label"`
	LinkText string `json:"link_text"`
	Source   string `json:"source"`
	Target   string `json:"target,omitempty"`
	HTML     string `json:"html"`
	Holder   string `json:"holder"`
}

// Element returns the widget's DOM: a draggable span holding the label.
func (w *Widget) Element() *html.Node {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: "cm-hmd-internal-link cm-underline mathLink-internal-link"},
			{Key: "draggable", Val: "true"},
			{Key: "data-href", Val: w.LinkText},
		},
	}
	nodes, err := html.ParseFragment(strings.NewReader(w.HTML), span)
	if err != nil {
		span.AppendChild(&html.Node{Type: html.TextNode, Data: w.Label})
		return span
	}
	for _, n := range nodes {
		span.AppendChild(n)
	}
	return span
}

// Mouse buttons.
const (
	ButtonPrimary = 0
	ButtonMiddle  = 1
)

// PointerEvent is a mouse event delivered to a widget.
type PointerEvent struct {
	Type   string `json:"type"` // "click", "mousedown" or "auxclick"
	Button int    `json:"button"`
	Ctrl   bool   `json:"ctrl"`
	Meta   bool   `json:"meta"`
}

// Action is what the editor should do in response to a PointerEvent.
type Action struct {
	PreventDefault bool   `json:"prevent_default"`
	Navigate       bool   `json:"navigate"`
	NewPane        bool   `json:"new_pane"`
	External       bool   `json:"external"`
	LinkText       string `json:"link_text,omitempty"`
	Source         string `json:"source,omitempty"`
}

// HandleEvent maps a pointer event to an action, following the host's link
// conventions: primary click opens the link (in a new pane with Ctrl/Cmd),
// the middle button opens it in a new pane on auxclick and has its
// mousedown default (paste, autoscroll) suppressed.
func (w *Widget) HandleEvent(ev PointerEvent) Action {
	switch {
	case ev.Type == "click" && ev.Button == ButtonPrimary:
		return w.navigate(ev.Ctrl || ev.Meta)
	case ev.Type == "mousedown" && ev.Button == ButtonMiddle:
		return Action{PreventDefault: true}
	case ev.Type == "auxclick" && ev.Button == ButtonMiddle:
		return w.navigate(true)
	}
	return Action{}
}

func (w *Widget) navigate(newPane bool) Action {
	return Action{
		PreventDefault: true,
		Navigate:       true,
		NewPane:        newPane,
		External:       w.Target == "",
		LinkText:       w.LinkText,
		Source:         w.Source,
	}
}
