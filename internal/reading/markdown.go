package reading

import (
	"bytes"
	"fmt"

	wikilink "github.com/abhinav/goldmark-wikilink"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/mathlinks/internal/parser"
)

// Class names used on rendered links.
const (
	ClassInternalLink = "internal-link"
	ClassOriginal     = "original-internal-link"
	ClassMathLink     = "mathLink-internal-link"
	ClassView         = "markdown-preview-view"
)

// Markdown renders vault documents to HTML. Wikilinks become
// <a class="internal-link" data-href="target#fragment">.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates the document renderer.
func NewMarkdown() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&wikilink.Extender{Resolver: linkResolver{}},
		),
		// Lower priority values register last and take precedence over the
		// extender's own wikilink renderer.
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&internalLinkRenderer{}, 100)),
		),
	)
	return &Markdown{md: md}
}

// Render converts a document (front-matter stripped) into a container node.
func (m *Markdown) Render(data []byte) (*html.Node, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("reading: parse: %w", err)
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(res.Body), &buf); err != nil {
		return nil, fmt.Errorf("reading: render: %w", err)
	}

	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: ClassView}},
	}
	nodes, err := html.ParseFragment(&buf, root)
	if err != nil {
		return nil, fmt.Errorf("reading: parse html: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

var hash = []byte{'#'}

func linkDest(n *wikilink.Node) []byte {
	dest := make([]byte, 0, len(n.Target)+len(hash)+len(n.Fragment))
	dest = append(dest, n.Target...)
	if len(n.Fragment) > 0 {
		dest = append(dest, hash...)
		dest = append(dest, n.Fragment...)
	}
	return dest
}

type linkResolver struct{}

func (linkResolver) ResolveWikilink(n *wikilink.Node) ([]byte, error) {
	return linkDest(n), nil
}

type internalLinkRenderer struct{}

func (r *internalLinkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(wikilink.Kind, r.render)
}

func (r *internalLinkRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n, ok := node.(*wikilink.Node)
	if !ok {
		return ast.WalkContinue, nil
	}
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	dest := util.EscapeHTML(linkDest(n))
	_, _ = w.WriteString(`<a class="` + ClassInternalLink + `" data-href="`)
	_, _ = w.Write(dest)
	_, _ = w.WriteString(`" href="`)
	_, _ = w.Write(dest)
	_, _ = w.WriteString(`">`)
	if n.ChildCount() == 0 {
		_, _ = w.Write(util.EscapeHTML(linkDest(n)))
	}
	return ast.WalkContinue, nil
}
