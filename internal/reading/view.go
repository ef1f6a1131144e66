// Package reading decorates links in rendered (reading view) HTML with
// their MathLinks labels.
package reading

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/mathrender"
	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/settings"
)

const attrSavedStyle = "data-mathlink-style"

// Resolver is the label lookup used by the post-processor.
type Resolver interface {
	Resolve(link models.LinkRef, source models.File) string
	Target(link models.LinkRef, source models.File) (models.File, bool)
}

// Subscriber delivers notifications.
type Subscriber interface {
	Subscribe(h events.Handler) (unsubscribe func())
}

// SettingsSource yields the active settings.
type SettingsSource interface {
	Current() settings.Settings
}

// PostProcessor turns rendered internal links into label holders.
type PostProcessor struct {
	resolver Resolver
	math     *mathrender.Renderer
	settings SettingsSource
	bus      Subscriber
	logger   *slog.Logger
}

// NewPostProcessor wires the post-processor. bus may be nil, in which case
// views never repaint on their own.
func NewPostProcessor(resolver Resolver, math *mathrender.Renderer, s SettingsSource, bus Subscriber, logger *slog.Logger) *PostProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostProcessor{resolver: resolver, math: math, settings: s, bus: bus, logger: logger}
}

type decorated struct {
	original *html.Node
	clone    *html.Node
	ref      models.LinkRef
	display  string
	target   string
	getter   func() string
}

// View is a processed container. It repaints its labels on notifications
// until Close is called.
type View struct {
	p      *PostProcessor
	source models.File

	mu          sync.Mutex
	root        *html.Node
	links       []*decorated
	unsubscribe func()
	closed      bool
}

// Process decorates every internal link under root. Links left decorated
// by an earlier pass are first restored to their plain form. Nothing is
// decorated for excluded source files.
func (p *PostProcessor) Process(root *html.Node, source models.File) *View {
	v := &View{p: p, source: source, root: root}

	for _, orig := range findAll(root, func(n *html.Node) bool { return hasClass(n, ClassOriginal) }) {
		teardown(orig)
	}

	if p.settings.Current().IsExcluded(source.Path) {
		return v
	}

	anchors := findAll(root, func(n *html.Node) bool {
		return n.Data == "a" && hasClass(n, ClassInternalLink)
	})
	for _, a := range anchors {
		if a.Parent == nil {
			continue
		}
		v.links = append(v.links, p.decorate(a, source))
	}

	for _, d := range v.links {
		p.paint(d)
	}
	if p.bus != nil && len(v.links) > 0 {
		v.unsubscribe = p.bus.Subscribe(v.handle)
	}
	p.logger.Debug("reading: processed",
		slog.String("source", source.Path),
		slog.Int("links", len(v.links)))
	return v
}

// Open renders a document with md and decorates the result.
func (p *PostProcessor) Open(md *Markdown, data []byte, source models.File) (*View, error) {
	root, err := md.Render(data)
	if err != nil {
		return nil, err
	}
	return p.Process(root, source), nil
}

func (p *PostProcessor) decorate(a *html.Node, source models.File) *decorated {
	linktext, _ := getAttr(a, "data-href")
	d := &decorated{
		original: a,
		ref:      models.ParseLinkRef(linktext),
		display:  strings.TrimSpace(textContent(a)),
	}
	if f, ok := p.resolver.Target(d.ref, source); ok {
		d.target = f.Path
	}
	d.getter = p.labelGetter(d, linktext, source)

	clone := shallowClone(a)
	addClass(clone, ClassMathLink)
	insertAfter(a, clone)
	d.clone = clone

	addClass(a, ClassOriginal)
	if style, ok := getAttr(a, "style"); ok {
		setAttr(a, attrSavedStyle, style)
	}
	setAttr(a, "style", "display:none")
	return d
}

// labelGetter picks, once, where the label comes from. Display text that
// merely repeats the link target is resolved live; any other display text
// is an alias and shown verbatim.
func (p *PostProcessor) labelGetter(d *decorated, linktext string, source models.File) func() string {
	display := d.display
	if display == linktext || display == models.Breadcrumb(linktext) {
		ref := d.ref
		return func() string { return p.resolver.Resolve(ref, source) }
	}
	if display != "" {
		return func() string { return display }
	}
	return func() string { return "" }
}

func (p *PostProcessor) paint(d *decorated) {
	label := d.getter()
	if label == "" {
		label = d.display
	}
	p.math.Render(label, d.clone)
}

// teardown restores a previously hidden original and drops its clone.
func teardown(orig *html.Node) {
	if next := orig.NextSibling; next != nil && next.Type == html.ElementNode && hasClass(next, ClassMathLink) {
		orig.Parent.RemoveChild(next)
	}
	removeClass(orig, ClassOriginal)
	if style, ok := getAttr(orig, attrSavedStyle); ok {
		setAttr(orig, "style", style)
		removeAttr(orig, attrSavedStyle)
	} else {
		removeAttr(orig, "style")
	}
}

func (v *View) handle(ev events.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	for _, d := range v.links {
		switch ev.Kind {
		case events.LabelsRefresh, events.AccountDeleted:
		case events.MetadataChanged:
			if d.target != "" && d.target != ev.Path && d.ref.Path != "" {
				continue
			}
			if f, ok := v.p.resolver.Target(d.ref, v.source); ok {
				d.target = f.Path
			}
		case events.LabelsUpdated:
			if d.target != ev.Path {
				continue
			}
		default:
			continue
		}
		v.p.paint(d)
	}
}

// Labels returns the text currently shown by each decorated link.
func (v *View) Labels() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.links))
	for i, d := range v.links {
		out[i] = textContent(d.clone)
	}
	return out
}

// Len returns the number of decorated links.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.links)
}

// HTML serializes the container's children.
func (v *View) HTML() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return mathrender.InnerHTML(v.root)
}

// Detach stops repainting but leaves the decorations in place.
func (v *View) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

// Close stops repainting and restores the container: hidden originals are
// made visible again before their clones are removed.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	for _, d := range v.links {
		teardown(d.original)
	}
	v.links = nil
}
