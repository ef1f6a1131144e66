package live

import (
	"strings"
	"testing"

	"github.com/starford/mathlinks/internal/exclusion"
	"github.com/starford/mathlinks/internal/mathrender"
	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/settings"
)

type fakeResolver struct {
	labels       map[string]string
	sourceLabels map[string]string
	files        map[string]string
}

func (f *fakeResolver) Resolve(link models.LinkRef, _ models.File) string {
	return f.labels[link.String()]
}

func (f *fakeResolver) ResolveSourceMode(link models.LinkRef, _ models.File) string {
	return f.sourceLabels[link.String()]
}

func (f *fakeResolver) Target(link models.LinkRef, source models.File) (models.File, bool) {
	if link.Path == "" {
		return source, true
	}
	p, ok := f.files[link.Path]
	return models.File{Path: p}, ok
}

type staticSettings struct{ s settings.Settings }

func (s *staticSettings) Current() settings.Settings { return s.s }

type sourceMode bool

func (s sourceMode) SourceModeEnabled() bool { return bool(s) }

func newBuilder(s settings.Settings, src bool) *Builder {
	res := &fakeResolver{
		labels:       map[string]string{"Note": "$X$", "Note#^abc": "$X$ > ^def"},
		sourceLabels: map[string]string{"Note": "src"},
		files:        map[string]string{"Note": "Note.md"},
	}
	return NewBuilder(res, mathrender.New(nil), &staticSettings{s: s}, sourceMode(src), nil)
}

func TestTokenize_Wikilink(t *testing.T) {
	doc := "a [[Note|alias]] b"
	tree := Tokenize(doc)
	var names []string
	for _, n := range tree.Nodes {
		names = append(names, doc[n.From:n.To])
	}
	want := []string{"[[", "Note", "|", "alias", "]]"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("tokens = %q, want %q", names, want)
	}
	if !tree.Nodes[3].Is(CatAlias) || !tree.Nodes[1].Is(CatInternal) {
		t.Errorf("categories = %+v", tree.Nodes)
	}
}

func TestTokenize_SkipsCode(t *testing.T) {
	doc := "`[[A]]` text\n```\n[[B]]\n```\n[[C]]\n"
	tree := Tokenize(doc)
	var targets []string
	for _, n := range tree.Nodes {
		if n.Name == CatInternal {
			targets = append(targets, doc[n.From:n.To])
		}
	}
	if len(targets) != 1 || targets[0] != "C" {
		t.Errorf("targets = %v, want [C]", targets)
	}
}

func TestBuild_Wikilink(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	doc := "see [[Note]] here"
	decos := b.Build(EditorState{Path: "S.md", Doc: doc, Mode: ModeLivePreview})

	if len(decos) != 1 {
		t.Fatalf("decorations = %d, want 1", len(decos))
	}
	d := decos[0]
	if doc[d.From:d.To] != "[[Note]]" {
		t.Errorf("span = %q", doc[d.From:d.To])
	}
	if d.Widget.Label != "$X$" || d.Widget.Target != "Note.md" {
		t.Errorf("widget = %+v", d.Widget)
	}
	if !strings.Contains(d.Widget.HTML, `\(X\)`) {
		t.Errorf("html = %q", d.Widget.HTML)
	}
	for _, want := range []string{`draggable="true"`, `data-href="Note"`, `\(X\)`} {
		if !strings.Contains(d.Widget.Holder, want) {
			t.Errorf("holder = %q, missing %s", d.Widget.Holder, want)
		}
	}
}

func TestBuild_UnorderedTree(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	doc := "see [[Note]] here"
	nodes := append([]Node(nil), Tokenize(doc).Nodes...)
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	decos := b.Build(EditorState{Path: "S.md", Doc: doc, Tree: &Tree{Nodes: nodes}})
	if len(decos) != 1 || doc[decos[0].From:decos[0].To] != "[[Note]]" {
		t.Errorf("decorations = %+v, want one for [[Note]]", decos)
	}
}

func TestBuild_AliasIsLabel(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	decos := b.Build(EditorState{Path: "S.md", Doc: "[[Note|$\\alpha$ note]]"})
	if len(decos) != 1 || decos[0].Widget.Label != `$\alpha$ note` {
		t.Fatalf("decorations = %+v", decos)
	}
}

func TestBuild_MarkdownLink(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	doc := "x [$y$](Some%20Note.md) [web](https://example.com) [](Note)"
	decos := b.Build(EditorState{Path: "S.md", Doc: doc})

	if len(decos) != 2 {
		t.Fatalf("decorations = %+v", decos)
	}
	if decos[0].Widget.LinkText != "Some Note.md" || decos[0].Widget.Label != "$y$" {
		t.Errorf("first = %+v", decos[0].Widget)
	}
	if doc[decos[0].From:decos[0].To] != "[$y$](Some%20Note.md)" {
		t.Errorf("span = %q", doc[decos[0].From:decos[0].To])
	}
	if decos[1].Widget.Label != "$X$" {
		t.Errorf("empty text should resolve: %+v", decos[1].Widget)
	}
}

func TestBuild_SkipsUnlabelled(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	if decos := b.Build(EditorState{Path: "S.md", Doc: "[[Unknown]] ![[Note]]"}); len(decos) != 0 {
		t.Errorf("decorations = %+v", decos)
	}
}

func TestBuild_SelectionOverlap(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	doc := "[[Note]] and [[Note#^abc]]"

	cases := []struct {
		name string
		sel  []Range
		want int
	}{
		{"no selection", nil, 2},
		{"cursor inside first", []Range{{From: 3, To: 3}}, 1},
		{"cursor touching end of first", []Range{{From: 8, To: 8}}, 1},
		{"cursor between", []Range{{From: 10, To: 10}}, 2},
		{"selection across both", []Range{{From: 0, To: len(doc)}}, 0},
	}
	for _, tc := range cases {
		decos := b.Build(EditorState{Path: "S.md", Doc: doc, Selection: tc.sel})
		if len(decos) != tc.want {
			t.Errorf("%s: decorations = %d, want %d", tc.name, len(decos), tc.want)
		}
	}
}

func TestBuild_VisibleRanges(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	doc := "[[Note]]\n\n[[Note#^abc]]"
	decos := b.Build(EditorState{Path: "S.md", Doc: doc, Visible: []Range{{From: 10, To: len(doc)}}})
	if len(decos) != 1 || decos[0].Widget.Label != "$X$ > ^def" {
		t.Errorf("decorations = %+v", decos)
	}
}

func TestBuild_Rebuild(t *testing.T) {
	b := newBuilder(settings.Default(), false)
	st := EditorState{Path: "S.md", Doc: "[[Note]]"}
	first := b.Build(st)
	second := b.Build(st)
	if len(first) != 1 || len(second) != 1 || *first[0].Widget != *second[0].Widget {
		t.Errorf("rebuild differs: %+v vs %+v", first, second)
	}
}

func TestBuild_Activation(t *testing.T) {
	s := settings.Default()
	s.Exclusions = []exclusion.Entry{{Path: "Archive"}}

	b := newBuilder(s, false)
	if decos := b.Build(EditorState{Path: "Archive/S.md", Doc: "[[Note]]"}); decos != nil {
		t.Error("excluded file decorated")
	}
	if decos := b.Build(EditorState{Path: "S.md", Doc: "[[Note]]", Mode: ModeSource}); decos != nil {
		t.Error("source mode without opt-in decorated")
	}

	b = newBuilder(s, true)
	decos := b.Build(EditorState{Path: "S.md", Doc: "[[Note]]", Mode: ModeSource})
	if len(decos) != 1 || decos[0].Widget.Label != "src" {
		t.Errorf("source mode decorations = %+v", decos)
	}
}

func TestWidget_HandleEvent(t *testing.T) {
	w := &Widget{LinkText: "Note", Target: "Note.md", Source: "S.md"}

	a := w.HandleEvent(PointerEvent{Type: "click", Button: ButtonPrimary})
	if !a.Navigate || a.NewPane || a.External || !a.PreventDefault {
		t.Errorf("click = %+v", a)
	}
	if a := w.HandleEvent(PointerEvent{Type: "click", Button: ButtonPrimary, Meta: true}); !a.NewPane {
		t.Errorf("meta click = %+v", a)
	}
	if a := w.HandleEvent(PointerEvent{Type: "mousedown", Button: ButtonMiddle}); !a.PreventDefault || a.Navigate {
		t.Errorf("middle mousedown = %+v", a)
	}
	if a := w.HandleEvent(PointerEvent{Type: "auxclick", Button: ButtonMiddle}); !a.Navigate || !a.NewPane {
		t.Errorf("auxclick = %+v", a)
	}
	if a := w.HandleEvent(PointerEvent{Type: "mousedown", Button: ButtonPrimary}); a.Navigate || a.PreventDefault {
		t.Errorf("primary mousedown = %+v", a)
	}

	unresolved := &Widget{LinkText: "Nowhere"}
	if a := unresolved.HandleEvent(PointerEvent{Type: "click"}); !a.External || a.LinkText != "Nowhere" {
		t.Errorf("unresolved click = %+v", a)
	}
}

func TestWidget_Element(t *testing.T) {
	w := &Widget{Label: "x", LinkText: "Note", HTML: `a <span class="math">m</span>`}
	el := w.Element()
	if el.FirstChild == nil || el.FirstChild.Data != "a " {
		t.Errorf("first child = %+v", el.FirstChild)
	}
	var draggable bool
	for _, a := range el.Attr {
		if a.Key == "draggable" && a.Val == "true" {
			draggable = true
		}
	}
	if !draggable {
		t.Error("widget should be draggable")
	}
}
