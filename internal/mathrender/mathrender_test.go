package mathrender

import (
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestSplit(t *testing.T) {
	segs := Split("Lemma $x^2$ and $y$ done")
	want := []Segment{
		{Text: "Lemma "},
		{Text: "x^2", Math: true},
		{Text: " and "},
		{Text: "y", Math: true},
		{Text: " done"},
	}
	if len(segs) != len(want) {
		t.Fatalf("segments = %+v", segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestSplit_ClosingAfterSpace(t *testing.T) {
	segs := Split("cost $5 and $ 6")
	if len(segs) != 1 || segs[0].Math {
		t.Errorf("segments = %+v, want single literal", segs)
	}
}

func TestSplit_Reconstructs(t *testing.T) {
	for _, label := range []string{"", "plain", "$a$", "x $a$ y $b$", "$$", "a $b$c$ d", "$ x$"} {
		if got := Join(Split(label)); got != label {
			t.Errorf("Join(Split(%q)) = %q", label, got)
		}
	}
}

func newSpan() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
}

func TestRender(t *testing.T) {
	r := New(nil)
	el := newSpan()
	el.AppendChild(&html.Node{Type: html.TextNode, Data: "stale"})

	r.Render("A $x<y$ B", el)

	got := InnerHTML(el)
	want := `A <span class="math math-inline is-loaded">\(x&lt;y\)</span> B`
	if got != want {
		t.Errorf("got = %q, want %q", got, want)
	}
}

func TestRender_Idempotent(t *testing.T) {
	r := New(nil)
	a, b := newSpan(), newSpan()
	r.Render("$X$ > ^def", a)
	r.Render("$X$ > ^def", b)
	r.Render("$X$ > ^def", b)
	if InnerHTML(a) != InnerHTML(b) {
		t.Errorf("%q != %q", InnerHTML(a), InnerHTML(b))
	}
}

func TestRender_FlushesQueue(t *testing.T) {
	q := NewQueueTypesetter()
	r := New(q)
	r.RenderString("$a$ $b$")
	if q.Pending() != 0 {
		t.Errorf("pending = %d, want 0", q.Pending())
	}
}

func TestRenderString_PlainText(t *testing.T) {
	if got := New(nil).RenderString("a & b"); got != "a &amp; b" {
		t.Errorf("got = %q", got)
	}
}
