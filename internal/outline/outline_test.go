package outline

import (
	"strings"
	"testing"

	"github.com/starford/mathlinks/internal/mathrender"
	"github.com/starford/mathlinks/internal/models"
)

func TestItems(t *testing.T) {
	fc := &models.FileCache{Headings: []models.Heading{{Text: "A", Level: 1, Line: 1}, {Text: "B", Level: 2, Line: 4}}}
	items := Items(fc)
	if len(items) != 2 || items[1].Heading != "B" || items[1].Level != 2 {
		t.Errorf("items = %+v", items)
	}
	if Items(nil) != nil {
		t.Error("nil cache should give no items")
	}
}

func TestRender_Math(t *testing.T) {
	root := Render(NewMathRenderer(mathrender.New(nil)), []Item{{Heading: "Set $A$", Level: 1}})
	out := mathrender.InnerHTML(root)
	if !strings.Contains(out, `\(A\)`) || !strings.Contains(out, `data-level="1"`) {
		t.Errorf("html = %s", out)
	}
}

func TestRender_Plain(t *testing.T) {
	root := Render(PlainRenderer{}, []Item{{Heading: "Set $A$"}})
	if out := mathrender.InnerHTML(root); !strings.Contains(out, "Set $A$") {
		t.Errorf("html = %s", out)
	}
}
