// Package suggest ranks vault files for link autocompletion and shows
// their labels next to the file names.
package suggest

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/starford/mathlinks/internal/models"
)

// Lister enumerates vault documents.
type Lister interface {
	ListFiles() ([]models.File, error)
}

// Labeler resolves labels for link text.
type Labeler interface {
	ResolveLinktext(linktext, sourcePath string) string
}

// Renderer turns a label into HTML.
type Renderer interface {
	RenderString(label string) string
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Path     string `json:"path"`
	Linktext string `json:"linktext"`
	Label    string `json:"label,omitempty"`
	HTML     string `json:"html,omitempty"`
	Score    int    `json:"score"`
}

// Suggester produces ranked suggestions.
type Suggester struct {
	files  Lister
	labels Labeler
	render Renderer
}

func New(files Lister, labels Labeler, render Renderer) *Suggester {
	return &Suggester{files: files, labels: labels, render: render}
}

type candidate struct {
	file  models.File
	label string
}

type candidates []candidate

func (c candidates) String(i int) string {
	if c[i].label == "" {
		return c[i].file.Basename()
	}
	return c[i].file.Basename() + " " + c[i].label
}

func (c candidates) Len() int { return len(c) }

// Suggest returns at most limit files matching query, best first. An empty
// query lists files in path order.
func (s *Suggester) Suggest(query, sourcePath string, limit int) ([]Suggestion, error) {
	files, err := s.files.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("suggest: list files: %w", err)
	}
	cs := make(candidates, len(files))
	for i, f := range files {
		cs[i] = candidate{file: f, label: s.labels.ResolveLinktext(f.Path, sourcePath)}
	}

	var out []Suggestion
	if query == "" {
		for _, c := range cs {
			out = append(out, s.suggestion(c, 0))
		}
	} else {
		for _, m := range fuzzy.FindFrom(query, cs) {
			out = append(out, s.suggestion(cs[m.Index], m.Score))
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Suggester) suggestion(c candidate, score int) Suggestion {
	sg := Suggestion{
		Path:     c.file.Path,
		Linktext: c.file.Basename(),
		Label:    c.label,
		Score:    score,
	}
	if c.label != "" {
		sg.HTML = s.render.RenderString(c.label)
	}
	return sg
}
