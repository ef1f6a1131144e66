// Package parser extracts front-matter, headings and block anchors from Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/mathlinks/internal/models"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)
	blockIDRe = regexp.MustCompile(`(?:^|\s)\^([A-Za-z0-9-]+)[ \t]*$`)
	fenceRe   = regexp.MustCompile("^[ \t]{0,3}(```|~~~)")
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Headings    []models.Heading
	Blocks      map[string]models.Block
}

// FileCache converts the parse result into the host structural cache for path.
func (r *Result) FileCache(path string) *models.FileCache {
	return &models.FileCache{
		Path:        path,
		Frontmatter: r.Frontmatter,
		Headings:    r.Headings,
		Blocks:      r.Blocks,
	}
}

// Parse extracts front-matter, body, headings and block anchors from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, bodyLine, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	headings, blocks := scanStructure(body, bodyLine)

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Headings:    headings,
		Blocks:      blocks,
	}, nil
}

// splitFrontmatter separates YAML front-matter (between leading --- delimiters)
// from the Markdown body. If no front-matter is found the entire content is body.
// The returned line number is the zero-based file line where the body starts.
func splitFrontmatter(data []byte) (map[string]interface{}, string, int, error) {
	yamlBlock, rest, ok := cutFrontmatter(data)
	if !ok {
		return nil, string(data), 0, nil
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: body only, no error.
		return nil, string(data), 0, nil
	}

	for k, v := range fm {
		fm[k] = normalize(v)
	}
	consumed := len(data) - len(rest)
	return fm, string(rest), bytes.Count(data[:consumed], []byte("\n")), nil
}

// normalize rewrites nested maps with non-string keys (e.g. numeric block
// ids) to map[string]any so the front-matter stays JSON-encodable.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

// cutFrontmatter returns the YAML block and everything after the closing
// delimiter line. ok is false when the file has no front-matter.
func cutFrontmatter(data []byte) (yamlBlock, rest []byte, ok bool) {
	const delim = "---"
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, data, false
	}
	afterOpen := data[len(delim):]
	nl := bytes.IndexByte(afterOpen, '\n')
	if nl < 0 || strings.TrimSpace(string(afterOpen[:nl])) != "" {
		return nil, data, false
	}
	afterOpen = afterOpen[nl+1:]

	idx := -1
	if bytes.HasPrefix(afterOpen, []byte(delim)) {
		idx = 0
	} else if i := bytes.Index(afterOpen, []byte("\n"+delim)); i >= 0 {
		idx = i + 1
	}
	if idx < 0 {
		return nil, data, false
	}
	yamlBlock = afterOpen[:idx]
	rest = afterOpen[idx+len(delim):]
	if end := bytes.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[end+1:]
	} else {
		rest = nil
	}
	return yamlBlock, rest, true
}

// scanStructure collects ATX headings and block anchors outside fenced code.
func scanStructure(body string, firstLine int) ([]models.Heading, map[string]models.Block) {
	var headings []models.Heading
	blocks := make(map[string]models.Block)
	inFence := false

	for i, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if fenceRe.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			headings = append(headings, models.Heading{
				Text:  strings.TrimSpace(m[2]),
				Level: len(m[1]),
				Line:  firstLine + i,
			})
			continue
		}
		if m := blockIDRe.FindStringSubmatch(line); m != nil {
			key := strings.ToLower(m[1])
			if _, dup := blocks[key]; !dup {
				blocks[key] = models.Block{ID: m[1], Line: firstLine + i}
			}
		}
	}
	return headings, blocks
}
