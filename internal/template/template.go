// Package template generates labels from a file's base name by applying an
// ordered list of find/replace rules ("mathLink: auto").
package template

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MatchTimeout bounds a single template replacement.
const MatchTimeout = 100 * time.Millisecond

// Template is one find/replace rule. Replaced is a regular expression in
// JavaScript syntax; Replacement may reference groups ($1, ${name}, $$).
type Template struct {
	Title       string `yaml:"title" json:"title"`
	Replaced    string `yaml:"replaced" json:"replaced"`
	Replacement string `yaml:"replacement" json:"replacement"`
	GlobalMatch bool   `yaml:"global_match" json:"globalMatch"`
	Sensitive   bool   `yaml:"sensitive" json:"sensitive"`
	Word        bool   `yaml:"word" json:"word"`
}

// Validate checks a single template in isolation.
func (t Template) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required),
		validation.Field(&t.Replaced, validation.Required, validation.By(func(any) error {
			_, err := t.compile()
			return err
		})),
	)
}

func (t Template) compile() (*regexp2.Regexp, error) {
	pattern := t.Replaced
	if t.Word {
		pattern = `\b` + pattern + `\b`
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if !t.Sensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("malformed pattern: %w", err)
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// apply runs one template over s. The boolean is false when the template
// could not be applied and s is returned unchanged.
func (t Template) apply(s string) (string, bool) {
	re, err := t.compile()
	if err != nil {
		return s, false
	}
	count := 1
	if t.GlobalMatch {
		count = -1
	}
	out, err := re.Replace(s, t.Replacement, -1, count)
	if err != nil {
		return s, false
	}
	return out, true
}

// Apply feeds baseName through templates in order; each template sees the
// output of the previous one. A template that fails to compile or times out
// leaves the string unchanged.
func Apply(baseName string, templates []Template) string {
	out := baseName
	for _, t := range templates {
		out, _ = t.apply(out)
	}
	return out
}

// ErrDuplicateTitle is returned by Validate when two templates share a title.
var ErrDuplicateTitle = errors.New("duplicate template title")

// Validate checks every template and that titles are unique.
func Validate(templates []Template) error {
	seen := make(map[string]struct{}, len(templates))
	for i, t := range templates {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("template %d (%q): %w", i, t.Title, err)
		}
		if _, ok := seen[t.Title]; ok {
			return fmt.Errorf("template %d: %w: %q", i, ErrDuplicateTitle, t.Title)
		}
		seen[t.Title] = struct{}{}
	}
	return nil
}
