// Package settings holds the live MathLinks configuration.
package settings

import (
	"fmt"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mathlinks/internal/apperr"
	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/exclusion"
	"github.com/starford/mathlinks/internal/template"
)

// Settings is the user-editable configuration surface.
type Settings struct {
	Templates                    []template.Template `yaml:"templates" json:"templates"`
	Exclusions                   []exclusion.Entry   `yaml:"exclusions" json:"exclusions"`
	BlockPrefix                  string              `yaml:"block_prefix" json:"blockPrefix"`
	PrefixBlockLinksWithFilename bool                `yaml:"prefix_block_links_with_filename" json:"prefixBlockLinksWithFilename"`
	EnableAPI                    bool                `yaml:"enable_api" json:"enableAPI"`
	SourceMode                   bool                `yaml:"source_mode" json:"sourceMode"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		BlockPrefix: "^",
		EnableAPI:   true,
	}
}

func (s Settings) Validate() error {
	if err := template.Validate(s.Templates); err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	return validation.ValidateStruct(&s,
		validation.Field(&s.Exclusions),
	)
}

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	out := s
	out.Templates = append([]template.Template(nil), s.Templates...)
	out.Exclusions = append([]exclusion.Entry(nil), s.Exclusions...)
	return out
}

// IsExcluded reports whether labels are suppressed for path.
func (s Settings) IsExcluded(path string) bool {
	return exclusion.IsExcluded(path, s.Exclusions)
}

// Store guards the current settings. Successful updates publish
// events.LabelsRefresh.
type Store struct {
	mu  sync.RWMutex
	cur Settings
	pub events.Publisher
}

// NewStore validates initial and wraps it.
func NewStore(initial Settings, pub events.Publisher) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w: %w", apperr.ErrInvalidConfig, err)
	}
	if pub == nil {
		pub = events.Discard
	}
	return &Store{cur: initial.Clone(), pub: pub}, nil
}

// Current returns a copy of the active settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Clone()
}

// Update replaces the settings. Invalid settings are rejected and the
// current ones stay in place.
func (s *Store) Update(next Settings) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("settings: %w: %w", apperr.ErrInvalidConfig, err)
	}
	s.mu.Lock()
	s.cur = next.Clone()
	s.mu.Unlock()

	s.pub.Publish(events.Event{Kind: events.LabelsRefresh})
	return nil
}
