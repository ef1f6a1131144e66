package resolver

import (
	"math"
	"strings"

	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/provider"
	"github.com/starford/mathlinks/internal/settings"
	"github.com/starford/mathlinks/internal/template"
)

// NativeSortOrder places the native provider after every other provider.
const NativeSortOrder = math.MaxInt

// SettingsSource yields the active settings.
type SettingsSource interface {
	Current() settings.Settings
}

// Native reads labels from the target's front-matter.
type Native struct {
	cache    Cache
	settings SettingsSource
}

// NewNative creates the front-matter provider.
func NewNative(cache Cache, s SettingsSource) *Native {
	return &Native{cache: cache, settings: s}
}

var _ provider.SourceModeProvider = (*Native)(nil)

func (n *Native) Name() string { return "native" }

// EnableInSourceMode follows the source_mode setting.
func (n *Native) EnableInSourceMode() bool {
	return n.settings.Current().SourceMode
}

func (n *Native) Provide(req provider.Request) (string, error) {
	if req.Target == nil {
		return "", nil
	}
	fc, err := n.cache.FileCache(req.Target.Path)
	if err != nil {
		return "", err
	}
	if fc == nil {
		return "", nil
	}
	md := fc.Metadata()
	s := n.settings.Current()

	var sub string
	switch req.SubtargetKind() {
	case models.SubtargetHeading:
		sub = req.Subtarget.Heading
	case models.SubtargetBlock:
		label := blockLabel(md.MathLinkBlocks, req.Subtarget.BlockID)
		if label == "" {
			return "", nil
		}
		sub = s.BlockPrefix + label
	default:
		if req.Link.Path == "" {
			return "", nil
		}
		return fileLabel(md, *req.Target, s.Templates), nil
	}

	if sub == "" || !s.PrefixBlockLinksWithFilename {
		return sub, nil
	}
	prefix := fileLabel(md, *req.Target, s.Templates)
	if prefix == "" {
		prefix = req.Link.Path
	}
	if prefix == "" {
		return sub, nil
	}
	return prefix + " > " + sub, nil
}

// fileLabel is the target's own mathLink, generated from templates for "auto".
func fileLabel(md models.Metadata, target models.File, templates []template.Template) string {
	if md.MathLink == nil {
		return ""
	}
	if *md.MathLink == models.AutoMathLink {
		return template.Apply(target.Basename(), templates)
	}
	return *md.MathLink
}

// blockLabel looks id up exactly, then case-insensitively.
func blockLabel(blocks map[string]string, id string) string {
	if v, ok := blocks[id]; ok {
		return v
	}
	for k, v := range blocks {
		if strings.EqualFold(k, id) {
			return v
		}
	}
	return ""
}
