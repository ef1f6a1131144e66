// Package labelservice is the root object of the label pipeline. It owns
// the provider registry, the legacy accounts and the renderers, and
// coordinates them with the vault storage and metadata cache.
package labelservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/mathlinks/internal/account"
	"github.com/starford/mathlinks/internal/apperr"
	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/index"
	"github.com/starford/mathlinks/internal/live"
	"github.com/starford/mathlinks/internal/mathrender"
	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/outline"
	"github.com/starford/mathlinks/internal/parser"
	"github.com/starford/mathlinks/internal/provider"
	"github.com/starford/mathlinks/internal/reading"
	"github.com/starford/mathlinks/internal/resolver"
	"github.com/starford/mathlinks/internal/settings"
	"github.com/starford/mathlinks/internal/storage"
	"github.com/starford/mathlinks/internal/suggest"
)

// PluginID identifies the service itself as a provider owner.
const PluginID = "mathlinks"

// Service coordinates storage, the metadata cache and the label pipeline.
type Service struct {
	store    storage.Provider
	db       index.Cache
	bus      *events.Bus
	settings *settings.Store
	logger   *slog.Logger

	plugin    *provider.Owner
	registry  *provider.Registry
	accounts  *account.Manager
	resolver  *resolver.Resolver
	math      *mathrender.Renderer
	markdown  *reading.Markdown
	reader    *reading.PostProcessor
	builder   *live.Builder
	suggester *suggest.Suggester
	outline   outline.ItemRenderer

	mu     sync.Mutex
	owners map[string]*provider.Owner
}

// New wires the pipeline and registers the native front-matter provider.
func New(store storage.Provider, db index.Cache, st *settings.Store, bus *events.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:    store,
		db:       db,
		bus:      bus,
		settings: st,
		logger:   logger,
		plugin:   provider.NewOwner(PluginID),
		owners:   make(map[string]*provider.Owner),
	}
	s.registry = provider.NewRegistry(bus)
	s.accounts = account.NewManager(s.registry, bus, func() bool { return st.Current().EnableAPI })
	s.resolver = resolver.New(db, s.registry, logger)
	s.math = mathrender.New(nil)
	s.markdown = reading.NewMarkdown()
	s.reader = reading.NewPostProcessor(s.resolver, s.math, st, bus, logger)
	s.builder = live.NewBuilder(s.resolver, s.math, st, s.registry, logger)
	s.suggester = suggest.New(db, s.resolver, s.math)
	s.outline = outline.NewMathRenderer(s.math)

	s.registry.RegisterOwned(s.plugin, resolver.NewNative(db, st), resolver.NativeSortOrder)
	return s
}

// Close unloads every provider and account owned through the service.
func (s *Service) Close() {
	s.mu.Lock()
	owners := make([]*provider.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		owners = append(owners, o)
	}
	s.owners = map[string]*provider.Owner{}
	s.mu.Unlock()

	for _, o := range owners {
		o.Unload()
	}
	s.plugin.Unload()
}

// Registry exposes the provider registry to in-process extensions.
func (s *Service) Registry() *provider.Registry { return s.registry }

// Accounts exposes the legacy account manager.
func (s *Service) Accounts() *account.Manager { return s.accounts }

// Resolver exposes the label resolver.
func (s *Service) Resolver() *resolver.Resolver { return s.resolver }

// Bus exposes the notification bus.
func (s *Service) Bus() *events.Bus { return s.bus }

// OnIndexChange is the cache's change callback: every re-indexed or removed
// document becomes a metadata.changed notification.
func (s *Service) OnIndexChange(kind, path string) {
	s.logger.Debug("labelservice: metadata changed", slog.String("path", path), slog.String("op", kind))
	s.bus.Publish(events.Event{Kind: events.MetadataChanged, Path: path})
}

// LabelResult is the resolved label of one link.
type LabelResult struct {
	Link     string `json:"link"`
	Source   string `json:"source"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label"`
	HTML     string `json:"html,omitempty"`
	Excluded bool   `json:"excluded,omitempty"`
}

// Label resolves linktext as seen from sourcePath.
func (s *Service) Label(_ context.Context, linktext, sourcePath string) LabelResult {
	res := LabelResult{Link: linktext, Source: sourcePath}
	if s.settings.Current().IsExcluded(sourcePath) {
		res.Excluded = true
		return res
	}
	ref := models.ParseLinkRef(linktext)
	source := models.File{Path: sourcePath}
	if f, ok := s.resolver.Target(ref, source); ok {
		res.Target = f.Path
	}
	res.Label = s.resolver.Resolve(ref, source)
	if res.Label != "" {
		res.HTML = s.math.RenderString(res.Label)
	}
	return res
}

// RenderedDocument is a document rendered for reading view.
type RenderedDocument struct {
	Path  string `json:"path"`
	HTML  string `json:"html"`
	Links int    `json:"links"`
}

// OpenView renders path for reading view. The returned view repaints on
// notifications until it is closed.
func (s *Service) OpenView(_ context.Context, path string) (*reading.View, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	return s.reader.Open(s.markdown, data, models.File{Path: path})
}

// RenderDocument renders a one-off snapshot of path.
func (s *Service) RenderDocument(ctx context.Context, path string) (*RenderedDocument, error) {
	v, err := s.OpenView(ctx, path)
	if err != nil {
		return nil, err
	}
	v.Detach()
	return &RenderedDocument{Path: path, HTML: v.HTML(), Links: v.Len()}, nil
}

// Decorations builds the live-preview decorations for an editor state.
func (s *Service) Decorations(_ context.Context, state live.EditorState) []live.Decoration {
	return s.builder.Build(state)
}

// WidgetEvent answers a pointer event on a widget.
func (s *Service) WidgetEvent(w live.Widget, ev live.PointerEvent) live.Action {
	return w.HandleEvent(ev)
}

// SetMathLink sets (or, with a nil value, removes) the mathLink front-matter
// key of path, then re-indexes the document.
func (s *Service) SetMathLink(_ context.Context, path string, value *string) error {
	if !(models.File{Path: path}).IsDocument() {
		return fmt.Errorf("labelservice: set mathLink %s: %w", path, apperr.ErrNotDocument)
	}
	data, err := s.read(path)
	if err != nil {
		return err
	}
	updated, err := parser.SetFrontmatterValue(data, models.KeyMathLink, value)
	if err != nil {
		return fmt.Errorf("labelservice: set mathLink %s: %w", path, err)
	}
	if err := s.store.Write(path, updated); err != nil {
		return fmt.Errorf("labelservice: write %s: %w", path, err)
	}
	if err := index.IndexFile(s.db, path, updated, time.Now()); err != nil {
		return fmt.Errorf("labelservice: index %s: %w", path, err)
	}
	s.OnIndexChange(index.EventUpdated, path)
	return nil
}

// OutlineEntry is one rendered outline item.
type OutlineEntry struct {
	outline.Item
	HTML string `json:"html"`
}

// Outline renders the headings of path. Math is only typeset for files that
// are not excluded.
func (s *Service) Outline(_ context.Context, path string) ([]OutlineEntry, error) {
	fc, err := s.db.FileCache(path)
	if err != nil {
		return nil, err
	}
	if fc == nil {
		return nil, fmt.Errorf("labelservice: outline %s: %w", path, apperr.ErrNotFound)
	}
	var r outline.ItemRenderer = s.outline
	if s.settings.Current().IsExcluded(path) {
		r = outline.PlainRenderer{}
	}
	items := outline.Items(fc)
	out := make([]OutlineEntry, len(items))
	for i, it := range items {
		out[i] = OutlineEntry{Item: it, HTML: mathrender.InnerHTML(r.RenderItem(it))}
	}
	return out, nil
}

// Suggest ranks vault files for link autocompletion.
func (s *Service) Suggest(_ context.Context, query, sourcePath string, limit int) ([]suggest.Suggestion, error) {
	return s.suggester.Suggest(query, sourcePath, limit)
}

// Settings returns the active settings.
func (s *Service) Settings() settings.Settings { return s.settings.Current() }

// UpdateSettings validates and applies next.
func (s *Service) UpdateSettings(_ context.Context, next settings.Settings) error {
	return s.settings.Update(next)
}

// Providers describes the registered providers in consultation order.
func (s *Service) Providers() []provider.Info { return s.registry.Infos() }

func (s *Service) read(path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("labelservice: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}
