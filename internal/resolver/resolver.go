// Package resolver computes the display label of a link.
package resolver

import (
	"fmt"
	"log/slog"

	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/provider"
)

// Cache is the part of the host metadata cache the resolver reads.
type Cache interface {
	ResolveLinkpath(linkpath, sourcePath string) (models.File, bool, error)
	FileCache(path string) (*models.FileCache, error)
}

// Resolver walks the provider registry for each link. It never mutates
// anything and never fails: a miss is the empty string.
type Resolver struct {
	cache     Cache
	providers *provider.Registry
	logger    *slog.Logger
}

// New creates a resolver over cache and providers.
func New(cache Cache, providers *provider.Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cache: cache, providers: providers, logger: logger}
}

// Resolve returns the label for link as seen from source, or "".
func (r *Resolver) Resolve(link models.LinkRef, source models.File) string {
	return r.resolve(link, source, false)
}

// ResolveSourceMode is Resolve restricted to providers that opted into
// source mode.
func (r *Resolver) ResolveSourceMode(link models.LinkRef, source models.File) string {
	return r.resolve(link, source, true)
}

// ResolveLinktext parses raw link text ("Note#^id") and resolves it.
func (r *Resolver) ResolveLinktext(linktext, sourcePath string) string {
	return r.Resolve(models.ParseLinkRef(linktext), models.File{Path: sourcePath})
}

// Target resolves only the link's file. ok is false when it does not exist.
func (r *Resolver) Target(link models.LinkRef, source models.File) (models.File, bool) {
	f, ok, err := r.cache.ResolveLinkpath(link.Path, source.Path)
	if err != nil {
		r.logger.Warn("resolver: link lookup failed",
			slog.String("link", link.String()),
			slog.String("source", source.Path),
			slog.String("error", err.Error()))
		return models.File{}, false
	}
	return f, ok
}

func (r *Resolver) resolve(link models.LinkRef, source models.File, sourceMode bool) string {
	target, ok := r.Target(link, source)
	if !ok {
		return ""
	}
	fc, err := r.cache.FileCache(target.Path)
	if err != nil {
		r.logger.Warn("resolver: file cache failed",
			slog.String("path", target.Path),
			slog.String("error", err.Error()))
		return ""
	}
	if fc == nil {
		return ""
	}
	sub := fc.ResolveSubpath(link.Subpath)

	req := provider.Request{Link: link, Target: &target, Subtarget: &sub, Source: source}
	for _, p := range r.providers.Providers() {
		if sourceMode {
			sp, ok := p.(provider.SourceModeProvider)
			if !ok || !sp.EnableInSourceMode() {
				continue
			}
		}
		label, err := r.call(p, req)
		if err != nil {
			r.logger.Warn("resolver: provider failed",
				slog.String("provider", provider.NameOf(p)),
				slog.String("link", link.String()),
				slog.String("error", err.Error()))
			continue
		}
		if label != "" {
			return label
		}
	}
	return ""
}

// call shields the loop from a panicking provider.
func (r *Resolver) call(p provider.Provider, req provider.Request) (label string, err error) {
	defer func() {
		if v := recover(); v != nil {
			label, err = "", fmt.Errorf("panic: %v", v)
		}
	}()
	return p.Provide(req)
}
