package provider

import (
	"sort"
	"sync"

	"github.com/starford/mathlinks/internal/events"
)

type entry struct {
	p     Provider
	order int
	seq   int
}

// Info describes a registered provider.
type Info struct {
	Name       string `json:"name"`
	SortOrder  int    `json:"sort_order"`
	SourceMode bool   `json:"source_mode"`
}

// Registry keeps providers sorted ascending by sort order, ties in
// registration order. Every change publishes events.LabelsRefresh once the
// registry is consistent again.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	seq     int
	pub     events.Publisher
}

// NewRegistry creates an empty registry publishing to pub (may be nil).
func NewRegistry(pub events.Publisher) *Registry {
	if pub == nil {
		pub = events.Discard
	}
	return &Registry{pub: pub}
}

// Register adds p with the given sort order. Registering a provider that is
// already present is a no-op and returns false.
func (r *Registry) Register(p Provider, sortOrder int) bool {
	r.mu.Lock()
	for _, e := range r.entries {
		if e.p == p {
			r.mu.Unlock()
			return false
		}
	}
	r.seq++
	r.entries = append(r.entries, entry{p: p, order: sortOrder, seq: r.seq})
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].order != r.entries[j].order {
			return r.entries[i].order < r.entries[j].order
		}
		return r.entries[i].seq < r.entries[j].seq
	})
	r.mu.Unlock()

	r.pub.Publish(events.Event{Kind: events.LabelsRefresh})
	return true
}

// RegisterOwned registers p and unregisters it when owner unloads.
func (r *Registry) RegisterOwned(owner *Owner, p Provider, sortOrder int) bool {
	if !r.Register(p, sortOrder) {
		return false
	}
	owner.OnUnload(func() { r.Unregister(p) })
	return true
}

// Unregister removes p. It returns false when p was not registered.
func (r *Registry) Unregister(p Provider) bool {
	r.mu.Lock()
	idx := -1
	for i, e := range r.entries {
		if e.p == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
	r.mu.Unlock()

	r.pub.Publish(events.Event{Kind: events.LabelsRefresh})
	return true
}

// Providers returns a snapshot in consultation order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.p
	}
	return out
}

// Infos describes the registered providers in consultation order.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, len(r.entries))
	for i, e := range r.entries {
		out[i] = Info{Name: NameOf(e.p), SortOrder: e.order, SourceMode: inSourceMode(e.p)}
	}
	return out
}

// SourceModeEnabled reports whether any provider opts into source mode.
func (r *Registry) SourceModeEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if inSourceMode(e.p) {
			return true
		}
	}
	return false
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func inSourceMode(p Provider) bool {
	sp, ok := p.(SourceModeProvider)
	return ok && sp.EnableInSourceMode()
}
