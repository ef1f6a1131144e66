// Package events is the in-process notification bus connecting the vault
// cache, the label registries and the renderers.
package events

import "sync"

// Notification kinds.
const (
	// MetadataChanged is published by the host cache after a document was re-indexed.
	MetadataChanged = "metadata.changed"
	// LabelsUpdated asks renderers showing links to Path to repaint.
	LabelsUpdated = "labels.updated"
	// LabelsRefresh asks every renderer to repaint.
	LabelsRefresh = "labels.refresh"
	// AccountDeleted is published when a legacy account is removed.
	AccountDeleted = "account.deleted"
)

// Event is one notification. Path is set for file-scoped kinds, ID for
// account events.
type Event struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Publisher is implemented by anything that accepts notifications.
type Publisher interface {
	Publish(Event)
}

// Handler receives events synchronously on the publisher's goroutine.
type Handler func(Event)

// Bus fans events out to subscribers. Handlers run after the publisher's
// state change is complete and outside the bus lock, so they may publish
// or (un)subscribe themselves.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber in subscription order.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
