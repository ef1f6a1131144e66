package provider

import "sync"

// Owner is the lifecycle of an extension. Resources registered through it
// are released, newest first, when it unloads.
type Owner struct {
	id string

	mu       sync.Mutex
	cleanups []func()
	unloaded bool
}

// NewOwner creates a loaded owner identified by id.
func NewOwner(id string) *Owner {
	return &Owner{id: id}
}

// ID returns the owner's identity.
func (o *Owner) ID() string { return o.id }

// OnUnload registers fn to run on Unload. If the owner is already unloaded,
// fn runs immediately.
func (o *Owner) OnUnload(fn func()) {
	o.mu.Lock()
	if o.unloaded {
		o.mu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Unload releases everything registered with the owner. Subsequent calls are no-ops.
func (o *Owner) Unload() {
	o.mu.Lock()
	if o.unloaded {
		o.mu.Unlock()
		return
	}
	o.unloaded = true
	fns := o.cleanups
	o.cleanups = nil
	o.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Loaded reports whether Unload has not been called yet.
func (o *Owner) Loaded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.unloaded
}
