package account

import (
	"fmt"
	"sort"
	"sync"

	"github.com/starford/mathlinks/internal/apperr"
	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/provider"
)

// AdapterSortOrder is the registry position of account adapters.
const AdapterSortOrder = 0

type registration struct {
	acc     *Account
	adapter *adapter
}

// Manager hands out one Account per caller identity and keeps the matching
// adapter providers registered.
type Manager struct {
	registry *provider.Registry
	pub      events.Publisher
	enabled  func() bool

	mu       sync.Mutex
	accounts map[string]*registration
}

// NewManager creates a manager. enabled gates the whole API; a nil func
// means always enabled.
func NewManager(registry *provider.Registry, pub events.Publisher, enabled func() bool) *Manager {
	if pub == nil {
		pub = events.Discard
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &Manager{
		registry: registry,
		pub:      pub,
		enabled:  enabled,
		accounts: make(map[string]*registration),
	}
}

// GetAccount returns the account of owner, creating it on first use. A new
// account registers its adapter provider under owner and is deleted when
// owner unloads.
func (m *Manager) GetAccount(owner *provider.Owner) (*Account, error) {
	if !m.enabled() {
		return nil, fmt.Errorf("account: get %s: %w", owner.ID(), apperr.ErrAPIDisabled)
	}

	m.mu.Lock()
	if reg, ok := m.accounts[owner.ID()]; ok {
		m.mu.Unlock()
		return reg.acc, nil
	}
	acc := newAccount(owner.ID(), m.pub)
	reg := &registration{acc: acc, adapter: &adapter{acc: acc, enabled: m.enabled}}
	m.accounts[owner.ID()] = reg
	m.mu.Unlock()

	m.registry.RegisterOwned(owner, reg.adapter, AdapterSortOrder)
	owner.OnUnload(func() { _ = m.DeleteAccount(owner.ID()) })
	return acc, nil
}

// Lookup returns the existing account of identity.
func (m *Manager) Lookup(identity string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.accounts[identity]
	if !ok {
		return nil, fmt.Errorf("account: %s: %w", identity, apperr.ErrNotFound)
	}
	return reg.acc, nil
}

// DeleteAccount removes the account of identity together with its adapter.
func (m *Manager) DeleteAccount(identity string) error {
	m.mu.Lock()
	reg, ok := m.accounts[identity]
	if ok {
		delete(m.accounts, identity)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("account: delete %s: %w", identity, apperr.ErrNotFound)
	}

	m.registry.Unregister(reg.adapter)
	m.pub.Publish(events.Event{Kind: events.AccountDeleted, ID: reg.acc.id})
	m.pub.Publish(events.Event{Kind: events.LabelsRefresh})
	return nil
}

// Identities lists the callers that hold an account, sorted.
func (m *Manager) Identities() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Enabled reports whether the API is switched on.
func (m *Manager) Enabled() bool { return m.enabled() }
