package internal

import "github.com/starford/mathlinks/internal/provider"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	version   string
	providers []registration
}

type registration struct {
	p     provider.Provider
	order int
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithProvider registers an additional label provider at startup.
func WithProvider(p provider.Provider, sortOrder int) Option {
	return func(a *application) {
		a.providers = append(a.providers, registration{p: p, order: sortOrder})
	}
}
