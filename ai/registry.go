package ai

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// Registry maps provider names to implementations and resolves requests
// with failover to PrimaryProvider.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	defaultName string
	logger      *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefault sets the name ResolveDefault tries first.
func WithDefault(name string) RegistryOption {
	return func(r *Registry) {
		r.defaultName = name
	}
}

// WithRegistryLogger sets the logger used for failover warnings.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		providers:   make(map[string]Provider),
		defaultName: PrimaryProvider,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "provider-registry")
	return r
}

// Register adds or replaces a provider under name.
func (r *Registry) Register(name string, p Provider) error {
	if name == "" {
		return errors.New("provider name is required")
	}
	if p == nil {
		return errors.New("provider is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	return nil
}

// IsAvailable reports whether name is registered and, if the provider
// implements Availability, reports itself ready.
func (r *Registry) IsAvailable(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableLocked(name)
}

// ListAvailable returns the sorted names of available providers.
func (r *Registry) ListAvailable() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name := range r.providers {
		if r.availableLocked(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Resolve returns the named provider. An unregistered or unavailable name
// falls back to PrimaryProvider, then to the first available provider in
// name order. ErrNoProviders is returned when nothing is available.
func (r *Registry) Resolve(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.availableLocked(name) {
		return r.providers[name], nil
	}

	if name != PrimaryProvider && r.availableLocked(PrimaryProvider) {
		r.logger.Warn("provider unavailable, falling back to primary",
			"requested", name, "fallback", PrimaryProvider)
		return r.providers[PrimaryProvider], nil
	}

	names := make([]string, 0, len(r.providers))
	for candidate := range r.providers {
		names = append(names, candidate)
	}
	slices.Sort(names)
	for _, candidate := range names {
		if r.availableLocked(candidate) {
			r.logger.Warn("primary provider unavailable, falling back",
				"requested", name, "fallback", candidate)
			return r.providers[candidate], nil
		}
	}

	r.logger.Error("no AI providers available", "requested", name, "registered", len(r.providers))
	return nil, ErrNoProviders
}

// ResolveDefault resolves the configured default provider.
func (r *Registry) ResolveDefault() (Provider, error) {
	return r.Resolve(r.defaultName)
}

func (r *Registry) availableLocked(name string) bool {
	p, ok := r.providers[name]
	if !ok {
		return false
	}
	if a, ok := p.(Availability); ok {
		return a.Available()
	}
	return true
}
