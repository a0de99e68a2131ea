package health

import (
	"context"
	"sync"
)

// Settings is the read-only configuration view the Registry consults.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent reads.
// - Has reports explicitly configured keys only; defaults do not count.
type Settings interface {
	Has(key string) bool
	Bool(key string) bool
}

// Registry decides which checks are enabled.
//
// Configuration is immutable after startup, so each decision is computed
// once and memoised. Re-adding a spec drops its memoised decision.
type Registry struct {
	settings Settings

	mu    sync.RWMutex
	specs map[string]CheckSpec
	order []string

	enabled sync.Map // name -> bool
}

// NewRegistry creates a registry over settings for the given specs.
func NewRegistry(settings Settings, specs ...CheckSpec) *Registry {
	r := &Registry{
		settings: settings,
		specs:    make(map[string]CheckSpec, len(specs)),
	}
	for _, spec := range specs {
		r.Add(spec)
	}
	return r
}

// Add registers spec, replacing any spec with the same name.
func (r *Registry) Add(spec CheckSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Name]; !exists {
		r.order = append(r.order, spec.Name)
	}
	r.specs[spec.Name] = spec
	r.enabled.Delete(spec.Name)
}

// IsEnabled reports whether the named check should run. A check is enabled
// when its flag is truthy and every required setting exists. Unknown names
// are disabled.
func (r *Registry) IsEnabled(name string) bool {
	if v, ok := r.enabled.Load(name); ok {
		return v.(bool)
	}

	r.mu.RLock()
	spec, ok := r.specs[name]
	r.mu.RUnlock()

	enabled := ok && r.evaluate(spec)
	v, _ := r.enabled.LoadOrStore(name, enabled)
	return v.(bool)
}

func (r *Registry) evaluate(spec CheckSpec) bool {
	if r.settings == nil {
		return false
	}
	if spec.EnabledFlag != "" && !r.settings.Bool(spec.EnabledFlag) {
		return false
	}
	for _, key := range spec.RequiredSettings {
		if !r.settings.Has(key) {
			return false
		}
	}
	return true
}

// Spec returns the spec registered under name.
func (r *Registry) Spec(name string) (CheckSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns the registered check names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Gate wraps probe so that it returns ErrNotConfigured without running
// while the named check is disabled.
func (r *Registry) Gate(name string, probe ProbeFunc) ProbeFunc {
	return func(ctx context.Context) (Outcome, error) {
		if !r.IsEnabled(name) {
			return nil, ErrNotConfigured
		}
		return probe(ctx)
	}
}
