package hook

import (
	"maps"
	"slices"
	"sync"
)

// Registry maps hook names to in-process implementations.
// A descriptor whose filename matches a registered name runs the registered hook
// instead of an external program.
type Registry struct {
	hooks map[string]Hook
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hook)}
}

// Register adds or replaces the hook for name.
func (r *Registry) Register(name string, h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = h
}

// Lookup returns the hook registered for name.
func (r *Registry) Lookup(name string) (Hook, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[name]
	return h, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.hooks))
}
