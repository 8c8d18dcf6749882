// Package registry stores handler definitions produced by the builder
// layer, keyed by operation name. Transports and workers look definitions
// up here to build a fresh program per invocation.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/weftlabs/weft/pkg/api"
)

// ErrHandlerNotFound is returned when no definition exists for a name.
var ErrHandlerNotFound = errors.New("handler not found")

// Registry is a goroutine-safe set of handler definitions.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]api.HandlerDefinition
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]api.HandlerDefinition),
	}
}

// Register adds a definition. Names are unique; registering a name twice
// is an error.
func (r *Registry) Register(def api.HandlerDefinition) error {
	if def.Name == "" {
		return errors.New("handler name is required")
	}
	if def.New == nil {
		return fmt.Errorf("handler %q has no program factory", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[def.Name]; exists {
		return fmt.Errorf("handler already registered: %s", def.Name)
	}

	r.byName[def.Name] = def
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (api.HandlerDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.byName[name]
	if !ok {
		return api.HandlerDefinition{}, fmt.Errorf("%w: %s", ErrHandlerNotFound, name)
	}
	return def, nil
}

// List returns all definitions sorted by name.
func (r *Registry) List() []api.HandlerDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]api.HandlerDefinition, 0, len(r.byName))
	for _, def := range r.byName {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
