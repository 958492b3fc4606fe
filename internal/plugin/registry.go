package plugin

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
)

// Factory constructs a compiled-in plugin instance from its options.
type Factory func(options map[string]any) (any, error)

func (f Factory) New(_ context.Context, options map[string]any) (any, error) { return f(options) }

// NativeRegistry holds plugins compiled into the host binary, keyed by
// "<packageName>/<entryPoint>". It is consulted before script loading, so a
// package can ship a manifest whose entry point is served natively.
type NativeRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewNativeRegistry creates an empty registry.
func NewNativeRegistry() *NativeRegistry {
	return &NativeRegistry{factories: make(map[string]Factory)}
}

// NativeKey builds the registry key for an entry point of a package.
func NativeKey(packageName, entryPoint string) string {
	return packageName + "/" + path.Clean(entryPoint)
}

// Register adds a factory for an entry point.
// Returns an error if the entry point is already registered.
func (r *NativeRegistry) Register(packageName, entryPoint string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for %s", packageName)
	}
	if packageName == "" || entryPoint == "" {
		return fmt.Errorf("packageName and entryPoint are required")
	}
	key := NativeKey(packageName, entryPoint)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("native plugin %s already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// Lookup returns the factory registered for an entry point.
func (r *NativeRegistry) Lookup(packageName, entryPoint string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[NativeKey(packageName, entryPoint)]
	return f, ok
}

// Has checks if an entry point is registered.
func (r *NativeRegistry) Has(packageName, entryPoint string) bool {
	_, ok := r.Lookup(packageName, entryPoint)
	return ok
}

// Unregister removes an entry point.
func (r *NativeRegistry) Unregister(packageName, entryPoint string) error {
	key := NativeKey(packageName, entryPoint)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; !ok {
		return fmt.Errorf("native plugin %s not found", key)
	}
	delete(r.factories, key)
	return nil
}

// Keys returns the registered keys sorted.
func (r *NativeRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of registered entry points.
func (r *NativeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// Load implements ModuleLoader. It fails for unregistered entry points.
func (r *NativeRegistry) Load(_ context.Context, req ModuleRequest) (Module, error) {
	f, ok := r.Lookup(req.PackageName, req.EntryPoint)
	if !ok {
		return nil, fmt.Errorf("no native plugin registered for %s", NativeKey(req.PackageName, req.EntryPoint))
	}
	return f, nil
}

// defaultRegistry is the process-wide registry binaries register into from
// init functions.
var defaultRegistry = NewNativeRegistry()

// DefaultRegistry returns the process-wide native registry.
func DefaultRegistry() *NativeRegistry {
	return defaultRegistry
}

// Register adds a factory to the process-wide registry.
func Register(packageName, entryPoint string, factory Factory) error {
	return defaultRegistry.Register(packageName, entryPoint, factory)
}
