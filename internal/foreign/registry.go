package foreign

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Loader)
)

// DefaultBackend is the backend used when none is configured.
const DefaultBackend = "llir"

// Register makes a backend available by name. Backends call it from init.
func Register(name string, l Loader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if l == nil {
		panic("foreign: Register loader is nil")
	}
	if _, dup := registry[name]; dup {
		panic("foreign: Register called twice for backend " + name)
	}
	registry[name] = l
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Loader, error) {
	if name == "" {
		name = DefaultBackend
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, backendsLocked())
	}
	return l, nil
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return backendsLocked()
}

func backendsLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
