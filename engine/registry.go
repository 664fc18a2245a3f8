package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Backend registry. Engine backends register themselves from an init
// function, usually via a blank import in the main package, in the same
// way database/sql drivers and image decoders do.

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]func() (Engine, error))
)

// RegisterBackend makes an engine backend available under the given name.
// It panics on duplicate registration.
func RegisterBackend(name string, factory func() (Engine, error)) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, dup := backends[name]; dup {
		panic(fmt.Sprintf("engine: backend %q registered twice", name))
	}
	backends[name] = factory
}

// Backend returns the named backend, or the sole registered backend when
// name is empty.
func Backend(name string) (Engine, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	if name == "" {
		if len(backends) == 1 {
			for _, factory := range backends {
				return factory()
			}
		}
		return nil, fmt.Errorf("engine: %d backends registered, specify one of %v", len(backends), backendNames())
	}
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown backend %q (registered: %v)", name, backendNames())
	}
	return factory()
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backendNames()
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
