package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/mapgpu/gfx"
)

// Backend names.
const (
	WGPU = "wgpu"
)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default; registered backends not listed here are
	// tried afterwards in name order.
	priority = []string{WGPU}
)

// Register registers a backend factory under name, replacing any factory
// of the same name. It is typically called from an init function.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = f
}

// Unregister removes a backend. This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend named name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens the backend registered as name.
func Open(name string, cfg Config) (gfx.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	f, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return f(cfg)
}

// Default opens the first backend that succeeds, in priority order. The
// errors of every failed backend are joined when none succeeds.
func Default(cfg Config) (gfx.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	names := order()
	if len(names) == 0 {
		return nil, ErrBackendNotAvailable
	}

	var errs []error
	for _, name := range names {
		registryMu.RLock()
		f := factories[name]
		registryMu.RUnlock()
		if f == nil {
			continue
		}
		b, err := f(cfg)
		if err == nil {
			return b, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}

// order returns the registered names, prioritised ones first.
func order() []string {
	rest := Available()
	names := make([]string, 0, len(rest))
	for _, name := range priority {
		if i := slices.Index(rest, name); i >= 0 {
			names = append(names, name)
			rest = slices.Delete(rest, i, i+1)
		}
	}
	return append(names, rest...)
}
