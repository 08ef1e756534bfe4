package renderer

import (
	"fmt"
	"slices"
	"sync"

	"ark-render/internal/check"
	"ark-render/internal/core"
)

// Builder creates a backend's factory.
type Builder func(recycler *Recycler) RendererFactory

type backendRegistry struct {
	mu       sync.Mutex
	builders map[string]Builder
}

func backends() *backendRegistry {
	return core.Global(func() *backendRegistry {
		return &backendRegistry{builders: make(map[string]Builder)}
	})
}

// knownBackends lists every backend name, including those not compiled in.
var knownBackends = map[string]Backend{
	"opengl":   BackendOpenGL,
	"vulkan":   BackendVulkan,
	"bgfx":     BackendBgfx,
	"sdl3-gpu": BackendSDL3GPU,
	"headless": BackendHeadless,
}

// RegisterBackend makes a backend available by name. Backend packages call it
// from init.
func RegisterBackend(name string, b Builder) {
	r := backends()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.builders[name]; dup {
		check.Fatalf("renderer backend %q registered twice", name)
	}
	r.builders[name] = b
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	r := backends()
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.builders))
	for n := range r.builders {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NewRendererFactory builds the backend registered under name.
func NewRendererFactory(name string, recycler *Recycler) (RendererFactory, error) {
	r := backends()
	r.mu.Lock()
	b, ok := r.builders[name]
	r.mu.Unlock()
	if ok {
		return b(recycler), nil
	}
	if _, known := knownBackends[name]; known {
		return nil, fmt.Errorf("renderer backend %q is not built into this binary (available: %v)", name, Backends())
	}
	return nil, fmt.Errorf("unknown renderer backend %q (available: %v)", name, Backends())
}
