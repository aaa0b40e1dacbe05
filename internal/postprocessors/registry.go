package postprocessors

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

// Builder constructs a processor from the options configured for it.
// Options arrive as decoded TOML, so numbers may be int64 or float64.
type Builder func(opts map[string]any) (driven.PostProcessor, error)

// Registry resolves the processor names used in a PipelineConfig.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry. See RegisterDefaults.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register binds name to build, replacing any earlier binding.
func (r *Registry) Register(name string, build Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = build
}

// Build constructs the named processor.
func (r *Registry) Build(name string, opts map[string]any) (driven.PostProcessor, error) {
	r.mu.RLock()
	build, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("processor %q (known: %s): %w",
			name, strings.Join(r.Names(), ", "), domain.ErrNotFound)
	}

	proc, err := build(opts)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return proc, nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names lists the registered processors alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.builders))
}
