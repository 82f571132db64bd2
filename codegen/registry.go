package codegen

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Generator Registry
// ============================================================================
//
// Standard generators register themselves from init() in nodes_*.go.
// A Registry is built from them once and is read-only while generating,
// so one Registry can serve any number of concurrent runs.
//
// Packages can replace a stock node type by shipping a definition with a
// template for it:
//
//	reg := codegen.NewLayeredRegistry(loader, logger)
//	gen, _ := reg.Get("Print") // the package's template generator

var (
	standardMu         sync.RWMutex
	standardGenerators []Generator
)

// registerStandard adds a generator to the standard set
func registerStandard(g Generator) {
	standardMu.Lock()
	defer standardMu.Unlock()
	standardGenerators = append(standardGenerators, g)
}

// mustRegisterStandard is used from init() and panics on a generator
// without node types.
func mustRegisterStandard(g Generator) {
	if len(g.NodeTypes()) == 0 {
		panic(fmt.Sprintf("generator %T declares no node types", g))
	}
	registerStandard(g)
}

// Registry maps node types to generators
type Registry struct {
	mu         sync.RWMutex
	generators map[multicode.NodeType]Generator
	logger     zerolog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		generators: make(map[multicode.NodeType]Generator),
		logger:     logger,
	}
}

// NewStandardRegistry creates a registry with the built-in generators
func NewStandardRegistry(logger zerolog.Logger) *Registry {
	r := NewRegistry(logger)
	standardMu.RLock()
	defer standardMu.RUnlock()
	for _, g := range standardGenerators {
		r.Register(g)
	}
	return r
}

// NewLayeredRegistry registers the built-in generators and then a template
// generator for every definition that carries a template, so packages
// override stock behavior. Definitions without a template and without a
// built-in generator get a no-op template generator; they exist for the
// editor only.
func NewLayeredRegistry(lookup DefinitionLookup, logger zerolog.Logger) *Registry {
	r := NewStandardRegistry(logger)
	if lookup == nil {
		return r
	}
	for _, def := range lookup.Definitions() {
		if def == nil || def.Type == "" {
			continue
		}
		if def.HasTemplate() || !r.Has(def.Type) {
			r.Register(NewTemplateGenerator(def))
		}
	}
	return r
}

// Register stores g for each type it declares. A type that already has a
// generator is overwritten.
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range g.NodeTypes() {
		if prev, exists := r.generators[t]; exists {
			r.logger.Info().
				Str("type", string(t)).
				Str("previous", fmt.Sprintf("%T", prev)).
				Str("generator", fmt.Sprintf("%T", g)).
				Msg("overriding node generator")
		}
		r.generators[t] = g
	}
}

// Get returns the generator for a node type
func (r *Registry) Get(t multicode.NodeType) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[t]
	return g, ok
}

// Has reports whether a generator is registered for t
func (r *Registry) Has(t multicode.NodeType) bool {
	_, ok := r.Get(t)
	return ok
}

// SupportedTypes returns all registered node types, sorted
func (r *Registry) SupportedTypes() []multicode.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]multicode.NodeType, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// All returns every registered generator once, even when a generator
// owns several types. Order follows SupportedTypes.
func (r *Registry) All() []Generator {
	types := r.SupportedTypes()
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[Generator]bool, len(types))
	var result []Generator
	for _, t := range types {
		g := r.generators[t]
		if seen[g] {
			continue
		}
		seen[g] = true
		result = append(result, g)
	}
	return result
}
