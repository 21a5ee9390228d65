package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/s0up4200/holocron/swapi"
)

// Manager holds named filter presets and applies filters to planet lists
type Manager struct {
	compiler  Compiler
	evaluator *ConcurrentEvaluator
	presets   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *ConcurrentEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		presets: make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.compiler == nil {
		m.compiler = NewExprCompiler()
	}
	if m.evaluator == nil {
		m.evaluator = NewConcurrentEvaluator()
	}

	return m
}

// RegisterPreset compiles and stores a named filter, replacing any previous one
func (m *Manager) RegisterPreset(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return &PresetError{Preset: name, Reason: "invalid expression", Err: err}
	}

	m.mu.Lock()
	m.presets[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterPresets registers all presets or none of them
func (m *Manager) RegisterPresets(presets map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(presets))

	for name, expression := range presets {
		filter, err := m.compiler.Compile(expression)
		if err != nil {
			return &PresetError{Preset: name, Reason: "invalid expression", Err: err}
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.presets, compiled)
	m.mu.Unlock()

	return nil
}

// Preset returns a compiled preset by name
func (m *Manager) Preset(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.presets[name]
	m.mu.RUnlock()
	return filter, exists
}

// Presets returns the registered preset names in sorted order
func (m *Manager) Presets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.presets))
}

// Resolve turns an ad-hoc expression and/or a preset name into one filter.
// When both are given they must both match. Nothing given resolves to nil.
func (m *Manager) Resolve(expression, preset string) (CompiledFilter, error) {
	var base CompiledFilter
	if preset != "" {
		p, ok := m.Preset(preset)
		if !ok {
			return nil, &PresetError{Preset: preset, Reason: "not found"}
		}
		base = p
	}

	switch {
	case expression == "":
		return base, nil
	case base == nil:
		return m.compiler.Compile(expression)
	default:
		return m.compiler.Compile(fmt.Sprintf("(%s) and (%s)", base.Expression(), expression))
	}
}

// Apply returns the planets matching filter in their original order. A nil
// filter keeps every planet.
func (m *Manager) Apply(ctx context.Context, filter CompiledFilter, planets []swapi.Planet) ([]swapi.Planet, error) {
	if filter == nil {
		return planets, nil
	}
	return m.evaluator.Evaluate(ctx, filter, planets)
}

// Close gracefully shuts down the manager
func (m *Manager) Close(ctx context.Context) error {
	return m.evaluator.Stop(ctx)
}
