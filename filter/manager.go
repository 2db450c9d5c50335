package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Manager holds named filter presets and applies filters to device lists
type Manager struct {
	compiler Compiler
	filters  map[string]CompiledFilter
	mu       sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewExprCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterFilter registers a new filter or updates an existing one
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers every preset, stopping at the first invalid one
func (m *Manager) RegisterFilters(presets map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(presets)) {
		if err := m.RegisterFilter(name, presets[name]); err != nil {
			return err
		}
	}
	return nil
}

// GetFilter returns a registered filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filter, ok := m.filters[name]
	return filter, ok
}

// FilterNames returns the registered preset names in sorted order
func (m *Manager) FilterNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve returns the preset named by nameOrExpression, or compiles it as
// an expression when no such preset exists.
func (m *Manager) Resolve(nameOrExpression string) (CompiledFilter, error) {
	if filter, ok := m.GetFilter(nameOrExpression); ok {
		return filter, nil
	}
	return m.compiler.Compile(nameOrExpression)
}

// Apply returns the devices matching filter, preserving order. The first
// evaluation error aborts the scan.
func (m *Manager) Apply(ctx context.Context, filter CompiledFilter, devices []Device) ([]Device, error) {
	var matches []Device
	for _, d := range devices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ok, err := filter.Match(d)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, d)
		}
	}
	return matches, nil
}
