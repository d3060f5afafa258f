package ir

import "fmt"

// Module owns a set of functions by name; it is the top-level object DI
// receives (spec.md §6: "Module: mutable; random-access to functions by
// id").
type Module struct {
	funcs map[string]*Function
	order []string // preserves insertion order for deterministic iteration
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{funcs: map[string]*Function{}}
}

// AddFunction registers fn in the module under its own name.
func (m *Module) AddFunction(fn *Function) {
	if _, exists := m.funcs[fn.Name]; !exists {
		m.order = append(m.order, fn.Name)
	}
	m.funcs[fn.Name] = fn
}

// Function looks up a function by name (its FunctionId, per spec.md §6).
func (m *Module) Function(name string) (*Function, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

// MustFunction looks up a function by name, panicking if absent; used by
// the CLI and tests where absence is a usage error, not a recoverable
// condition.
func (m *Module) MustFunction(name string) *Function {
	fn, ok := m.funcs[name]
	if !ok {
		panic(fmt.Errorf("ir: no such function %q", name))
	}
	return fn
}

// Functions returns every function in the module, in the order they were
// added.
func (m *Module) Functions() []*Function {
	fns := make([]*Function, len(m.order))
	for i, name := range m.order {
		fns[i] = m.funcs[name]
	}
	return fns
}
