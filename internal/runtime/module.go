package runtime

import (
	"fmt"
	"iron/internal/log"
	"sort"

	"go.uber.org/zap"
)

// Module is a namespace of functions with named sub-modules.
type Module[T any] struct {
	functions  *FnStorage[T]
	subModules map[string]*Module[T]
}

func NewModule[T any]() *Module[T] {
	return &Module[T]{
		functions:  NewFnStorage[T](),
		subModules: make(map[string]*Module[T]),
	}
}

func (m *Module[T]) Functions() *FnStorage[T] {
	return m.functions
}

// RegisterFn stores a callable. Registering an identical signature twice fails.
func (m *Module[T]) RegisterFn(sig FnSignature, fn FnType[T]) error {
	if err := m.functions.Register(sig, fn); err != nil {
		return err
	}
	log.L().Debug("registered function", zap.Stringer("signature", sig))
	return nil
}

// Register adapts a Go function and stores it under ident.
func (m *Module[T]) Register(ident string, fn any) error {
	params, callable, err := Embed[T](fn)
	if err != nil {
		return fmt.Errorf("register %s: %w", ident, err)
	}
	return m.RegisterFn(FnSignature{Ident: ident, Params: params}, callable)
}

// MustRegister is Register for module construction code; it panics on error.
func (m *Module[T]) MustRegister(ident string, fn any) *Module[T] {
	if err := m.Register(ident, fn); err != nil {
		panic(err)
	}
	return m
}

// RegisterSubModule stores sub under name and returns the module it replaced.
func (m *Module[T]) RegisterSubModule(name string, sub *Module[T]) (*Module[T], bool) {
	prev, ok := m.subModules[name]
	m.subModules[name] = sub
	return prev, ok
}

// SubModule walks path from m.
func (m *Module[T]) SubModule(path ...string) (*Module[T], bool) {
	cur := m
	for _, name := range path {
		next, ok := cur.subModules[name]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (m *Module[T]) SubModuleNames() []string {
	names := make([]string, 0, len(m.subModules))
	for name := range m.subModules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge folds other into m. Sub-modules merge recursively and functions of
// other override colliding ones.
func (m *Module[T]) Merge(other *Module[T]) {
	m.functions.MergeOverride(other.functions)
	for name, osub := range other.subModules {
		if sub, ok := m.subModules[name]; ok {
			sub.Merge(osub)
		} else {
			m.subModules[name] = osub.Clone()
		}
	}
}

// Lookup resolves sig inside the sub-module at path.
func (m *Module[T]) Lookup(path []string, sig FnSignature) (FnType[T], bool) {
	target, ok := m.SubModule(path...)
	if !ok {
		return nil, false
	}
	return target.functions.Lookup(sig)
}

func (m *Module[T]) Clone() *Module[T] {
	c := &Module[T]{
		functions:  m.functions.Clone(),
		subModules: make(map[string]*Module[T], len(m.subModules)),
	}
	for name, sub := range m.subModules {
		c.subModules[name] = sub.Clone()
	}
	return c
}
