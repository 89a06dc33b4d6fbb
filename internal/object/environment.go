package object

import (
	"iron/internal/log"

	"go.uber.org/zap"
)

// Environment is the lexical binding list of one scope. Lookups see the most
// recent binding of a name.
type Environment struct {
	idents []string
	values []Variable
}

func NewEnvironment() *Environment {
	return &Environment{
		idents: make([]string, 0, 16),
		values: make([]Variable, 0, 16),
	}
}

// NewEnclosedEnvironment builds a child whose bindings alias every binding of
// outer. Each outer binding is promoted to shared storage, so writes through
// the child are visible to the parent.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := &Environment{
		idents: make([]string, len(outer.idents), len(outer.idents)+8),
		values: make([]Variable, len(outer.values), len(outer.values)+8),
	}
	copy(env.idents, outer.idents)
	for i := range outer.values {
		env.values[i] = outer.values[i].GetShared()
	}
	log.L().Debug("new enclosed env", zap.Int("bindings", len(env.values)))
	return env
}

// Define pushes a binding, shadowing any earlier binding of the same name.
func (e *Environment) Define(name string, v Variable) {
	if ce := log.L().Check(zap.DebugLevel, "define"); ce != nil {
		ce.Write(
			zap.String("name", name),
			zap.Stringer("type", v.Ty()),
			zap.Bool("typed", v.TypeSpecified))
	}
	e.idents = append(e.idents, name)
	e.values = append(e.values, v)
}

// Get returns the binding for name. The pointer is valid until the next Define.
func (e *Environment) Get(name string) (*Variable, bool) {
	for i := len(e.idents) - 1; i >= 0; i-- {
		if e.idents[i] == name {
			return &e.values[i], true
		}
	}
	return nil, false
}

func (e *Environment) Len() int {
	return len(e.values)
}

// Bindings calls f for each visible name with its latest value, oldest first.
func (e *Environment) Bindings(f func(name string, v Variable)) {
	latest := make(map[string]int, len(e.idents))
	for i, name := range e.idents {
		latest[name] = i
	}
	for i, name := range e.idents {
		if latest[name] == i {
			f(name, e.values[i])
		}
	}
}
