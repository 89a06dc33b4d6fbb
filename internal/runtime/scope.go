package runtime

import "iron/internal/object"

// Scope pairs a function namespace with the lexical bindings of one block.
type Scope[T any] struct {
	module *Module[T]
	env    *object.Environment
}

func NewScope[T any](module *Module[T]) *Scope[T] {
	if module == nil {
		module = NewModule[T]()
	}
	return &Scope[T]{module: module, env: object.NewEnvironment()}
}

// Clone snapshots the namespace so functions defined through the copy stay
// out of s. Bindings are aliased.
func (s *Scope[T]) Clone() *Scope[T] {
	return &Scope[T]{module: s.module.Clone(), env: object.NewEnclosedEnvironment(s.env)}
}

// Sub returns a block scope. Its bindings alias the parent's and new bindings
// stay local to it.
func (s *Scope[T]) Sub() *Scope[T] {
	return &Scope[T]{module: s.module, env: object.NewEnclosedEnvironment(s.env)}
}

// SubNoVars returns a call frame: same namespace, no visible bindings.
func (s *Scope[T]) SubNoVars() *Scope[T] {
	return &Scope[T]{module: s.module, env: object.NewEnvironment()}
}

func (s *Scope[T]) Define(ident string, v object.Variable) {
	s.env.Define(ident, v)
}

func (s *Scope[T]) Get(ident string) (*object.Variable, bool) {
	return s.env.Get(ident)
}

func (s *Scope[T]) RegisterFn(sig FnSignature, fn FnType[T]) error {
	return s.module.RegisterFn(sig, fn)
}

// Register adapts a Go function into the root namespace.
func (s *Scope[T]) Register(ident string, fn any) error {
	return s.module.Register(ident, fn)
}

func (s *Scope[T]) RegisterModule(name string, m *Module[T]) (*Module[T], bool) {
	return s.module.RegisterSubModule(name, m)
}

func (s *Scope[T]) MergeModule(m *Module[T]) {
	s.module.Merge(m)
}

func (s *Scope[T]) LookupFn(path []string, sig FnSignature) (FnType[T], bool) {
	return s.module.Lookup(path, sig)
}

func (s *Scope[T]) Module() *Module[T] {
	return s.module
}

func (s *Scope[T]) Env() *object.Environment {
	return s.env
}
