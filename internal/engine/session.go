package engine

import (
	"iron/internal/ast"
	"iron/internal/object"
	"iron/internal/runtime"
)

// Session keeps one scope across evaluations, so bindings and functions of
// earlier inputs stay visible. The REPL runs on a Session.
type Session[T any] struct {
	engine *Engine[T]
	scope  *runtime.Scope[T]
}

func (e *Engine[T]) NewSession() *Session[T] {
	return &Session[T]{
		engine: e,
		scope:  runtime.NewScope(e.module.Clone()),
	}
}

// Eval parses and runs source in the session scope. Statements executed
// before a failure keep their effects.
func (s *Session[T]) Eval(ctx *T, source string) (object.Union, error) {
	program, err := s.engine.parse(source)
	if err != nil {
		return object.Unit(), err
	}
	return eval(ctx, source, program, s.scope)
}

// Call invokes a function visible in the session, converting each argument
// with object.New.
func (s *Session[T]) Call(ctx *T, ident string, args ...any) (object.Union, error) {
	vars := make([]object.Variable, len(args))
	for i, a := range args {
		vars[i] = object.Unspecified(object.New(a))
	}
	v, err := runtime.New(ctx, "").CallFn(s.scope, nil, ident, ast.Span{}, vars)
	if err != nil {
		return object.Unit(), err
	}
	return v.Cloned(), nil
}

func (s *Session[T]) Scope() *runtime.Scope[T] {
	return s.scope
}
