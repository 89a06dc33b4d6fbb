package runtime

import (
	"iron/internal/ast"
	"iron/internal/errors"
	"iron/internal/log"
	"iron/internal/object"
	"strings"

	"go.uber.org/zap"
)

// ControlFlow interrupts evaluation. Err is set for an error; otherwise the
// signal is an early return carrying Value.
type ControlFlow struct {
	Value object.Variable
	Err   *errors.Error
}

func returnFlow(v object.Variable) *ControlFlow {
	return &ControlFlow{Value: v}
}

func errorFlow(err *errors.Error) *ControlFlow {
	return &ControlFlow{Err: err}
}

func (cf *ControlFlow) IsReturn() bool {
	return cf.Err == nil
}

// Runtime carries the state of one evaluation: the host context and the
// source text errors are cut from.
type Runtime[T any] struct {
	Ctx    *T
	Source string
}

func New[T any](ctx *T, source string) *Runtime[T] {
	return &Runtime[T]{Ctx: ctx, Source: source}
}

// Run evaluates a program. A return signal ends the program with its value.
func (rt *Runtime[T]) Run(program *ast.Block, scope *Scope[T]) (object.Variable, error) {
	v, flow := rt.EvalBlock(program, scope)
	if flow == nil {
		return v, nil
	}
	if flow.Err != nil {
		return object.Variable{}, flow.Err
	}
	return flow.Value, nil
}

// EvalBlock evaluates the statements in order and then the trailing
// expression. The caller picks the scope.
func (rt *Runtime[T]) EvalBlock(block *ast.Block, scope *Scope[T]) (object.Variable, *ControlFlow) {
	for _, stmt := range block.Statements {
		if flow := rt.EvalStmt(stmt, scope); flow != nil {
			return object.Variable{}, flow
		}
	}
	if block.Expr == nil {
		return unit(), nil
	}
	return rt.EvalExpr(block.Expr, scope)
}

// CallFn resolves ident under path for the argument types and invokes it.
func (rt *Runtime[T]) CallFn(scope *Scope[T], path []string, ident string, span ast.Span, args []object.Variable) (object.Variable, *errors.Error) {
	v, err, found := rt.call(scope, path, ident, span, args)
	if !found {
		return object.Variable{}, rt.undefinedFunction(span, path, SignatureOf(ident, args))
	}
	return v, err
}

// call reports found=false only when no callable matches. Failures raised by
// the callable itself come back with found=true.
func (rt *Runtime[T]) call(scope *Scope[T], path []string, ident string, span ast.Span, args []object.Variable) (object.Variable, *errors.Error, bool) {
	sig := SignatureOf(ident, args)
	fn, ok := scope.LookupFn(path, sig)
	if ce := log.L().Check(zap.DebugLevel, "dispatch"); ce != nil {
		ce.Write(zap.Stringer("signature", sig), zap.Strings("path", path), zap.Bool("found", ok))
	}
	if !ok {
		return object.Variable{}, nil, false
	}
	v, err := fn.Run(rt, scope, span, args)
	return v, err, true
}

func (rt *Runtime[T]) undefinedFunction(span ast.Span, path []string, sig FnSignature) *errors.Error {
	name := sig.String()
	if len(path) > 0 {
		name = strings.Join(path, "::") + "::" + name
	}
	return errors.New(errors.KindUndefinedFunction).
		At(rt.Source, span).
		Detail("no function matches %s", name).
		Build()
}

func unit() object.Variable {
	return object.Unspecified(object.Unit())
}
