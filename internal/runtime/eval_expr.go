package runtime

import (
	"iron/internal/ast"
	"iron/internal/errors"
	"iron/internal/object"
)

// EvalExpr evaluates an expression. Identifiers and dereferences yield
// handles aliasing the underlying storage, not copies.
func (rt *Runtime[T]) EvalExpr(expr ast.Expression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	switch node := expr.(type) {
	case *ast.Literal:
		return object.Unspecified(node.Value.Clone()), nil

	case *ast.Identifier:
		v, ok := scope.Get(node.Value)
		if !ok {
			return object.Variable{}, errorFlow(errors.At(errors.KindUndefinedVariable, rt.Source, node.Span()))
		}
		return v.GetShared(), nil

	case *ast.AssignExpression:
		return rt.evalAssign(node, scope)

	case *ast.NegationExpression:
		return rt.evalNegation(node, scope)

	case *ast.InfixExpression:
		return rt.evalInfix(node, scope)

	case *ast.ReferenceExpression:
		return rt.evalReference(node, scope)

	case *ast.DereferenceExpression:
		v, flow := rt.EvalExpr(node.Right, scope)
		if flow != nil {
			return object.Variable{}, flow
		}
		return rt.deref(v, node.Right.Span())

	case *ast.Block:
		return rt.EvalBlock(node, scope.Sub())

	case *ast.IfExpression:
		return rt.evalIf(node, scope)

	case *ast.CallExpression:
		args, flow := rt.evalExpressions(node.Arguments, scope)
		if flow != nil {
			return object.Variable{}, flow
		}
		v, err := rt.CallFn(scope, node.Path, node.Function.Value, node.Span(), args)
		if err != nil {
			return object.Variable{}, errorFlow(err)
		}
		return v, nil

	case *ast.MethodCallExpression:
		return rt.evalMethodCall(node, scope)

	case *ast.WhileExpression:
		return rt.evalWhile(node, scope)

	case *ast.ForExpression:
		return rt.evalFor(node, scope)

	case *ast.ReturnExpression:
		if node.Value == nil {
			return object.Variable{}, returnFlow(unit())
		}
		v, flow := rt.EvalExpr(node.Value, scope)
		if flow != nil {
			return object.Variable{}, flow
		}
		return object.Variable{}, returnFlow(v)
	}

	return object.Variable{}, errorFlow(errors.New(errors.KindUnreachable).
		At(rt.Source, expr.Span()).
		Detail("unknown expression %T", expr).
		Build())
}

func (rt *Runtime[T]) evalExpressions(exprs []ast.Expression, scope *Scope[T]) ([]object.Variable, *ControlFlow) {
	result := make([]object.Variable, 0, len(exprs))
	for _, e := range exprs {
		v, flow := rt.EvalExpr(e, scope)
		if flow != nil {
			return nil, flow
		}
		result = append(result, v)
	}
	return result, nil
}

// evalAssign computes the new value before taking the target's write guard.
func (rt *Runtime[T]) evalAssign(node *ast.AssignExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	target, flow := rt.EvalExpr(node.Target, scope)
	if flow != nil {
		return object.Variable{}, flow
	}
	source, flow := rt.EvalExpr(node.Value, scope)
	if flow != nil {
		return object.Variable{}, flow
	}

	value := source.Cloned()
	if target.TypeSpecified {
		if want, got := target.Ty(), value.Type(); want != got {
			return object.Variable{}, errorFlow(errors.New(errors.KindTypeMismatch).
				At(rt.Source, node.Span()).
				Detail("cannot assign %s to a variable of type %s", got, want).
				Build())
		}
	}
	target.Set(value)
	return unit(), nil
}

func (rt *Runtime[T]) evalNegation(node *ast.NegationExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	operand, flow := rt.EvalExpr(node.Right, scope)
	if flow != nil {
		return object.Variable{}, flow
	}

	args := []object.Variable{operand}
	if v, err, found := rt.call(scope, nil, "!", node.Span(), args); found {
		if err != nil {
			return object.Variable{}, errorFlow(err)
		}
		return v, nil
	}
	if b, ok := operand.Cloned().AsBool(); ok {
		return object.Unspecified(object.Bool(!b)), nil
	}
	return object.Variable{}, errorFlow(rt.undefinedFunction(node.Span(), nil, SignatureOf("!", args)))
}

func (rt *Runtime[T]) evalInfix(node *ast.InfixExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	left, flow := rt.EvalExpr(node.Left, scope)
	if flow != nil {
		return object.Variable{}, flow
	}
	right, flow := rt.EvalExpr(node.Right, scope)
	if flow != nil {
		return object.Variable{}, flow
	}

	args := []object.Variable{left, right}
	if v, err, found := rt.call(scope, nil, node.Operator, node.Span(), args); found {
		if err != nil {
			return object.Variable{}, errorFlow(err)
		}
		return v, nil
	}

	result, ok, err := builtinBinop(node.Operator, left.Cloned(), right.Cloned())
	if err != nil {
		return object.Variable{}, errorFlow(errors.New(errors.KindDivisionByZero).
			At(rt.Source, node.Span()).
			Cause(err).
			Build())
	}
	if !ok {
		return object.Variable{}, errorFlow(rt.undefinedFunction(node.OpLoc, nil, SignatureOf(node.Operator, args)))
	}
	return object.Unspecified(result), nil
}

// evalReference turns &*x into x itself so the result aliases x's target
// instead of a temporary.
func (rt *Runtime[T]) evalReference(node *ast.ReferenceExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	if inner, ok := node.Right.(*ast.DereferenceExpression); ok {
		v, flow := rt.EvalExpr(inner.Right, scope)
		if flow != nil {
			return object.Variable{}, flow
		}
		if _, flow := rt.deref(v, inner.Right.Span()); flow != nil {
			return object.Variable{}, flow
		}
		return v, nil
	}

	v, flow := rt.EvalExpr(node.Right, scope)
	if flow != nil {
		return object.Variable{}, flow
	}
	return object.NewVariable(object.Reference(v), v.TypeSpecified), nil
}

func (rt *Runtime[T]) deref(v object.Variable, span ast.Span) (object.Variable, *ControlFlow) {
	u := v.Cloned()
	ref, ok := u.AsReference()
	if !ok {
		return object.Variable{}, errorFlow(errors.New(errors.KindInvalidDerefTarget).
			At(rt.Source, span).
			Detail("expected a reference, got %s", u.Type()).
			Build())
	}
	return ref.Clone(), nil
}

func (rt *Runtime[T]) condition(expr ast.Expression, scope *Scope[T]) (bool, *ControlFlow) {
	v, flow := rt.EvalExpr(expr, scope)
	if flow != nil {
		return false, flow
	}
	u := v.Cloned()
	b, ok := u.AsBool()
	if !ok {
		return false, errorFlow(errors.New(errors.KindTypeMismatch).
			At(rt.Source, expr.Span()).
			Detail("condition must be bool, got %s", u.Type()).
			Build())
	}
	return b, nil
}

func (rt *Runtime[T]) evalIf(node *ast.IfExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	cond, flow := rt.condition(node.Condition, scope)
	if flow != nil {
		return object.Variable{}, flow
	}
	if cond {
		return rt.EvalBlock(node.Consequence, scope.Sub())
	}
	if node.Alternative != nil {
		return rt.EvalExpr(node.Alternative, scope)
	}
	return unit(), nil
}

// evalMethodCall passes the receiver as the first argument. When nothing
// matches it retries once with a reference to the receiver.
func (rt *Runtime[T]) evalMethodCall(node *ast.MethodCallExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	receiver, flow := rt.EvalExpr(node.Receiver, scope)
	if flow != nil {
		return object.Variable{}, flow
	}
	rest, flow := rt.evalExpressions(node.Arguments, scope)
	if flow != nil {
		return object.Variable{}, flow
	}

	ident := node.Method.Value
	args := append([]object.Variable{receiver}, rest...)
	v, err, found := rt.call(scope, nil, ident, node.Span(), args)
	if !found {
		byRef := append([]object.Variable{object.Unspecified(object.Reference(receiver))}, rest...)
		v, err, found = rt.call(scope, nil, ident, node.Span(), byRef)
	}
	if !found {
		return object.Variable{}, errorFlow(rt.undefinedFunction(node.Span(), nil, SignatureOf(ident, args)))
	}
	if err != nil {
		return object.Variable{}, errorFlow(err)
	}
	return v, nil
}

func (rt *Runtime[T]) evalWhile(node *ast.WhileExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	for {
		cond, flow := rt.condition(node.Condition, scope)
		if flow != nil {
			return object.Variable{}, flow
		}
		if !cond {
			return unit(), nil
		}
		if _, flow := rt.EvalBlock(node.Body, scope.Sub()); flow != nil {
			return object.Variable{}, flow
		}
	}
}

// evalFor drives the into_iter / iter_next protocol. A source without an
// into_iter overload is used as the iterator directly.
func (rt *Runtime[T]) evalFor(node *ast.ForExpression, scope *Scope[T]) (object.Variable, *ControlFlow) {
	source, flow := rt.EvalExpr(node.Iterable, scope)
	if flow != nil {
		return object.Variable{}, flow
	}
	span := node.Iterable.Span()

	iter := source
	if v, err, found := rt.call(scope, nil, "into_iter", span, []object.Variable{source}); found {
		if err != nil {
			return object.Variable{}, errorFlow(err)
		}
		iter = v
	}
	iterRef := object.Unspecified(object.Reference(iter))

	for {
		next, err, found := rt.call(scope, nil, "iter_next", span, []object.Variable{iterRef})
		if !found {
			return object.Variable{}, errorFlow(errors.New(errors.KindUndefinedFunction).
				At(rt.Source, span).
				Detail("`%s` is not an iterator", span.Text(rt.Source)).
				Build())
		}
		if err != nil {
			return object.Variable{}, errorFlow(err)
		}

		u := next.Cloned()
		opt, ok := object.Downcast[object.Option](u)
		if !ok {
			return object.Variable{}, errorFlow(errors.New(errors.KindTypeMismatch).
				At(rt.Source, span).
				Detail("iter_next returned %s, expected an option", u.Type()).
				Build())
		}
		item, some := opt.Get()
		if !some {
			return unit(), nil
		}

		body := scope.Sub()
		body.Define(node.Variable.Value, object.Unspecified(item))
		if _, flow := rt.EvalBlock(node.Body, body); flow != nil {
			return object.Variable{}, flow
		}
	}
}
