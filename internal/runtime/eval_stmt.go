package runtime

import (
	"iron/internal/ast"
	"iron/internal/errors"
)

// EvalStmt evaluates one statement. Values of expression statements are
// discarded.
func (rt *Runtime[T]) EvalStmt(stmt ast.Statement, scope *Scope[T]) *ControlFlow {
	switch node := stmt.(type) {
	case *ast.LetStatement:
		return rt.evalLet(node, scope)

	case *ast.ExpressionStatement:
		_, flow := rt.EvalExpr(node.Expression, scope)
		return flow

	case *ast.FunctionStatement:
		return rt.evalFunctionStatement(node, scope)
	}

	return errorFlow(errors.New(errors.KindUnreachable).
		At(rt.Source, stmt.Span()).
		Detail("unknown statement %T", stmt).
		Build())
}

func (rt *Runtime[T]) evalLet(node *ast.LetStatement, scope *Scope[T]) *ControlFlow {
	v, flow := rt.EvalExpr(node.Value, scope)
	if flow != nil {
		return flow
	}
	if node.Type != nil {
		if got := v.Ty(); got != *node.Type {
			return errorFlow(errors.New(errors.KindTypeMismatch).
				At(rt.Source, node.Span()).
				Detail("expected %s, got %s", *node.Type, got).
				Build())
		}
	}

	binding := v.Private()
	binding.TypeSpecified = node.Type != nil
	scope.Define(node.Name.Value, binding)
	return nil
}

func (rt *Runtime[T]) evalFunctionStatement(node *ast.FunctionStatement, scope *Scope[T]) *ControlFlow {
	fn := &Native[T]{
		Source:     rt.Source,
		Body:       node.Body,
		Params:     make([]string, len(node.Parameters)),
		ParamTypes: make([]FnParameter, len(node.Parameters)),
	}
	for i, p := range node.Parameters {
		fn.Params[i] = p.Name.Value
		if p.Type != nil {
			fn.ParamTypes[i] = Specified(*p.Type)
		}
	}
	if node.ReturnType != nil {
		fn.ReturnType = Specified(*node.ReturnType)
	}

	sig := FnSignature{Ident: node.Name.Value, Params: fn.ParamTypes}
	if err := scope.RegisterFn(sig, fn); err != nil {
		return errorFlow(errors.New(errors.KindFunctionRedefinition).
			At(rt.Source, node.Span()).
			Detail("%s", sig).
			Cause(err).
			Build())
	}
	return nil
}
