package runtime

import (
	stderrors "errors"
	"iron/internal/ast"
	"iron/internal/errors"
	"iron/internal/object"
)

// FnType is anything the registry can dispatch to.
type FnType[T any] interface {
	Run(rt *Runtime[T], scope *Scope[T], span ast.Span, args []object.Variable) (object.Variable, *errors.Error)
}

// Native is a function defined in script code. Source is the text the body
// was parsed from.
type Native[T any] struct {
	Source     string
	Body       *ast.Block
	Params     []string
	ParamTypes []FnParameter
	ReturnType FnParameter
}

// Run evaluates the body in a fresh call frame. A return signal becomes the
// result, and a declared return type must match it.
func (n *Native[T]) Run(rt *Runtime[T], scope *Scope[T], span ast.Span, args []object.Variable) (object.Variable, *errors.Error) {
	if rt.Source != n.Source {
		rt = New(rt.Ctx, n.Source)
	}
	frame := scope.SubNoVars()
	for i, name := range n.Params {
		v := args[i].Private()
		_, v.TypeSpecified = n.ParamTypes[i].Type()
		frame.Define(name, v)
	}

	result, flow := rt.EvalBlock(n.Body, frame)
	if flow != nil {
		if flow.Err != nil {
			return object.Variable{}, flow.Err
		}
		result = flow.Value
	}

	if want, ok := n.ReturnType.Type(); ok && result.Ty() != want {
		return object.Variable{}, errors.New(errors.KindTypeMismatch).
			At(rt.Source, n.Body.Span()).
			Detail("expected return type %s, got %s", want, result.Ty()).
			Build()
	}
	return result, nil
}

// Embedded is a host function without access to the host context.
type Embedded[T any] struct {
	host *hostFn
}

func (e *Embedded[T]) Run(rt *Runtime[T], _ *Scope[T], span ast.Span, args []object.Variable) (object.Variable, *errors.Error) {
	v, err := e.host.call(nil, args)
	return v, hostError(rt.Source, span, e.host.name, err)
}

// EmbeddedCtx is a host function whose first parameter is the host context.
type EmbeddedCtx[T any] struct {
	host *hostFn
}

func (e *EmbeddedCtx[T]) Run(rt *Runtime[T], _ *Scope[T], span ast.Span, args []object.Variable) (object.Variable, *errors.Error) {
	v, err := e.host.call(rt.Ctx, args)
	return v, hostError(rt.Source, span, e.host.name, err)
}

// hostError maps adapter failures: marshalling problems mean the registry
// matched a signature the adapter cannot satisfy.
func hostError(source string, span ast.Span, name string, err error) *errors.Error {
	if err == nil {
		return nil
	}
	var rtErr *errors.Error
	if stderrors.As(err, &rtErr) {
		return rtErr
	}
	kind := errors.KindHostFunction
	if stderrors.Is(err, errMarshal) {
		kind = errors.KindUnreachable
	}
	return errors.New(kind).At(source, span).Detail("%s", name).Cause(err).Build()
}
