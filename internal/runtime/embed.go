package runtime

import (
	stderrors "errors"
	"fmt"
	"iron/internal/errors"
	"iron/internal/object"
	"reflect"
	goruntime "runtime"
)

var errMarshal = stderrors.New("argument marshalling failed")

var (
	errorType     = reflect.TypeFor[error]()
	unionType     = reflect.TypeFor[object.Union]()
	variableType  = reflect.TypeFor[object.Variable]()
	cellType      = reflect.TypeFor[object.UnionCell]()
	mutBinderType = reflect.TypeFor[object.MutBinder]()
)

type argKind int

const (
	argValue   argKind = iota // cloned out of the argument
	argUnion                  // object.Union, any value
	argPointer                // *M, borrows the referenced cell for the call
	argMut                    // object.Mut[M], live view of the referenced cell
)

type argSpec struct {
	kind   argKind
	typ    reflect.Type
	elem   reflect.Type
	binder object.MutBinder
}

type hostFn struct {
	name      string
	fn        reflect.Value
	withCtx   bool
	args      []argSpec
	resultVal int
	resultErr int
}

// Embed adapts a Go function into a callable and derives its parameter
// patterns.
//
// A first parameter of type *T receives the host context. By-value parameters
// match their own type, object.Union matches anything, and *M (first
// non-context parameter only) or object.Mut[M] (any position) match a
// reference to M. Results may be empty, a value, an error, or (value, error).
func Embed[T any](fn any) ([]FnParameter, FnType[T], error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, nil, errors.New(errors.KindRegistration).
			Detail("handler must be a function, got %T", fn).
			Build()
	}
	ft := v.Type()
	if ft.IsVariadic() {
		return nil, nil, errors.New(errors.KindRegistration).
			Detail("variadic handler %s is not supported", ft).
			Build()
	}

	h := &hostFn{
		name:      goruntime.FuncForPC(v.Pointer()).Name(),
		fn:        v,
		resultVal: -1,
		resultErr: -1,
	}

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == reflect.TypeFor[*T]() {
		h.withCtx = true
		first = 1
	}

	params := make([]FnParameter, 0, ft.NumIn()-first)
	for i := first; i < ft.NumIn(); i++ {
		spec, param, err := describeParam(ft.In(i), i == first)
		if err != nil {
			return nil, nil, errors.New(errors.KindRegistration).
				Detail("parameter %d of %s: %v", i, ft, err).
				Build()
		}
		h.args = append(h.args, spec)
		params = append(params, param)
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			h.resultErr = 0
		} else {
			h.resultVal = 0
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, nil, errors.New(errors.KindRegistration).
				Detail("second result of %s must be error", ft).
				Build()
		}
		h.resultVal, h.resultErr = 0, 1
	default:
		return nil, nil, errors.New(errors.KindRegistration).
			Detail("%s returns too many values", ft).
			Build()
	}

	if h.withCtx {
		return params, &EmbeddedCtx[T]{host: h}, nil
	}
	return params, &Embedded[T]{host: h}, nil
}

func describeParam(pt reflect.Type, first bool) (argSpec, FnParameter, error) {
	switch {
	case pt == unionType:
		return argSpec{kind: argUnion, typ: pt}, Unspecified, nil
	case pt == variableType || pt == cellType:
		return argSpec{}, FnParameter{}, fmt.Errorf("%s is not a parameter type, use object.Union", pt)
	case pt.Kind() == reflect.Struct && pt.Implements(mutBinderType):
		binder := reflect.Zero(pt).Interface().(object.MutBinder)
		elem := binder.ElemType()
		return argSpec{kind: argMut, typ: pt, elem: elem, binder: binder},
			Specified(object.TypeFor(elem).Ref()), nil
	case pt.Kind() == reflect.Pointer:
		if !first {
			return argSpec{}, FnParameter{}, fmt.Errorf("pointer parameter %s must be the first argument", pt)
		}
		elem := pt.Elem()
		if elem == unionType || elem == variableType || elem == cellType {
			return argSpec{}, FnParameter{}, fmt.Errorf("pointer to %s is not supported", elem)
		}
		return argSpec{kind: argPointer, typ: pt, elem: elem},
			Specified(object.TypeFor(elem).Ref()), nil
	case pt.Kind() == reflect.Interface:
		return argSpec{}, FnParameter{}, fmt.Errorf("interface parameter %s can never match, use object.Union", pt)
	default:
		return argSpec{kind: argValue, typ: pt}, Specified(object.TypeFor(pt)), nil
	}
}

// call marshals args, invokes the host function and converts its results.
// A pointer parameter holds the referenced cell's write guard for the
// duration of the call; the guard is taken with TryLock so a re-entrant
// borrow of the same cell fails instead of deadlocking.
func (h *hostFn) call(ctx any, args []object.Variable) (object.Variable, error) {
	if len(args) != len(h.args) {
		panic(fmt.Sprintf("%s called with %d arguments, want %d", h.name, len(args), len(h.args)))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if h.withCtx {
		in = append(in, reflect.ValueOf(ctx))
	}

	var borrowed *object.UnionCell
	borrowAt := -1
	for i, spec := range h.args {
		switch spec.kind {
		case argUnion:
			in = append(in, reflect.ValueOf(args[i].Cloned()))
		case argValue:
			u := args[i].Cloned()
			p, ok := u.PointerTo(spec.typ)
			if !ok {
				return object.Variable{}, fmt.Errorf("%w: argument %d is %s, want %s", errMarshal, i, u.Type(), spec.typ)
			}
			in = append(in, p.Elem())
		case argMut:
			ref, ok := args[i].Cloned().AsReference()
			if !ok {
				return object.Variable{}, fmt.Errorf("%w: argument %d is not a reference", errMarshal, i)
			}
			m, ok := spec.binder.Bind(ref.Cell)
			if !ok {
				return object.Variable{}, fmt.Errorf("%w: argument %d does not reference %s", errMarshal, i, spec.elem)
			}
			in = append(in, reflect.ValueOf(m))
		case argPointer:
			ref, ok := args[i].Cloned().AsReference()
			if !ok {
				return object.Variable{}, fmt.Errorf("%w: argument %d is not a reference", errMarshal, i)
			}
			borrowed = &ref.Cell
			borrowAt = len(in)
			in = append(in, reflect.Value{})
		}
	}

	var out []reflect.Value
	if borrowed == nil {
		out = h.fn.Call(in)
	} else {
		var convErr error
		elem := h.args[0].elem
		locked := borrowed.TryMapMut(func(u *object.Union) {
			p, ok := u.PointerTo(elem)
			if !ok {
				convErr = fmt.Errorf("%w: referenced value is %s, want %s", errMarshal, u.Type(), elem)
				return
			}
			in[borrowAt] = p
			out = h.fn.Call(in)
		})
		if !locked {
			return object.Variable{}, fmt.Errorf("%w: referenced value is already borrowed", errMarshal)
		}
		if convErr != nil {
			return object.Variable{}, convErr
		}
	}

	if h.resultErr >= 0 {
		if e := out[h.resultErr]; !e.IsNil() {
			return object.Variable{}, e.Interface().(error)
		}
	}
	if h.resultVal < 0 {
		return object.Specified(object.Unit()), nil
	}
	return resultVariable(out[h.resultVal]), nil
}

func resultVariable(rv reflect.Value) object.Variable {
	switch x := rv.Interface().(type) {
	case object.Variable:
		return x
	case object.UnionCell:
		return object.Variable{TypeSpecified: true, Cell: x}
	default:
		return object.Specified(object.New(x))
	}
}
