package stdlib

import (
	"errors"
	"iron/internal/object"
	"iron/internal/runtime"
)

var errUnwrapNone = errors.New("called unwrap on none")

func OptionModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("some", object.Some).
		MustRegister("none", object.None).
		MustRegister("is_some", func(o object.Option) bool { return o.IsSome() }).
		MustRegister("is_none", func(o object.Option) bool { return !o.IsSome() }).
		MustRegister("unwrap", func(o object.Option) (object.Union, error) {
			v, ok := o.Get()
			if !ok {
				return object.Union{}, errUnwrapNone
			}
			return v, nil
		})
}

// TyModule exposes value types as first-class values.
func TyModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("type_of", func(u object.Union) object.UnionType { return u.Type() }).
		MustRegister("==", func(a, b object.UnionType) bool { return a == b })
}
