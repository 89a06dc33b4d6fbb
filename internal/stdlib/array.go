package stdlib

import (
	"fmt"
	"iron/internal/object"
	"iron/internal/runtime"
)

// ArrayModule provides arrays of arbitrary values. Indexing hands out a
// handle aliasing the element, so `a[i] = v` writes into the array.
func ArrayModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("arr", func() object.Array {
			return object.NewArray()
		}).
		MustRegister("push", func(a *object.Array, item object.Union) {
			a.Push(item)
		}).
		MustRegister("len", func(a object.Array) int32 {
			return int32(a.Len())
		}).
		MustRegister("[]", index).
		MustRegister("into_iter", func(a object.Array) object.Array {
			return a
		}).
		MustRegister("iter_next", func(a *object.Array) object.Option {
			first, ok := a.PopFront()
			if !ok {
				return object.None()
			}
			return object.Some(first.Cloned())
		})
}

func index(a object.Mut[object.Array], i int32) (object.Variable, error) {
	var (
		elem  object.UnionCell
		found bool
		size  int
	)
	a.MapMut(func(arr *object.Array) {
		size = arr.Len()
		if cell, ok := arr.Index(int(i)); ok {
			elem, found = cell.GetShared(), true
		}
	})
	if !found {
		return object.Variable{}, fmt.Errorf("index %d out of range for array of length %d", i, size)
	}
	return object.Variable{Cell: elem}, nil
}
