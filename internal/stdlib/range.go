package stdlib

import (
	"fmt"
	"iron/internal/object"
	"iron/internal/runtime"
)

// Range is the half-open interval [Start, End).
type Range struct {
	Start, End int32
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

type RangeIter struct {
	End      int32
	Position int32
}

func (it *RangeIter) Next() (int32, bool) {
	if it.Position >= it.End {
		return 0, false
	}
	it.Position++
	return it.Position - 1, true
}

func RangeModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("range", func(start, end int32) Range {
			return Range{Start: start, End: end}
		}).
		MustRegister("into_iter", func(r Range) RangeIter {
			return RangeIter{End: r.End, Position: r.Start}
		}).
		MustRegister("iter_next", func(it *RangeIter) object.Option {
			n, ok := it.Next()
			if !ok {
				return object.None()
			}
			return object.Some(object.Int(n))
		})
}
