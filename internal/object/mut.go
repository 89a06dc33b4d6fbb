package object

import (
	"fmt"
	"reflect"
)

// Mut is a typed live view into a shared cell holding a T. Host functions
// receive one for parameters that mutate script-owned values.
type Mut[T any] struct {
	cell UnionCell
}

// NewMut promotes cell and binds a view to it. It panics when the cell does
// not hold a T.
func NewMut[T any](cell UnionCell) Mut[T] {
	m, ok := bindMut[T](cell)
	if !ok {
		panic(fmt.Sprintf("object: cannot view %s as %s", cell.Ty(), reflect.TypeFor[T]()))
	}
	return m
}

func bindMut[T any](cell UnionCell) (Mut[T], bool) {
	shared := cell.GetShared()
	ok := false
	shared.Map(func(u *Union) {
		_, ok = DowncastRef[T](u)
	})
	return Mut[T]{cell: shared}, ok
}

// Get returns a copy of the current value.
func (m Mut[T]) Get() T {
	v, ok := Downcast[T](m.cell.Cloned())
	if !ok {
		panic(fmt.Sprintf("object: cell no longer holds %s", reflect.TypeFor[T]()))
	}
	return v
}

func (m Mut[T]) Map(f func(v *T)) {
	m.cell.Map(func(u *Union) {
		f(m.must(u))
	})
}

// MapMut holds the cell's write guard while f runs.
func (m Mut[T]) MapMut(f func(v *T)) {
	m.cell.MapMut(func(u *Union) {
		f(m.must(u))
	})
}

func (m Mut[T]) must(u *Union) *T {
	p, ok := DowncastMut[T](u)
	if !ok {
		panic(fmt.Sprintf("object: cell no longer holds %s", reflect.TypeFor[T]()))
	}
	return p
}

// Cell returns another handle to the viewed storage.
func (m Mut[T]) Cell() UnionCell {
	return m.cell.Clone()
}

// ElemType is the Go type viewed by this Mut.
func (Mut[T]) ElemType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Bind returns a Mut[T] over cell, or false when the cell does not hold a T.
func (Mut[T]) Bind(cell UnionCell) (any, bool) {
	m, ok := bindMut[T](cell)
	if !ok {
		return nil, false
	}
	return m, true
}

// MutBinder is implemented by every Mut instantiation.
type MutBinder interface {
	ElemType() reflect.Type
	Bind(cell UnionCell) (any, bool)
}
