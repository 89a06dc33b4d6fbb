package object

import "strings"

// Option is the optional-value sentinel returned by iter_next and the
// option helpers.
type Option struct {
	value Union
	some  bool
}

func Some(u Union) Option { return Option{value: u, some: true} }
func None() Option        { return Option{} }

func (o Option) IsSome() bool { return o.some }

func (o Option) Get() (Union, bool) { return o.value, o.some }

func (o Option) CloneValue() any {
	return Option{value: o.value.Clone(), some: o.some}
}

func (o Option) String() string { return o.inspect(nil) }

func (o Option) inspect(seen map[*sharedCell]bool) string {
	if !o.some {
		return "none"
	}
	return "some(" + o.value.inspect(seen) + ")"
}

// Array is the host type behind script arrays.
type Array struct {
	Items []UnionCell
}

func NewArray(items ...Union) Array {
	a := Array{Items: make([]UnionCell, 0, len(items))}
	for _, u := range items {
		a.Items = append(a.Items, NewCell(u))
	}
	return a
}

func (a Array) Len() int { return len(a.Items) }

func (a *Array) Push(u Union) {
	a.Items = append(a.Items, NewCell(u))
}

// PopFront removes and returns the first element.
func (a *Array) PopFront() (UnionCell, bool) {
	if len(a.Items) == 0 {
		return UnionCell{}, false
	}
	first := a.Items[0]
	a.Items[0] = UnionCell{}
	a.Items = a.Items[1:]
	return first, true
}

// Index returns the element cell so callers can alias it.
func (a *Array) Index(i int) (*UnionCell, bool) {
	if i < 0 || i >= len(a.Items) {
		return nil, false
	}
	return &a.Items[i], true
}

func (a Array) CloneValue() any {
	items := make([]UnionCell, len(a.Items))
	for i, c := range a.Items {
		items[i] = c.Private()
	}
	return Array{Items: items}
}

func (a Array) String() string { return a.inspect(nil) }

func (a Array) inspect(seen map[*sharedCell]bool) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range a.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.inspect(seen))
	}
	b.WriteByte(']')
	return b.String()
}
