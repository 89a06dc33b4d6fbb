package object

import "sync"

type sharedCell struct {
	mu    sync.RWMutex
	union Union
}

func (s *sharedCell) load() Union {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.union
}

// UnionCell owns one Union, either exclusively or through a shared, guarded
// allocation. Promotion to shared is one-way.
type UnionCell struct {
	owned  Union
	shared *sharedCell
}

func NewCell(u Union) UnionCell {
	return UnionCell{owned: u}
}

func (c *UnionCell) IsShared() bool {
	return c.shared != nil
}

// MakeShared moves an owned value into shared storage. Calling it on a
// shared cell does nothing.
func (c *UnionCell) MakeShared() {
	if c.shared != nil {
		return
	}
	c.shared = &sharedCell{union: c.owned}
	c.owned = Union{}
}

// GetShared promotes the cell and returns a second handle to the same storage.
func (c *UnionCell) GetShared() UnionCell {
	c.MakeShared()
	return UnionCell{shared: c.shared}
}

// SameStorage reports whether both cells are handles to one shared allocation.
func (c UnionCell) SameStorage(other UnionCell) bool {
	return c.shared != nil && c.shared == other.shared
}

// Clone copies the handle of a shared cell and the value of an owned one.
func (c UnionCell) Clone() UnionCell {
	if c.shared != nil {
		return UnionCell{shared: c.shared}
	}
	return NewCell(c.owned.Clone())
}

// Private returns an owned cell holding a copy of the current value.
func (c UnionCell) Private() UnionCell {
	return NewCell(c.Cloned())
}

func (c UnionCell) Cloned() Union {
	if c.shared != nil {
		c.shared.mu.RLock()
		defer c.shared.mu.RUnlock()
		return c.shared.union.Clone()
	}
	return c.owned.Clone()
}

func (c UnionCell) Ty() UnionType {
	return c.typeOf(nil)
}

func (c UnionCell) typeOf(seen map[*sharedCell]bool) UnionType {
	if c.shared == nil {
		return c.owned.typeOf(seen)
	}
	if seen[c.shared] {
		return AnyType
	}
	if seen == nil {
		seen = make(map[*sharedCell]bool)
	}
	seen[c.shared] = true
	defer delete(seen, c.shared)
	return c.shared.load().typeOf(seen)
}

func (c UnionCell) String() string {
	return c.inspect(nil)
}

func (c UnionCell) inspect(seen map[*sharedCell]bool) string {
	if c.shared == nil {
		return c.owned.inspect(seen)
	}
	if seen[c.shared] {
		return "<cycle>"
	}
	if seen == nil {
		seen = make(map[*sharedCell]bool)
	}
	seen[c.shared] = true
	defer delete(seen, c.shared)
	return c.shared.load().inspect(seen)
}

func (c *UnionCell) Set(u Union) {
	if c.shared != nil {
		c.shared.mu.Lock()
		c.shared.union = u
		c.shared.mu.Unlock()
		return
	}
	c.owned = u
}

// Map gives f read access to the value under the read guard.
func (c *UnionCell) Map(f func(u *Union)) {
	if c.shared != nil {
		c.shared.mu.RLock()
		defer c.shared.mu.RUnlock()
		f(&c.shared.union)
		return
	}
	f(&c.owned)
}

// MapMut gives f write access to the value under the write guard. f must not
// evaluate script code that can reach this cell: the guard is not re-entrant.
func (c *UnionCell) MapMut(f func(u *Union)) {
	if c.shared != nil {
		c.shared.mu.Lock()
		defer c.shared.mu.Unlock()
		f(&c.shared.union)
		return
	}
	f(&c.owned)
}

// TryMapMut is MapMut that reports false instead of blocking when the cell is
// already borrowed.
func (c *UnionCell) TryMapMut(f func(u *Union)) bool {
	if c.shared != nil {
		if !c.shared.mu.TryLock() {
			return false
		}
		defer c.shared.mu.Unlock()
		f(&c.shared.union)
		return true
	}
	f(&c.owned)
	return true
}

// Variable is a cell plus whether its type was declared.
type Variable struct {
	TypeSpecified bool
	Cell          UnionCell
}

func NewVariable(u Union, typeSpecified bool) Variable {
	return Variable{TypeSpecified: typeSpecified, Cell: NewCell(u)}
}

func Specified(u Union) Variable   { return NewVariable(u, true) }
func Unspecified(u Union) Variable { return NewVariable(u, false) }

// GetShared returns an aliasing handle to this variable's storage.
func (v *Variable) GetShared() Variable {
	return Variable{TypeSpecified: v.TypeSpecified, Cell: v.Cell.GetShared()}
}

func (v Variable) Clone() Variable {
	return Variable{TypeSpecified: v.TypeSpecified, Cell: v.Cell.Clone()}
}

// Private returns a variable holding a copy of the value, detached from any
// alias.
func (v Variable) Private() Variable {
	return Variable{TypeSpecified: v.TypeSpecified, Cell: v.Cell.Private()}
}

func (v Variable) Cloned() Union { return v.Cell.Cloned() }

func (v Variable) Ty() UnionType { return v.Cell.Ty() }

func (v *Variable) Set(u Union) { v.Cell.Set(u) }

func (v Variable) String() string { return v.Cell.String() }
