package runtime

import (
	"fmt"
	"sort"
)

type branch[T any] struct {
	children map[FnParameter]*branch[T]
	fn       FnType[T]
}

func newBranch[T any]() *branch[T] {
	return &branch[T]{children: make(map[FnParameter]*branch[T])}
}

func (b *branch[T]) clone() *branch[T] {
	c := &branch[T]{children: make(map[FnParameter]*branch[T], len(b.children)), fn: b.fn}
	for k, child := range b.children {
		c.children[k] = child.clone()
	}
	return c
}

// mergeOverride folds other into b; terminals of other win.
func (b *branch[T]) mergeOverride(other *branch[T]) {
	if other.fn != nil {
		b.fn = other.fn
	}
	for k, oc := range other.children {
		if child, ok := b.children[k]; ok {
			child.mergeOverride(oc)
		} else {
			b.children[k] = oc.clone()
		}
	}
}

func (b *branch[T]) collect(ident string, prefix []FnParameter, out *[]FnSignature) {
	if b.fn != nil {
		*out = append(*out, FnSignature{Ident: ident, Params: append([]FnParameter(nil), prefix...)})
	}
	for k, child := range b.children {
		child.collect(ident, append(prefix, k), out)
	}
}

// FnStorage is a multi-dispatch table: identifier to a trie keyed by one
// parameter pattern per level.
type FnStorage[T any] struct {
	fns map[string]*branch[T]
}

func NewFnStorage[T any]() *FnStorage[T] {
	return &FnStorage[T]{fns: make(map[string]*branch[T])}
}

// Register stores fn at the exact pattern path of sig. A callable already at
// that path is a redefinition.
func (s *FnStorage[T]) Register(sig FnSignature, fn FnType[T]) error {
	b, ok := s.fns[sig.Ident]
	if !ok {
		b = newBranch[T]()
		s.fns[sig.Ident] = b
	}
	for _, p := range sig.Params {
		next, ok := b.children[p]
		if !ok {
			next = newBranch[T]()
			b.children[p] = next
		}
		b = next
	}
	if b.fn != nil {
		return fmt.Errorf("%s is already defined", sig)
	}
	b.fn = fn
	return nil
}

// Lookup resolves sig. At each parameter the exact branch is preferred and the
// wildcard branch is the fallback; a wildcard pattern in sig only follows the
// wildcard branch.
func (s *FnStorage[T]) Lookup(sig FnSignature) (FnType[T], bool) {
	b, ok := s.fns[sig.Ident]
	if !ok {
		return nil, false
	}
	for _, p := range sig.Params {
		next, ok := b.children[p]
		if !ok {
			next, ok = b.children[Unspecified]
		}
		if !ok {
			return nil, false
		}
		b = next
	}
	if b.fn == nil {
		return nil, false
	}
	return b.fn, true
}

// MergeOverride folds other into s. Where both define the same signature the
// callable from other replaces the existing one.
func (s *FnStorage[T]) MergeOverride(other *FnStorage[T]) {
	for ident, ob := range other.fns {
		if b, ok := s.fns[ident]; ok {
			b.mergeOverride(ob)
		} else {
			s.fns[ident] = ob.clone()
		}
	}
}

func (s *FnStorage[T]) Clone() *FnStorage[T] {
	c := &FnStorage[T]{fns: make(map[string]*branch[T], len(s.fns))}
	for ident, b := range s.fns {
		c.fns[ident] = b.clone()
	}
	return c
}

// Signatures lists every registered signature, sorted by display form.
func (s *FnStorage[T]) Signatures() []FnSignature {
	var out []FnSignature
	for ident, b := range s.fns {
		b.collect(ident, nil, &out)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func (s *FnStorage[T]) Len() int {
	return len(s.Signatures())
}
