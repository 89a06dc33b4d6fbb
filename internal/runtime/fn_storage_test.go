package runtime

import (
	"iron/internal/ast"
	"iron/internal/errors"
	"iron/internal/object"
	"testing"
)

type stubFn struct{ name string }

func (s *stubFn) Run(*Runtime[struct{}], *Scope[struct{}], ast.Span, []object.Variable) (object.Variable, *errors.Error) {
	return object.Specified(object.String(s.name)), nil
}

func sig(ident string, params ...FnParameter) FnSignature {
	return FnSignature{Ident: ident, Params: params}
}

func lookupName(t *testing.T, s *FnStorage[struct{}], query FnSignature) string {
	t.Helper()
	fn, ok := s.Lookup(query)
	if !ok {
		return ""
	}
	return fn.(*stubFn).name
}

func TestFnStorageLookup(t *testing.T) {
	i32 := Specified(object.IntType)
	str := Specified(object.StringType)
	refI32 := Specified(object.IntType.Ref())

	s := NewFnStorage[struct{}]()
	registrations := []struct {
		sig  FnSignature
		name string
	}{
		{sig("f", i32, i32), "f(i32, i32)"},
		{sig("f", i32, Unspecified), "f(i32, _)"},
		{sig("f", Unspecified), "f(_)"},
		{sig("f"), "f()"},
		{sig("g", refI32), "g(&i32)"},
	}
	for _, r := range registrations {
		if err := s.Register(r.sig, &stubFn{name: r.name}); err != nil {
			t.Fatalf("Register(%s): %v", r.sig, err)
		}
	}

	tests := []struct {
		query    FnSignature
		expected string
	}{
		{sig("f", i32, i32), "f(i32, i32)"},
		{sig("f", i32, str), "f(i32, _)"},
		{sig("f", str), "f(_)"},
		{sig("f", i32), ""},
		{sig("f"), "f()"},
		{sig("g", refI32), "g(&i32)"},
		{sig("g", i32), ""},
		{sig("f", str, str), ""},
		{sig("h"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.query.String(), func(t *testing.T) {
			if got := lookupName(t, s, tt.query); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// The exact branch is committed to once taken, even when only the wildcard
// branch could complete the match.
func TestFnStorageLookupDoesNotBacktrack(t *testing.T) {
	i32 := Specified(object.IntType)
	s := NewFnStorage[struct{}]()
	_ = s.Register(sig("f", i32, i32), &stubFn{name: "exact"})
	_ = s.Register(sig("f", Unspecified, Specified(object.BoolType)), &stubFn{name: "wild"})

	if got := lookupName(t, s, sig("f", i32, Specified(object.BoolType))); got != "" {
		t.Errorf("expected no match, got %q", got)
	}
	if got := lookupName(t, s, sig("f", Specified(object.FloatType), Specified(object.BoolType))); got != "wild" {
		t.Errorf("expected wild, got %q", got)
	}
}

func TestFnStorageRedefinition(t *testing.T) {
	i32 := Specified(object.IntType)
	s := NewFnStorage[struct{}]()

	if err := s.Register(sig("f", i32), &stubFn{name: "a"}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := s.Register(sig("f", i32), &stubFn{name: "b"}); err == nil {
		t.Errorf("expected redefinition error")
	}
	if err := s.Register(sig("f", Specified(object.FloatType)), &stubFn{name: "c"}); err != nil {
		t.Errorf("different pattern should register: %v", err)
	}
	if got := lookupName(t, s, sig("f", i32)); got != "a" {
		t.Errorf("expected the original callable to survive, got %q", got)
	}
}

func TestModuleMergeOverrides(t *testing.T) {
	i32 := Specified(object.IntType)

	a := NewModule[struct{}]()
	b := NewModule[struct{}]()
	_ = a.RegisterFn(sig("f", i32), &stubFn{name: "a"})
	_ = a.RegisterFn(sig("only_a"), &stubFn{name: "only_a"})
	_ = b.RegisterFn(sig("f", i32), &stubFn{name: "b"})

	subA := NewModule[struct{}]()
	_ = subA.RegisterFn(sig("x"), &stubFn{name: "a.x"})
	subB := NewModule[struct{}]()
	_ = subB.RegisterFn(sig("x"), &stubFn{name: "b.x"})
	_ = subB.RegisterFn(sig("y"), &stubFn{name: "b.y"})
	a.RegisterSubModule("sub", subA)
	b.RegisterSubModule("sub", subB)

	if err := a.RegisterFn(sig("f", i32), &stubFn{name: "direct"}); err == nil {
		t.Fatalf("direct registration of a collision should fail")
	}

	a.Merge(b)

	tests := []struct {
		path     []string
		query    FnSignature
		expected string
	}{
		{nil, sig("f", i32), "b"},
		{nil, sig("only_a"), "only_a"},
		{[]string{"sub"}, sig("x"), "b.x"},
		{[]string{"sub"}, sig("y"), "b.y"},
		{[]string{"missing"}, sig("x"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.query.String(), func(t *testing.T) {
			got := ""
			if fn, ok := a.Lookup(tt.path, tt.query); ok {
				got = fn.(*stubFn).name
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestModuleCloneIsIndependent(t *testing.T) {
	m := NewModule[struct{}]()
	_ = m.RegisterFn(sig("f"), &stubFn{name: "f"})
	m.RegisterSubModule("sub", NewModule[struct{}]())

	c := m.Clone()
	_ = c.RegisterFn(sig("g"), &stubFn{name: "g"})
	sub, _ := c.SubModule("sub")
	_ = sub.RegisterFn(sig("h"), &stubFn{name: "h"})

	if _, ok := m.Lookup(nil, sig("g")); ok {
		t.Errorf("registration on the clone leaked into the original")
	}
	if _, ok := m.Lookup([]string{"sub"}, sig("h")); ok {
		t.Errorf("sub-module registration on the clone leaked into the original")
	}
	if _, ok := c.Lookup(nil, sig("f")); !ok {
		t.Errorf("clone lost an existing function")
	}
}

func TestSignatures(t *testing.T) {
	s := NewFnStorage[struct{}]()
	_ = s.Register(sig("b", Specified(object.StringType)), &stubFn{})
	_ = s.Register(sig("a", Unspecified, Specified(object.IntType.Ref())), &stubFn{})
	_ = s.Register(sig("a"), &stubFn{})

	got := s.Signatures()
	expected := []string{"a()", "a(_, &i32)", "b(str)"}
	if len(got) != len(expected) {
		t.Fatalf("expected %d signatures, got %d", len(expected), len(got))
	}
	for i, e := range expected {
		if got[i].String() != e {
			t.Errorf("signature %d: expected %s, got %s", i, e, got[i])
		}
	}
	if s.Len() != 3 {
		t.Errorf("expected Len 3, got %d", s.Len())
	}
}
