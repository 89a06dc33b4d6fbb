package object

import (
	"reflect"
	"testing"
)

type point struct {
	X, Y int32
}

func TestDowncast(t *testing.T) {
	t.Run("primitives", func(t *testing.T) {
		if v, ok := Downcast[int32](Int(7)); !ok || v != 7 {
			t.Errorf("int32: got %v, %v", v, ok)
		}
		if v, ok := Downcast[float32](Float(1.5)); !ok || v != 1.5 {
			t.Errorf("float32: got %v, %v", v, ok)
		}
		if v, ok := Downcast[bool](Bool(true)); !ok || !v {
			t.Errorf("bool: got %v, %v", v, ok)
		}
		if v, ok := Downcast[string](String("s")); !ok || v != "s" {
			t.Errorf("string: got %v, %v", v, ok)
		}
		if _, ok := Downcast[struct{}](Unit()); !ok {
			t.Errorf("unit did not downcast to struct{}")
		}
		if v, ok := Downcast[UnionType](TypeValue(IntType)); !ok || v != IntType {
			t.Errorf("type: got %v, %v", v, ok)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		if _, ok := Downcast[int32](Float(1)); ok {
			t.Errorf("float downcast to int32")
		}
		if _, ok := Downcast[string](Unit()); ok {
			t.Errorf("unit downcast to string")
		}
		if _, ok := Downcast[point](NewVariant(struct{ X, Y int32 }{})); ok {
			t.Errorf("structurally equal host types must not downcast")
		}
	})

	t.Run("variant", func(t *testing.T) {
		u := New(point{X: 1, Y: 2})
		if u.Kind() != KindVariant {
			t.Fatalf("expected a variant, got %s", u.Kind())
		}
		p, ok := Downcast[point](u)
		if !ok || p != (point{X: 1, Y: 2}) {
			t.Errorf("got %+v, %v", p, ok)
		}
	})

	t.Run("union matches anything", func(t *testing.T) {
		u := Int(3)
		p, ok := DowncastRef[Union](&u)
		if !ok || p != &u {
			t.Errorf("expected the union itself")
		}
	})
}

func TestDowncastMutWritesInPlace(t *testing.T) {
	c := NewCell(New(point{}))
	alias := c.GetShared()
	alias.MapMut(func(u *Union) {
		p, ok := DowncastMut[point](u)
		if !ok {
			t.Fatalf("expected a point")
		}
		p.X = 10
	})
	if p, _ := Downcast[point](c.Cloned()); p.X != 10 {
		t.Errorf("write through alias not visible: %+v", p)
	}
}

func TestNewRoutesPrimitives(t *testing.T) {
	tests := []struct {
		in   any
		kind Kind
	}{
		{nil, KindUnit},
		{struct{}{}, KindUnit},
		{int32(1), KindInt},
		{float32(1), KindFloat},
		{true, KindBool},
		{"s", KindString},
		{IntType, KindType},
		{Int(4), KindInt},
		{Unspecified(Bool(false)), KindBool},
		{point{}, KindVariant},
		{int64(1), KindVariant},
	}

	for _, tt := range tests {
		if got := New(tt.in).Kind(); got != tt.kind {
			t.Errorf("New(%#v): expected %s, got %s", tt.in, tt.kind, got)
		}
	}
}

func TestTypeDescriptors(t *testing.T) {
	pointType := TypeOf[point]()
	tests := []struct {
		ty       UnionType
		expected string
	}{
		{UnitType, "()"},
		{IntType, "i32"},
		{StringType.Ref().Ref(), "&&str"},
		{TypeFor(reflect.TypeFor[Union]()), "any"},
		{TypeOf[struct{}](), "()"},
		{pointType, "variant<object.point>"},
		{pointType.Ref(), "&variant<object.point>"},
	}
	for _, tt := range tests {
		if got := tt.ty.String(); got != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, got)
		}
	}

	ref := IntType.Ref()
	if ref.Kind() != KindReference {
		t.Errorf("expected a reference kind, got %s", ref.Kind())
	}
	if elem, ok := ref.Elem(); !ok || elem != IntType {
		t.Errorf("Elem: got %s, %v", elem, ok)
	}
	if _, ok := IntType.Elem(); ok {
		t.Errorf("i32 has no element type")
	}
	if pointType.HostType() != reflect.TypeFor[point]() {
		t.Errorf("unexpected host type %v", pointType.HostType())
	}
	if New(point{}).Type() != pointType {
		t.Errorf("value type differs from static type")
	}
}

func TestPromotionAliases(t *testing.T) {
	v := Unspecified(Int(1))
	alias := v.GetShared()
	alias.Set(Int(2))

	if got := v.String(); got != "2" {
		t.Errorf("expected 2, got %s", got)
	}
	if !v.Cell.SameStorage(alias.Cell) {
		t.Errorf("alias does not share storage")
	}
	if c := v.Clone(); !c.Cell.SameStorage(v.Cell) {
		t.Errorf("clone of a shared cell should alias")
	}
}

func TestCloneBeforePromotionIsIndependent(t *testing.T) {
	v := Unspecified(Int(1))
	copied := v.Clone()
	_ = v.GetShared()
	copied.Set(Int(9))

	if got := v.String(); got != "1" {
		t.Errorf("expected 1, got %s", got)
	}
	if copied.Cell.SameStorage(v.Cell) {
		t.Errorf("pre-promotion clone shares storage")
	}
}

func TestPrivateDetaches(t *testing.T) {
	v := Specified(Int(1))
	_ = v.GetShared()
	p := v.Private()
	p.Set(Int(5))

	if got := v.String(); got != "1" {
		t.Errorf("private copy wrote through: %s", got)
	}
	if p.Cell.IsShared() || !p.TypeSpecified {
		t.Errorf("unexpected private variable %+v", p)
	}
}

func TestReferenceCloneKeepsAlias(t *testing.T) {
	target := Unspecified(Int(1))
	r := Reference(target.GetShared())
	r2 := r.Clone()

	inner, ok := r2.AsReference()
	if !ok {
		t.Fatalf("expected a reference")
	}
	inner.Set(Int(3))
	if got := target.String(); got != "3" {
		t.Errorf("expected 3, got %s", got)
	}
	if got := r.Type().String(); got != "&i32" {
		t.Errorf("expected &i32, got %s", got)
	}
}

func TestVariantCloneIsDeep(t *testing.T) {
	a := New(NewArray(Int(1)))
	b := a.Clone()

	arr, _ := DowncastMut[Array](&b)
	arr.Push(Int(2))

	if got := a.String(); got != "[1]" {
		t.Errorf("original changed: %s", got)
	}
	if got := b.String(); got != "[1, 2]" {
		t.Errorf("expected [1, 2], got %s", got)
	}
}

func TestCycleIsSafe(t *testing.T) {
	v := Unspecified(Unit())
	alias := v.GetShared()
	v.Set(Reference(alias))

	if got := v.String(); got != "&<cycle>" {
		t.Errorf("expected &<cycle>, got %s", got)
	}
	if got := v.Ty().String(); got != "&any" {
		t.Errorf("expected &any, got %s", got)
	}
}

func TestMut(t *testing.T) {
	c := NewCell(New(point{X: 1}))
	m := NewMut[point](c.GetShared())

	m.MapMut(func(p *point) { p.Y = 4 })
	if got := m.Get(); got != (point{X: 1, Y: 4}) {
		t.Errorf("unexpected view value %+v", got)
	}
	if p, _ := Downcast[point](c.Cloned()); p.Y != 4 {
		t.Errorf("write through Mut not visible: %+v", p)
	}
	if !m.Cell().SameStorage(c) {
		t.Errorf("Mut cell should alias the viewed storage")
	}

	var binder MutBinder = Mut[point]{}
	if binder.ElemType() != reflect.TypeFor[point]() {
		t.Errorf("unexpected elem type %v", binder.ElemType())
	}
	if _, ok := binder.Bind(NewCell(Int(1))); ok {
		t.Errorf("bound a Mut[point] to an i32 cell")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("NewMut on the wrong type should panic")
		}
	}()
	NewMut[string](NewCell(Int(1)))
}

func TestContainers(t *testing.T) {
	arr := NewArray(Int(1), New(Some(Int(2))), New(None()))
	if got := arr.String(); got != "[1, some(2), none]" {
		t.Errorf("unexpected display %s", got)
	}

	cell, ok := arr.Index(0)
	if !ok {
		t.Fatalf("Index(0) failed")
	}
	cell.Set(Int(5))
	if _, ok := arr.Index(3); ok {
		t.Errorf("Index(3) should be out of range")
	}

	first, ok := arr.PopFront()
	if !ok || first.String() != "5" {
		t.Errorf("PopFront: got %s, %v", first, ok)
	}
	if arr.Len() != 2 {
		t.Errorf("expected 2 remaining, got %d", arr.Len())
	}

	empty := NewArray()
	if _, ok := empty.PopFront(); ok {
		t.Errorf("PopFront on empty array succeeded")
	}

	if v, ok := Some(Int(1)).Get(); !ok || v.String() != "1" {
		t.Errorf("Some.Get: got %s, %v", v, ok)
	}
	if None().IsSome() {
		t.Errorf("None reports some")
	}
}

func TestEnvironment(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", Unspecified(Int(1)))
	env.Define("y", Unspecified(Int(2)))
	env.Define("x", Unspecified(String("s")))

	if x, _ := env.Get("x"); x.String() != "s" {
		t.Errorf("expected the newest binding, got %s", x)
	}
	if _, ok := env.Get("z"); ok {
		t.Errorf("z should be undefined")
	}

	child := NewEnclosedEnvironment(env)
	y, _ := child.Get("y")
	y.Set(Int(20))
	child.Define("z", Unspecified(Int(3)))

	if y, _ := env.Get("y"); y.String() != "20" {
		t.Errorf("write through child not visible, got %s", y)
	}
	if _, ok := env.Get("z"); ok {
		t.Errorf("child binding leaked into parent")
	}
	if env.Len() != 3 || child.Len() != 4 {
		t.Errorf("unexpected lengths %d, %d", env.Len(), child.Len())
	}

	var names []string
	env.Bindings(func(name string, v Variable) {
		names = append(names, name+"="+v.String())
	})
	expected := []string{"y=20", "x=s"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("expected %v, got %v", expected, names)
	}
}
