package object

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the tag of a Union or the base of a UnionType.
type Kind uint8

const (
	KindUnit Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindType
	KindReference
	KindVariant
	KindAny
)

var kindNames = [...]string{"()", "i32", "f32", "bool", "str", "type", "&", "variant", "any"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// UnionType is the structural type descriptor used for dispatch. References
// are encoded by depth so the descriptor stays comparable and can key maps.
type UnionType struct {
	base  Kind
	depth int
	id    reflect.Type
}

var (
	UnitType   = UnionType{base: KindUnit}
	IntType    = UnionType{base: KindInt}
	FloatType  = UnionType{base: KindFloat}
	BoolType   = UnionType{base: KindBool}
	StringType = UnionType{base: KindString}
	TypeType   = UnionType{base: KindType}
	AnyType    = UnionType{base: KindAny}
)

var (
	unionReflectType = reflect.TypeFor[Union]()
	typeReflectType  = reflect.TypeFor[UnionType]()
	unitReflectType  = reflect.TypeFor[struct{}]()
)

// VariantType is the descriptor of a host type carried as a Variant payload.
func VariantType(t reflect.Type) UnionType {
	return UnionType{base: KindVariant, id: t}
}

// TypeFor maps a Go type onto its descriptor. Union maps to Any since a host
// parameter of that type accepts every value.
func TypeFor(t reflect.Type) UnionType {
	switch t {
	case unionReflectType:
		return AnyType
	case typeReflectType:
		return TypeType
	case unitReflectType:
		return UnitType
	}
	switch t.Kind() {
	case reflect.Int32:
		if t.PkgPath() == "" {
			return IntType
		}
	case reflect.Float32:
		if t.PkgPath() == "" {
			return FloatType
		}
	case reflect.Bool:
		if t.PkgPath() == "" {
			return BoolType
		}
	case reflect.String:
		if t.PkgPath() == "" {
			return StringType
		}
	}
	return VariantType(t)
}

func TypeOf[T any]() UnionType {
	return TypeFor(reflect.TypeFor[T]())
}

// Kind reports KindReference for reference types, the base kind otherwise.
func (t UnionType) Kind() Kind {
	if t.depth > 0 {
		return KindReference
	}
	return t.base
}

func (t UnionType) Ref() UnionType {
	t.depth++
	return t
}

// Elem strips one reference.
func (t UnionType) Elem() (UnionType, bool) {
	if t.depth == 0 {
		return t, false
	}
	t.depth--
	return t, true
}

func (t UnionType) IsAny() bool {
	return t.depth == 0 && t.base == KindAny
}

// HostType is the Go type behind a Variant descriptor, nil for other kinds.
func (t UnionType) HostType() reflect.Type {
	return t.id
}

func (t UnionType) String() string {
	var b strings.Builder
	for range t.depth {
		b.WriteByte('&')
	}
	if t.base == KindVariant {
		b.WriteString("variant<")
		b.WriteString(t.id.String())
		b.WriteByte('>')
	} else {
		b.WriteString(t.base.String())
	}
	return b.String()
}

// Cloner is implemented by host payloads that own mutable storage and must be
// deep copied when their Union is cloned.
type Cloner interface {
	CloneValue() any
}

type payload struct {
	typ reflect.Type
	ptr reflect.Value
}

func (p *payload) clone() *payload {
	ptr := reflect.New(p.typ)
	if c, ok := p.ptr.Interface().(Cloner); ok {
		ptr.Elem().Set(reflect.ValueOf(c.CloneValue()))
	} else {
		ptr.Elem().Set(p.ptr.Elem())
	}
	return &payload{typ: p.typ, ptr: ptr}
}

// Union is a single script value. The zero Union is unit.
//
// Plain assignment of a Union shares Variant storage; use Clone for an
// independent copy.
type Union struct {
	kind Kind
	i    int32
	f    float32
	b    bool
	s    string
	t    UnionType
	ref  *Variable
	v    *payload
}

func Unit() Union                 { return Union{} }
func Int(i int32) Union           { return Union{kind: KindInt, i: i} }
func Float(f float32) Union       { return Union{kind: KindFloat, f: f} }
func Bool(b bool) Union           { return Union{kind: KindBool, b: b} }
func String(s string) Union       { return Union{kind: KindString, s: s} }
func TypeValue(t UnionType) Union { return Union{kind: KindType, t: t} }

// Reference builds a script-level reference. The variable's cell is promoted
// so the reference aliases it.
func Reference(v Variable) Union {
	v.Cell.MakeShared()
	return Union{kind: KindReference, ref: &v}
}

// NewVariant wraps v as a type-erased payload regardless of its Go type.
func NewVariant(v any) Union {
	rv := reflect.ValueOf(v)
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return Union{kind: KindVariant, v: &payload{typ: rv.Type(), ptr: ptr}}
}

// New routes a host value into the matching tag, falling back to a Variant
// payload for any other Go type.
func New(v any) Union {
	switch x := v.(type) {
	case nil:
		return Unit()
	case Union:
		return x
	case int32:
		return Int(x)
	case float32:
		return Float(x)
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case struct{}:
		return Unit()
	case UnionType:
		return TypeValue(x)
	case Variable:
		return x.Cloned()
	case UnionCell:
		return x.Cloned()
	default:
		return NewVariant(v)
	}
}

func (u Union) Kind() Kind { return u.kind }

func (u Union) IsUnit() bool { return u.kind == KindUnit }

func (u Union) AsInt() (int32, bool)     { return u.i, u.kind == KindInt }
func (u Union) AsFloat() (float32, bool) { return u.f, u.kind == KindFloat }
func (u Union) AsBool() (bool, bool)     { return u.b, u.kind == KindBool }
func (u Union) AsString() (string, bool) { return u.s, u.kind == KindString }
func (u Union) AsType() (UnionType, bool) {
	return u.t, u.kind == KindType
}

// AsReference returns the referenced variable. Its cell is always shared.
func (u Union) AsReference() (*Variable, bool) {
	if u.kind != KindReference {
		return nil, false
	}
	return u.ref, true
}

// Downcast returns a copy of the stored value when it holds a T.
func Downcast[T any](u Union) (T, bool) {
	p, ok := DowncastRef[T](&u)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// DowncastRef returns a pointer into the union's storage when it holds a T.
// Callers must not write through it; see DowncastMut.
func DowncastRef[T any](u *Union) (*T, bool) {
	switch any((*T)(nil)).(type) {
	case *Union:
		return any(u).(*T), true
	case *int32:
		if u.kind == KindInt {
			return any(&u.i).(*T), true
		}
	case *float32:
		if u.kind == KindFloat {
			return any(&u.f).(*T), true
		}
	case *bool:
		if u.kind == KindBool {
			return any(&u.b).(*T), true
		}
	case *string:
		if u.kind == KindString {
			return any(&u.s).(*T), true
		}
	case *UnionType:
		if u.kind == KindType {
			return any(&u.t).(*T), true
		}
	case *struct{}:
		if u.kind == KindUnit {
			return new(T), true
		}
	}
	if u.kind == KindVariant && u.v.typ == reflect.TypeFor[T]() {
		return u.v.ptr.Interface().(*T), true
	}
	return nil, false
}

// DowncastMut returns a writable pointer into the union's storage when it
// holds a T. Writes are visible to every holder of the cell the union lives in.
func DowncastMut[T any](u *Union) (*T, bool) {
	return DowncastRef[T](u)
}

// PointerTo is the reflective form of DowncastMut used by the host adapters.
func (u *Union) PointerTo(t reflect.Type) (reflect.Value, bool) {
	if t == unionReflectType {
		return reflect.ValueOf(u), true
	}
	switch u.kind {
	case KindVariant:
		if u.v.typ == t {
			return u.v.ptr, true
		}
		return reflect.Value{}, false
	case KindUnit:
		if t == unitReflectType {
			return reflect.New(t), true
		}
		return reflect.Value{}, false
	case KindType:
		if t == typeReflectType {
			return reflect.ValueOf(&u.t), true
		}
		return reflect.Value{}, false
	}
	if t.PkgPath() != "" {
		return reflect.Value{}, false
	}
	switch {
	case u.kind == KindInt && t.Kind() == reflect.Int32:
		return reflect.ValueOf(&u.i), true
	case u.kind == KindFloat && t.Kind() == reflect.Float32:
		return reflect.ValueOf(&u.f), true
	case u.kind == KindBool && t.Kind() == reflect.Bool:
		return reflect.ValueOf(&u.b), true
	case u.kind == KindString && t.Kind() == reflect.String:
		return reflect.ValueOf(&u.s), true
	}
	return reflect.Value{}, false
}

// Clone copies the value. Variant payloads are deep copied, references keep
// aliasing the same storage.
func (u Union) Clone() Union {
	switch u.kind {
	case KindReference:
		r := u.ref.Clone()
		u.ref = &r
	case KindVariant:
		u.v = u.v.clone()
	}
	return u
}

// Type computes the structural descriptor. A reference cycle reports the
// revisited position as any.
func (u Union) Type() UnionType {
	return u.typeOf(nil)
}

func (u Union) typeOf(seen map[*sharedCell]bool) UnionType {
	switch u.kind {
	case KindReference:
		return u.ref.Cell.typeOf(seen).Ref()
	case KindVariant:
		return VariantType(u.v.typ)
	default:
		return UnionType{base: u.kind}
	}
}

type inspector interface {
	inspect(seen map[*sharedCell]bool) string
}

func (u Union) Inspect() string {
	return u.inspect(nil)
}

func (u Union) String() string {
	return u.inspect(nil)
}

func (u Union) inspect(seen map[*sharedCell]bool) string {
	switch u.kind {
	case KindUnit:
		return "()"
	case KindInt:
		return strconv.FormatInt(int64(u.i), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(u.f), 'g', -1, 32)
	case KindBool:
		return strconv.FormatBool(u.b)
	case KindString:
		return u.s
	case KindType:
		return u.t.String()
	case KindReference:
		return "&" + u.ref.Cell.inspect(seen)
	case KindVariant:
		v := u.v.ptr.Interface()
		if in, ok := v.(inspector); ok {
			return in.inspect(seen)
		}
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", u.v.ptr.Elem().Interface())
	}
	return "<invalid>"
}
