package runtime

import (
	"iron/internal/object"
	"strings"
)

// FnParameter is one dispatch pattern: a concrete type, or the wildcard.
// The zero value is the wildcard.
type FnParameter struct {
	specified bool
	ty        object.UnionType
}

// Unspecified matches any argument.
var Unspecified = FnParameter{}

func Specified(t object.UnionType) FnParameter {
	return FnParameter{specified: true, ty: t}
}

// ParameterFor maps a descriptor onto a pattern, any becoming the wildcard.
func ParameterFor(t object.UnionType) FnParameter {
	if t.IsAny() {
		return Unspecified
	}
	return Specified(t)
}

func (p FnParameter) Type() (object.UnionType, bool) {
	return p.ty, p.specified
}

func (p FnParameter) String() string {
	if !p.specified {
		return "_"
	}
	return p.ty.String()
}

// FnSignature is an identifier plus its ordered parameter patterns.
type FnSignature struct {
	Ident  string
	Params []FnParameter
}

// SignatureOf builds the concrete call signature for args.
func SignatureOf(ident string, args []object.Variable) FnSignature {
	params := make([]FnParameter, len(args))
	for i, a := range args {
		params[i] = Specified(a.Ty())
	}
	return FnSignature{Ident: ident, Params: params}
}

func (s FnSignature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return s.Ident + "(" + strings.Join(parts, ", ") + ")"
}
