package stdlib

import (
	"iron/internal/object"
	"iron/internal/runtime"
	"strings"
	"unicode/utf8"
)

// StringModule: "+" appends the display form of any value to a string.
func StringModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("+", func(a string, b object.Union) string { return a + b.Inspect() }).
		MustRegister("==", func(a, b string) bool { return a == b }).
		MustRegister("len", func(s string) int32 { return int32(utf8.RuneCountInString(s)) }).
		MustRegister("upper", strings.ToUpper).
		MustRegister("lower", strings.ToLower).
		MustRegister("trim", strings.TrimSpace).
		MustRegister("contains", strings.Contains).
		MustRegister("split", func(s, sep string) object.Array {
			return stringArray(strings.Split(s, sep))
		})
}
