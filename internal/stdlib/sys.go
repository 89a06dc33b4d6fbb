package stdlib

import (
	"fmt"
	"io"
	"iron/internal/object"
	"iron/internal/runtime"
	"os"
)

// PrintModule writes display forms of values to out.
func PrintModule[T any](out io.Writer) *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("print", func(u object.Union) error {
			_, err := io.WriteString(out, u.Inspect())
			return err
		}).
		MustRegister("println", func(u object.Union) error {
			_, err := fmt.Fprintln(out, u.Inspect())
			return err
		})
}

// SysModule is std::sys: the printing helpers plus process environment access.
func SysModule[T any](out io.Writer, args []string) *runtime.Module[T] {
	sys := PrintModule[T](out)
	sys.MustRegister("env", func(name string) object.Option {
		if v, ok := os.LookupEnv(name); ok {
			return object.Some(object.String(v))
		}
		return object.None()
	})
	sys.MustRegister("set_env", func(name, value string) error {
		return os.Setenv(name, value)
	})
	sys.MustRegister("args", func() object.Array {
		arr := object.NewArray()
		for _, a := range args {
			arr.Push(object.String(a))
		}
		return arr
	})
	return sys
}
