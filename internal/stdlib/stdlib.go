// Package stdlib holds the script standard library. Every function is built
// through the ordinary registration API.
package stdlib

import (
	"io"
	"iron/internal/runtime"
	"os"
)

// Options configures the modules that talk to the outside world.
type Options struct {
	Out io.Writer
	SQL SQLOptions
	// Args is what std::sys::args() returns. nil means os.Args[1:].
	Args []string
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) args() []string {
	if o.Args == nil && len(os.Args) > 1 {
		return os.Args[1:]
	}
	return o.Args
}

// Std builds the module registered under the name "std".
func Std[T any](opts Options) *runtime.Module[T] {
	std := runtime.NewModule[T]()
	std.RegisterSubModule("sys", SysModule[T](opts.out(), opts.args()))
	std.RegisterSubModule("sql", SQLModule[T](opts.SQL))
	std.RegisterSubModule("fs", FsModule[T]())
	std.RegisterSubModule("math", MathModule[T]())
	std.RegisterSubModule("time", TimeModule[T]())
	std.RegisterSubModule("regex", RegexModule[T]())
	std.RegisterSubModule("codec", CodecModule[T]())
	return std
}

// Global builds the module merged into the root namespace.
func Global[T any](out io.Writer) *runtime.Module[T] {
	global := runtime.NewModule[T]()
	for _, m := range []*runtime.Module[T]{
		StringModule[T](),
		TyModule[T](),
		OptionModule[T](),
		ArrayModule[T](),
		RangeModule[T](),
		RowsModule[T](),
		PrintModule[T](out),
	} {
		global.Merge(m)
	}
	return global
}
