// Package engine is the embedding surface: a base namespace holding the
// standard library and host registrations, evaluated against per-run scopes.
package engine

import (
	"fmt"
	"io"
	"iron/internal/ast"
	"iron/internal/log"
	"iron/internal/object"
	"iron/internal/parser"
	"iron/internal/runtime"
	"iron/internal/stdlib"
	"os"
	"time"

	"go.uber.org/zap"
)

// Parser turns source text into a program.
type Parser func(source string) (*ast.Block, error)

type options struct {
	out    io.Writer
	sql    stdlib.SQLOptions
	args   []string
	parser Parser
}

type Option func(*options)

// WithOutput directs the printing helpers to w. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

func WithSQL(sql stdlib.SQLOptions) Option {
	return func(o *options) { o.sql = sql }
}

// WithArgs sets what std::sys::args() returns.
func WithArgs(args []string) Option {
	return func(o *options) { o.args = args }
}

func WithParser(p Parser) Option {
	return func(o *options) { o.parser = p }
}

// Engine owns the base namespace. Every evaluation runs against a clone, so
// functions a script defines never leak into later runs.
type Engine[T any] struct {
	module *runtime.Module[T]
	parse  Parser
}

func New[T any](opts ...Option) *Engine[T] {
	o := options{
		out:    os.Stdout,
		sql:    stdlib.DefaultSQLOptions(),
		parser: parser.Parse,
	}
	for _, opt := range opts {
		opt(&o)
	}

	module := runtime.NewModule[T]()
	module.RegisterSubModule("std", stdlib.Std[T](stdlib.Options{Out: o.out, SQL: o.sql, Args: o.args}))
	module.Merge(stdlib.Global[T](o.out))

	return &Engine[T]{module: module, parse: o.parser}
}

// RegisterFn adapts fn (see runtime.Embed) into the root namespace.
func (e *Engine[T]) RegisterFn(ident string, fn any) error {
	return e.module.Register(ident, fn)
}

func (e *Engine[T]) MustRegisterFn(ident string, fn any) *Engine[T] {
	e.module.MustRegister(ident, fn)
	return e
}

// RegisterModule makes m reachable as name::f(...).
func (e *Engine[T]) RegisterModule(name string, m *runtime.Module[T]) *Engine[T] {
	if _, replaced := e.module.RegisterSubModule(name, m); replaced {
		log.L().Debug("module replaced", zap.String("name", name))
	}
	return e
}

// MergeModule folds m into the root namespace; m wins on collisions.
func (e *Engine[T]) MergeModule(m *runtime.Module[T]) *Engine[T] {
	e.module.Merge(m)
	return e
}

func (e *Engine[T]) Module() *runtime.Module[T] {
	return e.module
}

// Eval runs an already parsed program. source must be the text program was
// parsed from; errors cut their snippets out of it.
func (e *Engine[T]) Eval(ctx *T, source string, program *ast.Block) (object.Union, error) {
	scope := runtime.NewScope(e.module.Clone())
	return eval(ctx, source, program, scope)
}

func (e *Engine[T]) EvalSource(ctx *T, source string) (object.Union, error) {
	program, err := e.parse(source)
	if err != nil {
		return object.Unit(), err
	}
	return e.Eval(ctx, source, program)
}

func (e *Engine[T]) EvalFile(ctx *T, path string) (object.Union, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return object.Unit(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	log.L().Debug("eval file", zap.String("path", path), zap.Int("bytes", len(source)))
	return e.EvalSource(ctx, string(source))
}

func eval[T any](ctx *T, source string, program *ast.Block, scope *runtime.Scope[T]) (object.Union, error) {
	start := time.Now()
	v, err := runtime.New(ctx, source).Run(program, scope)
	if ce := log.L().Check(zap.DebugLevel, "eval done"); ce != nil {
		ce.Write(zap.Duration("elapsed", time.Since(start)), zap.Bool("failed", err != nil))
	}
	if err != nil {
		return object.Unit(), err
	}
	return v.Cloned(), nil
}
