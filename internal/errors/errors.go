package errors

import (
	"fmt"
	"iron/internal/ast"
	"iron/internal/util"
	"strings"
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch         Kind = "type_mismatch"
	KindUndefinedVariable    Kind = "undefined_variable"
	KindUndefinedFunction    Kind = "undefined_function"
	KindFunctionRedefinition Kind = "function_redefinition"
	KindInvalidDerefTarget   Kind = "invalid_deref_target"
	KindUnreachable          Kind = "unreachable"
	KindHostFunction         Kind = "host_function"
	KindDivisionByZero       Kind = "division_by_zero"
	KindRegistration         Kind = "registration"
)

// Targets for errors.Is.
var (
	TypeMismatch         = &Error{Kind: KindTypeMismatch}
	UndefinedVariable    = &Error{Kind: KindUndefinedVariable}
	UndefinedFunction    = &Error{Kind: KindUndefinedFunction}
	FunctionRedefinition = &Error{Kind: KindFunctionRedefinition}
	InvalidDerefTarget   = &Error{Kind: KindInvalidDerefTarget}
	Unreachable          = &Error{Kind: KindUnreachable}
	HostFunction         = &Error{Kind: KindHostFunction}
	DivisionByZero       = &Error{Kind: KindDivisionByZero}
	Registration         = &Error{Kind: KindRegistration}
)

// Error is a structured runtime error. Code holds the offending source
// snippet, or a raw description when no span is available.
type Error struct {
	Kind    Kind
	Code    string
	Span    ast.Span
	Line    int
	Column  int
	Context string // formatted source lines around Span
	Detail  string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')

	if e.Line > 0 {
		fmt.Fprintf(&b, " %d:%d", e.Line, e.Column)
	}

	if e.Code != "" {
		b.WriteString(": ")
		b.WriteString(e.Code)
	}

	if e.Detail != "" {
		b.WriteString(" - ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(kind Kind) *Builder {
	return &Builder{err: Error{Kind: kind}}
}

// At records the span and extracts its snippet and position from source.
func (b *Builder) At(source string, span ast.Span) *Builder {
	b.err.Span = span
	b.err.Code = span.Text(source)
	if source != "" {
		b.err.Line, b.err.Column = util.GetLineAndColumn(source, span.Lo)
		b.err.Context = util.GetContextLines(source, b.err.Line, b.err.Column)
	}
	return b
}

// Code sets the snippet directly.
func (b *Builder) Code(code string) *Builder {
	b.err.Code = code
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	err := b.err
	return &err
}

// At is shorthand for New(kind).At(source, span).Build().
func At(kind Kind, source string, span ast.Span) *Error {
	return New(kind).At(source, span).Build()
}

// FromRaw builds an error carrying a description instead of a source snippet.
func FromRaw(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}
