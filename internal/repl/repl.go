// Package repl is the interactive shell. Inputs run on one engine session, so
// bindings and functions carry over between lines.
package repl

import (
	stderrors "errors"
	"fmt"
	"io"
	"iron/internal/engine"
	"iron/internal/errors"
	"iron/internal/log"
	"iron/internal/object"
	"iron/internal/parser"
	"iron/internal/runtime"
	"iron/internal/util"
	"os"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"
)

const continuationPrompt = ".. "

type REPL[T any] struct {
	session *engine.Session[T]
	ctx     *T
	out     io.Writer
}

func New[T any](session *engine.Session[T], ctx *T, out io.Writer) *REPL[T] {
	return &REPL[T]{session: session, ctx: ctx, out: out}
}

// Start reads inputs until EOF or :quit. Ctrl-C discards the pending input.
func (r *REPL[T]) Start(cfg util.REPLConfig) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer saveHistory(ln, cfg.HistoryFile)
	}

	for {
		input, err := r.read(ln, cfg.Prompt)
		if stderrors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if stderrors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("repl: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		if r.Eval(input) {
			return nil
		}
	}
}

// read collects lines until they parse or fail for a reason other than
// running out of input.
func (r *REPL[T]) read(ln *liner.State, prompt string) (string, error) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = continuationPrompt
		}
		line, err := ln.Prompt(p)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		input := b.String()
		if !NeedsMore(input) {
			return input, nil
		}
	}
}

// NeedsMore reports whether input stops in the middle of a construct.
func NeedsMore(input string) bool {
	if strings.HasPrefix(strings.TrimSpace(input), ":") {
		return false
	}
	_, err := parser.Parse(input)
	var perr *parser.Error
	return stderrors.As(err, &perr) && perr.Incomplete
}

// Eval runs one complete input and prints its outcome. It reports true when
// the input asked to leave.
func (r *REPL[T]) Eval(input string) (quit bool) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, ":") {
		return r.command(trimmed)
	}

	v, err := r.session.Eval(r.ctx, input)
	if err != nil {
		log.L().Debug("repl input failed", zap.Error(err))
		r.printError(err)
		return false
	}
	if !v.IsUnit() {
		fmt.Fprintln(r.out, v.Inspect())
	}
	return false
}

func (r *REPL[T]) command(cmd string) bool {
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help":
		io.WriteString(r.out, `:fns   list callable functions
:mods  list modules
:vars  list bindings
:quit  leave
`)
	case ":fns":
		for _, sig := range r.session.Scope().Module().Functions().Signatures() {
			fmt.Fprintln(r.out, sig)
		}
	case ":mods":
		r.printModules()
	case ":vars":
		r.session.Scope().Env().Bindings(func(name string, v object.Variable) {
			fmt.Fprintf(r.out, "%s: %s = %s\n", name, v.Ty(), v)
		})
	default:
		fmt.Fprintf(r.out, "unknown command %s, try :help\n", cmd)
	}
	return false
}

func (r *REPL[T]) printModules() {
	listModules(r.out, "", r.session.Scope().Module())
}

func listModules[T any](out io.Writer, prefix string, m *runtime.Module[T]) {
	for _, name := range m.SubModuleNames() {
		sub, _ := m.SubModule(name)
		fmt.Fprintf(out, "%s%s (%d fns)\n", prefix, name, sub.Functions().Len())
		listModules(out, prefix+name+"::", sub)
	}
}

func (r *REPL[T]) printError(err error) {
	var perr *parser.Error
	if stderrors.As(err, &perr) {
		printParserErrors(r.out, perr.Messages)
		return
	}
	fmt.Fprintln(r.out, err)
	var rtErr *errors.Error
	if stderrors.As(err, &rtErr) && rtErr.Context != "" {
		fmt.Fprintln(r.out, rtErr.Context)
	}
}

func printParserErrors(out io.Writer, messages []string) {
	io.WriteString(out, "parser errors:\n")
	for _, msg := range messages {
		io.WriteString(out, "\t"+msg+"\n")
	}
}

func saveHistory(ln *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		log.L().Warn("could not save history", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()
	_, _ = ln.WriteHistory(f)
}
