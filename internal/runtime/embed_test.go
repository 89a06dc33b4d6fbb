package runtime

import (
	stderrors "errors"
	"iron/internal/ast"
	"iron/internal/errors"
	"iron/internal/object"
	"reflect"
	"strings"
	"testing"
)

type testCtx struct {
	lines []string
}

type counter struct {
	n int32
}

func paramsString(params []FnParameter) string {
	return FnSignature{Ident: "fn", Params: params}.String()
}

func TestEmbedDerivesSignature(t *testing.T) {
	counterTy := object.TypeOf[counter]()

	tests := []struct {
		name     string
		fn       any
		expected string
		withCtx  bool
	}{
		{"no params", func() {}, "fn()", false},
		{"primitives", func(int32, float32, bool, string) {}, "fn(i32, f32, bool, str)", false},
		{"unit and type", func(struct{}, object.UnionType) {}, "fn((), type)", false},
		{"union is a wildcard", func(object.Union, int32) {}, "fn(_, i32)", false},
		{"host value", func(counter) {}, "fn(" + counterTy.String() + ")", false},
		{"pointer first", func(*counter, int32) {}, "fn(&" + counterTy.String() + ", i32)", false},
		{"mut anywhere", func(int32, object.Mut[counter]) {}, "fn(i32, &" + counterTy.String() + ")", false},
		{"context", func(*testCtx, string) {}, "fn(str)", true},
		{"context then pointer", func(*testCtx, *counter) {}, "fn(&" + counterTy.String() + ")", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, fn, err := Embed[testCtx](tt.fn)
			if err != nil {
				t.Fatalf("Embed failed: %v", err)
			}
			if got := paramsString(params); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
			_, isCtx := fn.(*EmbeddedCtx[testCtx])
			if isCtx != tt.withCtx {
				t.Errorf("expected context adapter=%v, got %T", tt.withCtx, fn)
			}
		})
	}
}

func TestEmbedRejects(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"not a function", 42},
		{"nil", nil},
		{"variadic", func(...int32) {}},
		{"pointer not first", func(int32, *counter) {}},
		{"pointer after context not first", func(*testCtx, int32, *counter) {}},
		{"pointer to union", func(*object.Union) {}},
		{"interface parameter", func(any) {}},
		{"variable parameter", func(object.Variable) {}},
		{"second result not error", func() (int32, int32) { return 0, 0 }},
		{"three results", func() (int32, int32, error) { return 0, 0, nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Embed[testCtx](tt.fn)
			if err == nil {
				t.Fatalf("expected a registration error")
			}
			if !stderrors.Is(err, errors.Registration) {
				t.Errorf("expected a registration error, got %v", err)
			}
		})
	}
}

func mustEmbed(t *testing.T, fn any) FnType[testCtx] {
	t.Helper()
	_, callable, err := Embed[testCtx](fn)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	return callable
}

func TestEmbeddedCallByValue(t *testing.T) {
	rt := New(&testCtx{}, "")
	add := mustEmbed(t, func(a, b int32) int32 { return a + b })

	v, err := add.Run(rt, nil, ast.Span{}, []object.Variable{
		object.Unspecified(object.Int(2)),
		object.Unspecified(object.Int(40)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := v.Cloned().AsInt(); !ok || got != 42 {
		t.Errorf("expected 42, got %s", v)
	}
	if !v.TypeSpecified {
		t.Errorf("host results should be type specified")
	}
}

func TestEmbeddedCallCopiesArguments(t *testing.T) {
	rt := New(&testCtx{}, "")
	bump := mustEmbed(t, func(c counter) int32 { c.n++; return c.n })

	arg := object.Unspecified(object.New(counter{n: 1}))
	if _, err := bump.Run(rt, nil, ast.Span{}, []object.Variable{arg}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, _ := object.Downcast[counter](arg.Cloned())
	if c.n != 1 {
		t.Errorf("by-value parameter mutated the caller's value: n=%d", c.n)
	}
}

func TestEmbeddedCallByPointer(t *testing.T) {
	rt := New(&testCtx{}, "")
	inc := mustEmbed(t, func(c *counter, by int32) { c.n += by })

	v := object.Unspecified(object.New(counter{n: 1}))
	ref := object.Unspecified(object.Reference(v.GetShared()))
	if _, err := inc.Run(rt, nil, ast.Span{}, []object.Variable{ref, object.Unspecified(object.Int(4))}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, ok := object.Downcast[counter](v.Cloned())
	if !ok || c.n != 5 {
		t.Errorf("expected n=5 through the reference, got %+v", c)
	}
}

func TestEmbeddedCallWithMut(t *testing.T) {
	rt := New(&testCtx{}, "")
	set := mustEmbed(t, func(n int32, m object.Mut[counter]) {
		m.MapMut(func(c *counter) { c.n = n })
	})

	v := object.Unspecified(object.New(counter{}))
	ref := object.Unspecified(object.Reference(v.GetShared()))
	if _, err := set.Run(rt, nil, ast.Span{}, []object.Variable{object.Unspecified(object.Int(9)), ref}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c, _ := object.Downcast[counter](v.Cloned()); c.n != 9 {
		t.Errorf("expected n=9, got %d", c.n)
	}
}

func TestEmbeddedCtxReceivesContext(t *testing.T) {
	ctx := &testCtx{}
	rt := New(ctx, "")
	log := mustEmbed(t, func(c *testCtx, s string) { c.lines = append(c.lines, s) })

	for _, s := range []string{"a", "b"} {
		if _, err := log.Run(rt, nil, ast.Span{}, []object.Variable{object.Unspecified(object.String(s))}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if !reflect.DeepEqual(ctx.lines, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", ctx.lines)
	}
}

func TestEmbeddedResults(t *testing.T) {
	rt := New(&testCtx{}, "")
	cell := object.NewCell(object.Int(1))
	shared := cell.GetShared()

	tests := []struct {
		name     string
		fn       any
		expected string
	}{
		{"no result", func() {}, "()"},
		{"nil error", func() error { return nil }, "()"},
		{"value and nil error", func() (string, error) { return "ok", nil }, "ok"},
		{"union", func() object.Union { return object.Bool(true) }, "true"},
		{"cell", func() object.UnionCell { return shared }, "1"},
		{"host value", func() object.Option { return object.Some(object.Int(3)) }, "some(3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := mustEmbed(t, tt.fn).Run(rt, nil, ast.Span{}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}

	v, _ := mustEmbed(t, func() object.UnionCell { return shared }).Run(rt, nil, ast.Span{}, nil)
	if !v.Cell.SameStorage(shared) {
		t.Errorf("a returned cell should keep aliasing its storage")
	}
}

func TestEmbeddedErrors(t *testing.T) {
	source := "check(x)"
	rt := New(&testCtx{}, source)
	span := ast.Span{Lo: 0, Hi: len(source)}

	t.Run("host error", func(t *testing.T) {
		fn := mustEmbed(t, func(n int32) (int32, error) { return 0, stderrors.New("boom") })
		_, err := fn.Run(rt, nil, span, []object.Variable{object.Unspecified(object.Int(1))})
		if err == nil || err.Kind != errors.KindHostFunction {
			t.Fatalf("expected a host_function error, got %v", err)
		}
		if err.Code != source || !strings.Contains(err.Error(), "boom") {
			t.Errorf("unexpected error rendering %q", err.Error())
		}
	})

	t.Run("structured error passes through", func(t *testing.T) {
		want := errors.FromRaw(errors.KindTypeMismatch, "custom")
		fn := mustEmbed(t, func() error { return want })
		_, err := fn.Run(rt, nil, span, nil)
		if err != want {
			t.Errorf("expected the host's *errors.Error, got %v", err)
		}
	})

	t.Run("argument of the wrong type", func(t *testing.T) {
		fn := mustEmbed(t, func(n int32) {})
		_, err := fn.Run(rt, nil, span, []object.Variable{object.Unspecified(object.String("x"))})
		if err == nil || !stderrors.Is(err, errors.Unreachable) {
			t.Fatalf("expected unreachable, got %v", err)
		}
	})

	t.Run("pointer argument that is not a reference", func(t *testing.T) {
		fn := mustEmbed(t, func(c *counter) {})
		_, err := fn.Run(rt, nil, span, []object.Variable{object.Unspecified(object.New(counter{}))})
		if err == nil || err.Kind != errors.KindUnreachable {
			t.Fatalf("expected unreachable, got %v", err)
		}
	})

	t.Run("cell already borrowed", func(t *testing.T) {
		fn := mustEmbed(t, func(c *counter) { c.n++ })
		v := object.Unspecified(object.New(counter{}))
		ref := object.Unspecified(object.Reference(v.GetShared()))

		var err *errors.Error
		v.Cell.MapMut(func(*object.Union) {
			_, err = fn.Run(rt, nil, span, []object.Variable{ref})
		})
		if err == nil || err.Kind != errors.KindUnreachable {
			t.Fatalf("expected unreachable instead of a deadlock, got %v", err)
		}
	})
}

func TestEmbeddedArityMismatchPanics(t *testing.T) {
	fn := mustEmbed(t, func(a int32) {})
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic on arity mismatch")
		}
	}()
	_, _ = fn.Run(New(&testCtx{}, ""), nil, ast.Span{}, nil)
}
