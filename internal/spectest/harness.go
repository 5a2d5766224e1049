package spectest

import (
	"strings"
	"testing"

	"coro/internal/compiler"
	"coro/internal/lexer"
	"coro/internal/object"
	"coro/internal/parser"
	"coro/internal/vm"
)

type Options struct {
	Source       string
	MaxSteps     int64
	StrictResume bool
}

type Expectation struct {
	Stdout             string
	CompileErrContains string
	RuntimeErrContains string
}

type Result struct {
	Stdout     string
	CompileErr string
	RuntimeErr string
	Value      object.Object
}

// Run compiles and executes the source end to end, capturing stdout the
// way the CLI would produce it.
func Run(t *testing.T, opts Options) Result {
	t.Helper()

	var res Result
	stdout, err := CaptureStdout(func() {
		res = runSource(opts)
	})
	if err != nil {
		t.Fatalf("failed to capture stdout: %v", err)
	}
	res.Stdout = stdout
	return res
}

func runSource(opts Options) Result {
	res := Result{}

	l := lexer.New(opts.Source)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		res.CompileErr = strings.Join(p.Errors(), "\n")
		return res
	}

	c := compiler.New()
	main, err := c.Compile(program)
	if err != nil {
		res.CompileErr = err.Error()
		return res
	}

	m := vm.New(main)
	m.SetMaxSteps(opts.MaxSteps)
	m.SetStrictResume(opts.StrictResume)
	if err := m.Run(); err != nil {
		res.RuntimeErr = err.Error()
		return res
	}
	res.Value = m.Result()
	return res
}

func Assert(t *testing.T, res Result, exp Expectation) {
	t.Helper()

	got := NormalizeNewlines(res.Stdout)
	want := NormalizeNewlines(exp.Stdout)
	if got != want {
		t.Fatalf("stdout mismatch: expected %q, got %q", want, got)
	}

	if exp.CompileErrContains != "" {
		if res.CompileErr == "" {
			t.Fatalf("expected compile error containing %q, got none", exp.CompileErrContains)
		}
		if !strings.Contains(res.CompileErr, exp.CompileErrContains) {
			t.Fatalf("compile error mismatch: expected to contain %q, got %q", exp.CompileErrContains, res.CompileErr)
		}
	} else if res.CompileErr != "" {
		t.Fatalf("unexpected compile error: %q", res.CompileErr)
	}

	if exp.RuntimeErrContains != "" {
		if res.RuntimeErr == "" {
			t.Fatalf("expected runtime error containing %q, got none", exp.RuntimeErrContains)
		}
		if !strings.Contains(res.RuntimeErr, exp.RuntimeErrContains) {
			t.Fatalf("runtime error mismatch: expected to contain %q, got %q", exp.RuntimeErrContains, res.RuntimeErr)
		}
	} else if res.RuntimeErr != "" {
		t.Fatalf("unexpected runtime error: %q", res.RuntimeErr)
	}
}
