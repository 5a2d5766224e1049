package main

import (
	"flag"
	"fmt"
	"os"

	"coro/internal/compiler"
	"coro/internal/config"
	"coro/internal/lexer"
	"coro/internal/parser"
	"coro/internal/repl"
	"coro/internal/runtimeio"
	"coro/internal/vm"
)

const (
	statusOK         = 0
	statusCompileErr = 1
	statusRuntimeErr = 2
	statusGeneralErr = 3
	statusUsageErr   = 4
)

type options struct {
	ast   bool
	dbg   bool
	instr bool
	stack bool

	maxSteps     int64
	strictResume bool
}

func main() {
	astMode := flag.Bool("ast", false, "dump the AST to stderr")
	dbgMode := flag.Bool("dbg", false, "trace coroutine state transitions to stderr")
	instrMode := flag.Bool("instr", false, "dump per-routine disassembly to stderr")
	stackMode := flag.Bool("stack", false, "trace the value stack before each instruction")
	maxSteps := flag.Int64("max-steps", 0, "abort after this many instructions (0 = unlimited)")
	strictResume := flag.Bool("strict-resume", false, "reject extra arguments when resuming a suspended coroutine")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.LoadIfPresent(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[coro] %s\n", err)
		os.Exit(statusGeneralErr)
	}

	opts := options{
		ast:          *astMode || cfg.Debug.AST,
		dbg:          *dbgMode || cfg.Debug.Dbg,
		instr:        *instrMode || cfg.Debug.Instr,
		stack:        *stackMode || cfg.Debug.Stack,
		maxSteps:     cfg.Run.MaxSteps,
		strictResume: *strictResume || cfg.Run.StrictResume,
	}
	if *maxSteps > 0 {
		opts.maxSteps = *maxSteps
	}

	args := flag.Args()
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "usage: coro [flags] [script]")
		os.Exit(statusUsageErr)
	}

	if len(args) == 1 {
		os.Exit(runFile(args[0], opts))
	}

	if runtimeio.IsInteractive() {
		os.Exit(repl.Start(repl.Options{
			MaxSteps:     opts.maxSteps,
			StrictResume: opts.strictResume,
			TraceState:   opts.dbg,
			TraceStack:   opts.stack,
		}))
	}

	src, err := runtimeio.ReadAllStdin()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[coro] %s\n", err)
		os.Exit(statusGeneralErr)
	}
	os.Exit(eval(src, opts))
}

func runFile(path string, opts options) int {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[coro] error while reading file: %s\n", path)
		fmt.Fprintf(os.Stderr, "[coro] %s\n", err)
		return statusGeneralErr
	}
	return eval(string(b), opts)
}

func eval(src string, opts options) int {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			fmt.Fprintf(os.Stderr, "[coro] compile error: %s\n", e)
		}
		return statusCompileErr
	}

	if opts.ast {
		fmt.Fprint(os.Stderr, program.String())
	}

	c := compiler.New()
	prog, err := c.Compile(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[coro] compile error: %s\n", err)
		return statusCompileErr
	}

	if opts.instr {
		compiler.DumpProgram(os.Stderr, prog)
	}

	m := vm.New(prog)
	m.SetMaxSteps(opts.maxSteps)
	m.SetStrictResume(opts.strictResume)
	m.SetTrace(opts.dbg, opts.stack)

	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "[coro] runtime error: %s\n", err)
		return statusRuntimeErr
	}

	if opts.dbg {
		fmt.Fprintf(os.Stderr, "[coro] value: %s\n", m.Result().Inspect())
	}
	return statusOK
}
