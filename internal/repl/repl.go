package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"coro/internal/compiler"
	"coro/internal/lexer"
	"coro/internal/object"
	"coro/internal/parser"
	"coro/internal/vm"
)

const (
	prompt1     = "coro> "
	prompt2     = "....> "
	historyFile = ".coro_history"
)

type Options struct {
	MaxSteps     int64
	StrictResume bool
	TraceState   bool
	TraceStack   bool
}

// Start runs the interactive loop. Top-level bindings persist across
// entries: each line is compiled against the same compiler state and
// run by rewinding the same root coroutine, which keeps its
// environment.
func Start(opts Options) int {
	fmt.Println("[coro-lang]")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	state := compiler.NewState()
	m := vm.New(&object.Routine{Name: "main"})
	m.SetMaxSteps(opts.MaxSteps)
	m.SetStrictResume(opts.StrictResume)
	m.SetTrace(opts.TraceState, opts.TraceStack)

	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if strings.TrimSpace(src) == ":quit" {
			return 0
		}

		l := lexer.New(src)
		p := parser.New(l)
		program := p.ParseProgram()
		if len(p.Errors()) > 0 {
			for _, e := range p.Errors() {
				fmt.Fprintf(os.Stderr, "[coro] compile error: %s\n", e)
			}
			continue
		}

		c := compiler.NewWithState(state)
		prog, err := c.Compile(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[coro] compile error: %s\n", err)
			continue
		}

		m.Rewind(prog)
		if err := m.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "[coro] runtime error: %s\n", err)
			continue
		}

		if res := m.Result(); res.Type() != object.UNIT_OBJ {
			fmt.Println(res.Inspect())
		}

		ln.AppendHistory(strings.ReplaceAll(strings.TrimSpace(src), "\n", " "))
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

// readEntry accumulates lines until braces and parens balance, so block
// and group literals can span lines. Ctrl-C abandons the entry; EOF
// ends the session.
func readEntry(ln *liner.State) (string, bool) {
	var buf strings.Builder
	braces, parens := 0, 0

	for {
		prompt := prompt1
		if buf.Len() > 0 {
			prompt = prompt2
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "[coro] %s\n", err)
			return "", false
		}

		buf.WriteString(line)
		buf.WriteString("\n")

		braces, parens = updateBalance(line, braces, parens)
		if braces <= 0 && parens <= 0 {
			return buf.String(), true
		}
	}
}

func updateBalance(line string, braces, parens int) (int, int) {
	inString := false
	for i := 0; i < len(line); i++ {
		ch := line[i]

		if inString {
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '#':
			return braces, parens
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
			}
		case '(':
			parens++
		case ')':
			if parens > 0 {
				parens--
			}
		}
	}
	return braces, parens
}
