package runtimeio

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin is a terminal. The CLI uses it to
// decide between the REPL and evaluating piped input.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadAllStdin drains stdin, for `coro` invoked with piped input and no
// script argument.
func ReadAllStdin() (string, error) {
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
