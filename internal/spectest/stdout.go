package spectest

import (
	"io"
	"os"
	"strings"
	"sync"
)

// os.Stdout is process-wide state, so captures must not overlap even
// when tests in one package run in parallel.
var stdoutMu sync.Mutex

// CaptureStdout runs fn with os.Stdout pointed at a pipe and returns
// whatever the run printed. The pipe is drained concurrently so a
// program that prints more than the pipe buffer holds cannot wedge.
func CaptureStdout(run func()) (string, error) {
	stdoutMu.Lock()
	defer stdoutMu.Unlock()

	saved := os.Stdout
	defer func() { os.Stdout = saved }()

	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	drained := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		drained <- b
	}()

	os.Stdout = w
	run()
	os.Stdout = saved

	if err := w.Close(); err != nil {
		return "", err
	}
	out := <-drained
	_ = r.Close()

	return string(out), nil
}

func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
