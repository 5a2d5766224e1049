package main

import (
	"os"
	"path/filepath"
	"testing"

	"coro/internal/spectest"
)

func evalQuiet(t *testing.T, src string, opts options) (int, string) {
	t.Helper()
	var status int
	stdout, err := spectest.CaptureStdout(func() {
		status = eval(src, opts)
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	return status, stdout
}

func TestEvalStatusOK(t *testing.T) {
	status, stdout := evalQuiet(t, "print 1 + 1", options{})
	if status != statusOK {
		t.Fatalf("expected status %d, got %d", statusOK, status)
	}
	if stdout != "2\n" {
		t.Fatalf("expected output, got %q", stdout)
	}
}

func TestEvalStatusCompileErr(t *testing.T) {
	for _, src := range []string{"let = 1", "print missing", "create ghost"} {
		status, _ := evalQuiet(t, src, options{})
		if status != statusCompileErr {
			t.Fatalf("%q: expected status %d, got %d", src, statusCompileErr, status)
		}
	}
}

func TestEvalStatusRuntimeErr(t *testing.T) {
	for _, src := range []string{"yield 1", "1 / 0", "resume 1"} {
		status, _ := evalQuiet(t, src, options{})
		if status != statusRuntimeErr {
			t.Fatalf("%q: expected status %d, got %d", src, statusRuntimeErr, status)
		}
	}
}

func TestEvalMaxSteps(t *testing.T) {
	status, _ := evalQuiet(t, "while true do 1 end", options{maxSteps: 100})
	if status != statusRuntimeErr {
		t.Fatalf("expected status %d, got %d", statusRuntimeErr, status)
	}
}

func TestRunFileMissing(t *testing.T) {
	if status := runFile(filepath.Join(t.TempDir(), "nope.co"), options{}); status != statusGeneralErr {
		t.Fatalf("expected status %d, got %d", statusGeneralErr, status)
	}
}

func TestRunExampleFiles(t *testing.T) {
	tests := []struct {
		name   string
		status int
		stdout string
	}{
		{"nat.co", statusOK, "0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n"},
		{"fib.co", statusOK, "0\n1\n1\n2\n3\n5\n8\n13\n21\n34\n"},
		{"prod_cons.co", statusOK, "0\n2\n4\n8\n16\n32\n64\n128\n256\n512\n"},
		{"exited.co", statusRuntimeErr, "1\n"},
	}

	for _, tt := range tests {
		b, err := os.ReadFile(filepath.Join("..", "..", "examples", tt.name))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}

		status, stdout := evalQuiet(t, string(b), options{})
		if status != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.status, status)
		}
		if stdout != tt.stdout {
			t.Errorf("%s: expected stdout %q, got %q", tt.name, tt.stdout, stdout)
		}
	}
}
