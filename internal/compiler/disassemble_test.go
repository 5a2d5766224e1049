package compiler

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpProgram(t *testing.T) {
	main := compile(t, "def gen = yield 1\nlet c = create gen\nresume c")

	var out bytes.Buffer
	DumpProgram(&out, main)
	dump := out.String()

	for _, want := range []string{
		"== instr: gen ==",
		"== instr: main ==",
		"OpYield",
		"OpCreate",
		"OpResume 0",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump should contain %q, got:\n%s", want, dump)
		}
	}

	// The routine is dumped before the block that creates it.
	if strings.Index(dump, "== instr: gen ==") > strings.Index(dump, "== instr: main ==") {
		t.Error("routines should be dumped before main")
	}
}
