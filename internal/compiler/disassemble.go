package compiler

import (
	"fmt"
	"io"

	"coro/internal/object"
)

// DumpProgram writes a per-routine disassembly: every routine reachable
// from main's constant pool first, then main itself.
func DumpProgram(w io.Writer, main *object.Routine) {
	seen := map[*object.Routine]bool{main: true}
	dumpNested(w, main, seen)
	dumpRoutine(w, main)
}

func dumpNested(w io.Writer, r *object.Routine, seen map[*object.Routine]bool) {
	for _, c := range r.Constants {
		nested, ok := c.(*object.Routine)
		if !ok || seen[nested] {
			continue
		}
		seen[nested] = true
		dumpNested(w, nested, seen)
		dumpRoutine(w, nested)
	}
}

func dumpRoutine(w io.Writer, r *object.Routine) {
	fmt.Fprintf(w, "== instr: %s ==\n", r.Name)
	if len(r.Constants) > 0 {
		fmt.Fprintf(w, "-- constants --\n")
		for i, c := range r.Constants {
			fmt.Fprintf(w, "%04d %s %s\n", i, c.Type(), c.Inspect())
		}
		fmt.Fprintf(w, "-- code --\n")
	}
	fmt.Fprint(w, r.Instructions.String())
}
