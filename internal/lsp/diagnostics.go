package lsp

import (
	"sync"

	"coro/internal/compiler"
	"coro/internal/diag"
	"coro/internal/lexer"
	"coro/internal/parser"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocSet tracks the current text of every open document so that
// didSave, which carries no content, can re-run diagnostics. Handlers
// run concurrently, hence the lock.
type DocSet struct {
	mu    sync.RWMutex
	texts map[string]string // keyed by document URI
}

func NewDocSet() *DocSet {
	return &DocSet{texts: make(map[string]string)}
}

func (d *DocSet) Put(uri, text string) {
	d.mu.Lock()
	d.texts[uri] = text
	d.mu.Unlock()
}

func (d *DocSet) Text(uri string) (string, bool) {
	d.mu.RLock()
	text, ok := d.texts[uri]
	d.mu.RUnlock()
	return text, ok
}

func (d *DocSet) Drop(uri string) {
	d.mu.Lock()
	delete(d.texts, uri)
	d.mu.Unlock()
}

// Analyze parses and compiles src and returns everything a careful
// editor should underline. Compile errors carry no source position yet,
// so they anchor at the top of the file.
func Analyze(src string) []diag.Diagnostic {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()

	ds := p.Diagnostics()
	if len(ds) > 0 {
		return ds
	}

	c := compiler.New()
	if _, err := c.Compile(program); err != nil {
		return []diag.Diagnostic{{
			Message:  err.Error(),
			Severity: diag.SeverityError,
			Range:    diag.Range{Line: 1, Col: 1, Length: 1},
		}}
	}
	return nil
}

// LSP positions are 0-based.
func toLspPosition(line1, col1 int) protocol.Position {
	line := uint32(0)
	char := uint32(0)
	if line1 > 0 {
		line = uint32(line1 - 1)
	}
	if col1 > 0 {
		char = uint32(col1 - 1)
	}
	return protocol.Position{Line: line, Character: char}
}

func ToLspDiagnostics(ds []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		start := toLspPosition(d.Range.Line, d.Range.Col)
		end := start
		if d.Range.Length > 0 {
			end.Character = start.Character + uint32(d.Range.Length)
		} else {
			end.Character = start.Character + 1
		}

		severity := protocol.DiagnosticSeverityError
		switch d.Severity {
		case diag.SeverityWarning:
			severity = protocol.DiagnosticSeverityWarning
		case diag.SeverityInfo:
			severity = protocol.DiagnosticSeverityInformation
		}

		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   ptrString("coro"),
			Message:  d.Message,
		})
	}
	return out
}

func ptrString(s string) *string { return &s }
