package vm

import (
	"bytes"
	"strings"
	"testing"

	"coro/internal/object"
)

func TestCreateIsFresh(t *testing.T) {
	m, _, err := run(t, "def gen = yield 1\nlet c = create gen\nc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	co, ok := m.Result().(*object.Coroutine)
	if !ok {
		t.Fatalf("expected coroutine handle, got %T", m.Result())
	}
	if co.Status != object.StatusFresh {
		t.Fatalf("expected fresh, got %s", co.Status)
	}
	if co.ID != 1 {
		t.Fatalf("expected id 1, got %d", co.ID)
	}
}

func TestCreateAllocatesDistinctContexts(t *testing.T) {
	src := `def gen = yield 1
let a = create gen
let b = create gen
a == b`
	m, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectBool(t, m.Result(), false)
}

func TestResumeRunsToYield(t *testing.T) {
	src := `def gen = { yield 7; 99 }
let c = create gen
print (resume c)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "7\n" {
		t.Fatalf("expected yielded value, got %q", out)
	}
}

func TestResumeDeliversCompletionValue(t *testing.T) {
	src := `def f = 42
let c = create f
print (resume c)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "42\n" {
		t.Fatalf("expected terminal value, got %q", out)
	}
}

func TestResumeDeliversUnitWhenBodyEndsWithBind(t *testing.T) {
	src := `def f = { let x = 1; print x }
let c = create f
print (resume c)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1\n()\n" {
		t.Fatalf("expected unit terminal value, got %q", out)
	}
}

func TestParametersBoundOnFirstResume(t *testing.T) {
	src := `def add a b = yield a + b
let c = create add
print (resume c 2 3)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "5\n" {
		t.Fatalf("expected 5, got %q", out)
	}
}

func TestResumePayloadBecomesYieldValue(t *testing.T) {
	src := `def echo = {
  let v = yield 0;
  while true do {
    let v = yield v * 2;
  } end
}
let c = create echo
resume c
print (resume c 1)
print (resume c 2)
print (resume c 3)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2\n4\n6\n" {
		t.Fatalf("expected doubled payloads, got %q", out)
	}
}

func TestResumeWithoutArgsDeliversUnit(t *testing.T) {
	src := `def probe = {
  let v = yield 0;
  yield v == ();
}
let c = create probe
resume c
print (resume c)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "true\n" {
		t.Fatalf("expected unit payload, got %q", out)
	}
}

func TestExtraResumeArgsIgnoredByDefault(t *testing.T) {
	src := `def echo = {
  let v = yield 0;
  yield v;
}
let c = create echo
resume c
print (resume c 7 8 9)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "7\n" {
		t.Fatalf("expected first argument only, got %q", out)
	}
}

func TestStrictResumeRejectsExtraArgs(t *testing.T) {
	src := `def echo = {
  let v = yield 0;
  yield v;
}
let c = create echo
resume c
resume c 7 8`
	m := New(compileSource(t, src))
	m.SetStrictResume(true)
	var out bytes.Buffer
	m.SetOutput(&out)

	err := m.Run()
	if err == nil {
		t.Fatal("expected arity error, got none")
	}
	want := "expected 1 arguments but got 2 when resuming coroutine"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err)
	}
}

func TestArityMismatchOnFirstResume(t *testing.T) {
	src := `def f x = yield x
let c = create f
resume c`
	err := runError(t, src)
	want := "expected 1 arguments but got 0 when resuming coroutine"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err)
	}

	src = `def g = yield 1
let c = create g
resume c 5`
	err = runError(t, src)
	want = "expected 0 arguments but got 1 when resuming coroutine"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err)
	}
}

func TestResumeFinishedCoroutine(t *testing.T) {
	src := `def once = print 1
let c = create once
resume c
resume c`
	err := runError(t, src)
	if err.Error() != "tried to resume a non-suspended coroutine" {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestResumeSelf(t *testing.T) {
	src := `def loopy me = resume me
let c = create loopy
resume c c`
	err := runError(t, src)
	if err.Error() != "tried to resume a non-suspended coroutine" {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestResumeAwaitingAncestor(t *testing.T) {
	// alpha resumes beta, beta tries to wake alpha, which is suspended
	// inside its own resume and has no yield point to deliver to.
	src := `def beta aco = resume aco
def alpha bco self = resume bco self
let a = create alpha
let b = create beta
resume a b a`
	err := runError(t, src)
	if err.Error() != "tried to resume a non-suspended coroutine" {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestResumeNonCoroutine(t *testing.T) {
	for _, src := range []string{"resume 1", `resume "co"`, "resume ()"} {
		err := runError(t, src)
		if err.Error() != "only coroutines can be resumed" {
			t.Fatalf("%q: unexpected error %q", src, err)
		}
	}
}

func TestYieldOutsideCoroutine(t *testing.T) {
	err := runError(t, "yield 1")
	if err.Error() != "yield outside coroutine" {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestStatusAfterNormalCompletion(t *testing.T) {
	src := `def gen = { yield 1; yield 2 }
let c = create gen
(resume c)
c`
	m, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	co := m.Result().(*object.Coroutine)
	if co.Status != object.StatusSuspended {
		t.Fatalf("callee should be suspended, got %s", co.Status)
	}
	if m.Root().Status != object.StatusFinished {
		t.Fatalf("root should be finished, got %s", m.Root().Status)
	}
	if co.Parent != m.Root() {
		t.Fatal("callee's parent should be the root")
	}
}

func TestStatusAfterRuntimeError(t *testing.T) {
	src := `def bad = 1 / 0
let c = create bad
resume c`
	m := New(compileSource(t, src))
	var out bytes.Buffer
	m.SetOutput(&out)

	err := m.Run()
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if !strings.Contains(err.Error(), "cannot divide by zero") {
		t.Fatalf("unexpected error %q", err)
	}
	if m.Root().Status != object.StatusSuspended {
		t.Fatalf("root was suspended at its resume, got %s", m.Root().Status)
	}
}

func TestNestedCoroutines(t *testing.T) {
	// The root drives outer, outer drives inner; values flow up two
	// resume/yield boundaries.
	src := `def inner = {
  yield 1;
  yield 2;
}
def outer = {
  let c = create inner;
  yield (resume c);
  yield (resume c);
}
let o = create outer
print (resume o)
print (resume o)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1\n2\n" {
		t.Fatalf("expected forwarded values, got %q", out)
	}
}

func TestTwoCoroutinesInterleave(t *testing.T) {
	src := `def gen = {
  let n = 0;
  while n < 3 do {
    yield n;
    let n = n + 1;
  } end
}
let a = create gen
let b = create gen
print (resume a)
print (resume b)
print (resume a)
print (resume b)`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0\n0\n1\n1\n" {
		t.Fatalf("coroutines should not share state, got %q", out)
	}
}

func TestHandleAsResumePayload(t *testing.T) {
	// A handle is an ordinary value: it can be passed into another
	// coroutine, which then drives it.
	src := `def gen = {
  yield 10;
  yield 20;
}
def driver g = {
  print (resume g);
  print (resume g);
}
let producer = create gen
let d = create driver
resume d producer`
	_, out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "10\n20\n" {
		t.Fatalf("expected driven output, got %q", out)
	}
}

func TestDbgTraceMentionsStatus(t *testing.T) {
	src := `def gen = yield 1
let c = create gen
resume c`
	m := New(compileSource(t, src))
	var out, trace bytes.Buffer
	m.SetOutput(&out)
	m.SetTraceOutput(&trace)
	m.SetTrace(true, false)

	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"fn: gen", "status: running", "status: suspended"} {
		if !strings.Contains(trace.String(), want) {
			t.Errorf("trace should contain %q, got %q", want, trace.String())
		}
	}
}
