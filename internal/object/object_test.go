package object

import "testing"

func TestInspect(t *testing.T) {
	routine := &Routine{Name: "gen"}

	tests := []struct {
		value    Object
		expected string
	}{
		{&Unit{}, "()"},
		{&Boolean{Value: true}, "true"},
		{&Boolean{Value: false}, "false"},
		{&Number{Value: 0}, "0"},
		{&Number{Value: 512}, "512"},
		{&Number{Value: 1.5}, "1.5"},
		{&Number{Value: -3}, "-3"},
		{&String{Value: "foo"}, "foo"},
		{routine, "<fn gen>"},
		{&Routine{Name: "add", Params: []string{"a", "b"}}, "<fn add a b>"},
		{NewCoroutine(1, routine), "<coro 1 fn: gen status: fresh>"},
	}

	for _, tt := range tests {
		if got := tt.value.Inspect(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestNumberInspectMinimalDecimal(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{1, "1"},
		{10, "10"},
		{0.25, "0.25"},
		{2.5, "2.5"},
	}
	for _, tt := range tests {
		n := &Number{Value: tt.value}
		if got := n.Inspect(); got != tt.expected {
			t.Errorf("%v: expected %q, got %q", tt.value, tt.expected, got)
		}
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusFresh, "fresh"},
		{StatusSuspended, "suspended"},
		{StatusRunning, "running"},
		{StatusFinished, "finished"},
		{StatusErrored, "errored"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestCoroutineStack(t *testing.T) {
	co := NewCoroutine(1, &Routine{Name: "gen"})

	if v := co.Pop(); v.Type() != UNIT_OBJ {
		t.Fatalf("pop of empty stack should be unit, got %s", v.Type())
	}

	co.Push(&Number{Value: 1})
	co.Push(&Number{Value: 2})

	if v := co.Peek(0).(*Number); v.Value != 2 {
		t.Errorf("peek(0) expected 2, got %v", v.Value)
	}
	if v := co.Peek(1).(*Number); v.Value != 1 {
		t.Errorf("peek(1) expected 1, got %v", v.Value)
	}
	if v := co.Pop().(*Number); v.Value != 2 {
		t.Errorf("pop expected 2, got %v", v.Value)
	}
	if v := co.Pop().(*Number); v.Value != 1 {
		t.Errorf("pop expected 1, got %v", v.Value)
	}
}
