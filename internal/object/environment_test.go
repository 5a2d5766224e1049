package object

import "testing"

func num(v float64) *Number { return &Number{Value: v} }

func TestBindAndGet(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", num(1))

	v, ok := env.Get("x")
	if !ok {
		t.Fatal("expected x to resolve")
	}
	if v.(*Number).Value != 1 {
		t.Fatalf("expected 1, got %v", v.(*Number).Value)
	}

	if _, ok := env.Get("y"); ok {
		t.Fatal("y should not resolve")
	}
}

func TestRebindUpdatesSlotInSameScope(t *testing.T) {
	env := NewEnvironment()
	env.Bind("n", num(0))
	env.Bind("n", num(1))

	v, _ := env.Get("n")
	if v.(*Number).Value != 1 {
		t.Fatalf("expected 1, got %v", v.(*Number).Value)
	}
	if len(env.scopes[0]) != 1 {
		t.Fatalf("rebind should not grow the scope, got %d slots", len(env.scopes[0]))
	}
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", num(1))

	env.Enter()
	env.Bind("x", num(2))

	v, _ := env.Get("x")
	if v.(*Number).Value != 2 {
		t.Fatalf("expected shadowing slot 2, got %v", v.(*Number).Value)
	}

	env.Leave()
	v, _ = env.Get("x")
	if v.(*Number).Value != 1 {
		t.Fatalf("expected outer slot 1 after leave, got %v", v.(*Number).Value)
	}
}

func TestOuterNamesVisibleFromInnerScope(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", num(1))

	env.Enter()
	v, ok := env.Get("x")
	if !ok || v.(*Number).Value != 1 {
		t.Fatal("outer slot should be visible from inner scope")
	}
	env.Leave()
}

func TestLeaveNeverDropsRootScope(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", num(1))

	env.Leave()
	env.Leave()

	if _, ok := env.Get("x"); !ok {
		t.Fatal("root scope must survive leave")
	}
	if env.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", env.Depth())
	}
}
