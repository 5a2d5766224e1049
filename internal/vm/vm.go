package vm

import (
	"fmt"
	"io"
	"os"

	"coro/internal/code"
	"coro/internal/limits"
	"coro/internal/object"
)

var unitObj = &object.Unit{}
var trueObj = &object.Boolean{Value: true}
var falseObj = &object.Boolean{Value: false}

// VM drives a set of coroutine contexts with a single fetch-decode-
// execute loop. Exactly one context is Running at any instant; the
// transfer opcodes swap which one the loop advances. Control transfer
// is pure data movement between contexts, never host-stack recursion,
// so resume and yield are O(1).
type VM struct {
	root    *object.Coroutine
	current *object.Coroutine
	nextID  int
	result  object.Object

	out      io.Writer
	traceOut io.Writer

	traceState bool
	traceStack bool

	strictResume bool

	budget *limits.Budget
}

// New builds a VM whose root coroutine runs the top-level block.
func New(main *object.Routine) *VM {
	root := object.NewCoroutine(0, main)
	root.Status = object.StatusRunning
	return &VM{
		root:     root,
		current:  root,
		nextID:   1,
		out:      os.Stdout,
		traceOut: os.Stderr,
	}
}

func (m *VM) SetOutput(w io.Writer) {
	if w != nil {
		m.out = w
	}
}

func (m *VM) SetTraceOutput(w io.Writer) {
	if w != nil {
		m.traceOut = w
	}
}

// SetTrace toggles the dbg (state transitions) and stack (value stack
// per instruction) traces.
func (m *VM) SetTrace(state, stack bool) {
	m.traceState = state
	m.traceStack = stack
}

func (m *VM) SetMaxSteps(max int64) {
	if max <= 0 {
		m.budget = nil
		return
	}
	m.budget = limits.NewBudget(max)
}

// SetStrictResume makes a resume of a suspended coroutine with more
// than one argument an arity error instead of ignoring the extras.
func (m *VM) SetStrictResume(strict bool) {
	m.strictResume = strict
}

// Root exposes the root coroutine context.
func (m *VM) Root() *object.Coroutine { return m.root }

// Result is the value of the top-level block once Run has returned.
func (m *VM) Result() object.Object {
	if m.result == nil {
		return unitObj
	}
	return m.result
}

// Rewind points the root coroutine at a new top-level block while
// keeping its environment, so earlier REPL bindings stay live.
func (m *VM) Rewind(main *object.Routine) {
	m.root.Fn = main
	m.root.IP = 0
	m.root.Stack = nil
	m.root.Status = object.StatusRunning
	m.root.Awaiting = false
	m.current = m.root
	m.result = nil
}

func (m *VM) Run() error {
	for {
		co := m.current
		ins := co.Fn.Instructions

		if co.IP >= len(ins) {
			// Fell off the end of the block.
			if m.finish(co) {
				return nil
			}
			continue
		}

		if err := m.budget.Step(); err != nil {
			return m.fail(err)
		}
		if m.traceStack {
			m.debugStack(co)
		}

		op := code.Opcode(ins[co.IP])
		co.IP++

		switch op {
		case code.OpConstant:
			idx := code.ReadUint16(ins[co.IP:])
			co.IP += 2
			co.Push(co.Fn.Constants[idx])

		case code.OpUnit:
			co.Push(unitObj)
		case code.OpTrue:
			co.Push(trueObj)
		case code.OpFalse:
			co.Push(falseObj)
		case code.OpPop:
			co.Pop()

		case code.OpAdd, code.OpSub, code.OpMul, code.OpDiv:
			if err := m.binaryNumOp(co, op); err != nil {
				return m.fail(err)
			}

		case code.OpEqual:
			if err := m.execEqual(co); err != nil {
				return m.fail(err)
			}

		case code.OpLess:
			if err := m.execLess(co); err != nil {
				return m.fail(err)
			}

		case code.OpMinus:
			v, ok := co.Pop().(*object.Number)
			if !ok {
				return m.fail(fmt.Errorf("operand must be a number"))
			}
			co.Push(&object.Number{Value: -v.Value})

		case code.OpBang:
			co.Push(boolObj(isFalsey(co.Pop())))

		case code.OpJump:
			co.IP = int(code.ReadUint16(ins[co.IP:]))

		case code.OpJumpNotTruthy:
			target := int(code.ReadUint16(ins[co.IP:]))
			co.IP += 2
			if isFalsey(co.Pop()) {
				co.IP = target
			}

		case code.OpGetName:
			idx := code.ReadUint16(ins[co.IP:])
			co.IP += 2
			name := co.Fn.Constants[idx].(*object.String).Value
			v, ok := co.Env.Get(name)
			if !ok {
				return m.fail(fmt.Errorf("no binding for name '%s'", name))
			}
			co.Push(v)

		case code.OpBindName:
			idx := code.ReadUint16(ins[co.IP:])
			co.IP += 2
			name := co.Fn.Constants[idx].(*object.String).Value
			co.Env.Bind(name, co.Pop())
			co.Push(unitObj)

		case code.OpEnterScope:
			co.Env.Enter()
		case code.OpLeaveScope:
			co.Env.Leave()

		case code.OpPrint:
			v := co.Pop()
			fmt.Fprintln(m.out, v.Inspect())
			co.Push(unitObj)

		case code.OpCreate:
			idx := code.ReadUint16(ins[co.IP:])
			co.IP += 2
			routine := co.Fn.Constants[idx].(*object.Routine)
			child := object.NewCoroutine(m.nextID, routine)
			m.nextID++
			co.Push(child)
			m.traceCoroutine(child)

		case code.OpResume:
			k := int(ins[co.IP])
			co.IP++
			if err := m.resume(co, k); err != nil {
				return m.fail(err)
			}

		case code.OpYield:
			if err := m.yield(co); err != nil {
				return m.fail(err)
			}

		case code.OpReturn:
			if m.finish(co) {
				return nil
			}

		default:
			return m.fail(fmt.Errorf("unknown opcode %d", op))
		}
	}
}

func (m *VM) fail(err error) error {
	m.current.Status = object.StatusErrored
	m.traceCoroutine(m.current)
	return err
}

/* -------------------- operators -------------------- */

func (m *VM) binaryNumOp(co *object.Coroutine, op code.Opcode) error {
	rhsV := co.Pop()
	lhsV := co.Pop()
	rhs, rok := rhsV.(*object.Number)
	lhs, lok := lhsV.(*object.Number)
	if !rok || !lok {
		return fmt.Errorf("operands must be numbers")
	}

	var v float64
	switch op {
	case code.OpAdd:
		v = lhs.Value + rhs.Value
	case code.OpSub:
		v = lhs.Value - rhs.Value
	case code.OpMul:
		v = lhs.Value * rhs.Value
	case code.OpDiv:
		if rhs.Value == 0 {
			return fmt.Errorf("cannot divide by zero")
		}
		v = lhs.Value / rhs.Value
	}
	co.Push(&object.Number{Value: v})
	return nil
}

// execEqual compares like variants; comparing across variants is an
// error, not false.
func (m *VM) execEqual(co *object.Coroutine) error {
	rhs := co.Pop()
	lhs := co.Pop()
	if lhs.Type() != rhs.Type() {
		return fmt.Errorf("cannot compare values of different types")
	}

	var eq bool
	switch lhs := lhs.(type) {
	case *object.Unit:
		eq = true
	case *object.Boolean:
		eq = lhs.Value == rhs.(*object.Boolean).Value
	case *object.Number:
		eq = lhs.Value == rhs.(*object.Number).Value
	case *object.String:
		eq = lhs.Value == rhs.(*object.String).Value
	case *object.Coroutine:
		eq = lhs == rhs.(*object.Coroutine)
	default:
		return fmt.Errorf("cannot compare values of different types")
	}
	co.Push(boolObj(eq))
	return nil
}

func (m *VM) execLess(co *object.Coroutine) error {
	rhsV := co.Pop()
	lhsV := co.Pop()

	if lhs, ok := lhsV.(*object.Number); ok {
		if rhs, ok := rhsV.(*object.Number); ok {
			co.Push(boolObj(lhs.Value < rhs.Value))
			return nil
		}
	}
	if lhs, ok := lhsV.(*object.String); ok {
		if rhs, ok := rhsV.(*object.String); ok {
			co.Push(boolObj(lhs.Value < rhs.Value))
			return nil
		}
	}
	return fmt.Errorf("operands must be two numbers or two strings")
}

func boolObj(b bool) *object.Boolean {
	if b {
		return trueObj
	}
	return falseObj
}

func isFalsey(v object.Object) bool {
	switch v := v.(type) {
	case *object.Unit:
		return true
	case *object.Boolean:
		return !v.Value
	default:
		return false
	}
}

/* -------------------- traces -------------------- */

func (m *VM) traceCoroutine(co *object.Coroutine) {
	if m.traceState {
		fmt.Fprintln(m.traceOut, co.Inspect())
	}
}

func (m *VM) debugStack(co *object.Coroutine) {
	fmt.Fprintf(m.traceOut, "<co: %d ip: %04d stack: [", co.ID, co.IP)
	for _, v := range co.Stack {
		switch v.(type) {
		case *object.String:
			fmt.Fprint(m.traceOut, " <str>")
		case *object.Routine:
			fmt.Fprint(m.traceOut, " <fn>")
		case *object.Coroutine:
			fmt.Fprint(m.traceOut, " <co>")
		default:
			fmt.Fprintf(m.traceOut, " %s", v.Inspect())
		}
	}
	fmt.Fprintln(m.traceOut, " ]>")
}
