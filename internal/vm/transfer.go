package vm

import (
	"fmt"

	"coro/internal/object"
)

// resume transfers control from caller into the coroutine whose handle
// sits under the k argument values on caller's stack. On a first
// resume the arguments must match the routine's arity exactly and are
// bound to its parameter slots; on a later resume the first argument
// (unit if none) becomes the value of the callee's pending yield.
func (m *VM) resume(caller *object.Coroutine, k int) error {
	args := make([]object.Object, k)
	for i := k - 1; i >= 0; i-- {
		args[i] = caller.Pop()
	}

	target, ok := caller.Pop().(*object.Coroutine)
	if !ok {
		return fmt.Errorf("only coroutines can be resumed")
	}

	switch target.Status {
	case object.StatusFresh:
		arity := target.Fn.Arity()
		if len(args) != arity {
			return fmt.Errorf("expected %d arguments but got %d when resuming coroutine", arity, len(args))
		}
		for i, param := range target.Fn.Params {
			target.Env.Bind(param, args[i])
		}

	case object.StatusSuspended:
		if target.Awaiting {
			// Suspended inside its own resume: it has no yield point to
			// deliver a payload to, and waking it would close a cycle
			// in the parent chain.
			return fmt.Errorf("tried to resume a non-suspended coroutine")
		}
		if m.strictResume && len(args) > 1 {
			return fmt.Errorf("expected 1 arguments but got %d when resuming coroutine", len(args))
		}
		var payload object.Object = unitObj
		if len(args) >= 1 {
			payload = args[0]
		}
		target.Push(payload)

	default: // Running, Finished, Errored
		return fmt.Errorf("tried to resume a non-suspended coroutine")
	}

	target.Parent = caller
	caller.Status = object.StatusSuspended
	caller.Awaiting = true
	target.Status = object.StatusRunning
	m.current = target
	m.traceCoroutine(target)
	return nil
}

// yield suspends the current coroutine, publishing the popped value to
// its parent as the result of the resume that entered it.
func (m *VM) yield(co *object.Coroutine) error {
	v := co.Pop()
	if co.Parent == nil {
		return fmt.Errorf("yield outside coroutine")
	}
	co.Status = object.StatusSuspended
	m.traceCoroutine(co)
	m.transferToParent(co, v)
	return nil
}

// finish marks co Finished and delivers its terminal value (the value
// of the final command, or unit) to its parent. It reports true when
// co is the root, i.e. the program is done.
func (m *VM) finish(co *object.Coroutine) bool {
	v := co.Pop()
	co.Status = object.StatusFinished
	m.traceCoroutine(co)
	if co.Parent == nil {
		m.result = v
		return true
	}
	m.transferToParent(co, v)
	return false
}

func (m *VM) transferToParent(co *object.Coroutine, v object.Object) {
	parent := co.Parent
	parent.Status = object.StatusRunning
	parent.Awaiting = false
	parent.Push(v)
	m.current = parent
	m.traceCoroutine(parent)
}
