package limits

import "fmt"

// Budget caps the number of instructions a program may execute. A zero
// limit means unlimited. The cap is process-wide, not per-coroutine, so
// two coroutines resuming each other cannot dodge it.
type Budget struct {
	limit int64
	used  int64
}

func NewBudget(limit int64) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

func MaxStepsMessage(limit int64) string {
	return fmt.Sprintf("max instruction count exceeded (%d)", limit)
}

type MaxStepsError struct {
	Limit int64
}

func (e MaxStepsError) Error() string {
	return MaxStepsMessage(e.Limit)
}

// Step charges one instruction against the budget.
func (b *Budget) Step() error {
	if b == nil || b.limit == 0 {
		return nil
	}
	if b.used >= b.limit {
		return MaxStepsError{Limit: b.limit}
	}
	b.used++
	return nil
}
