package axon

import (
	"fmt"
	"runtime/debug"
)

// invariant panics with an InvariantError when condition is false.
//
// This is the runtime-fault channel required by spec.md §7: invariant
// violations are internal bugs, not recoverable user errors, so they are
// never returned as an error value. They panic with a captured stack so
// the process aborts with a clear message instead of continuing with
// corrupted state.
//
// Adapted from the teacher's pkg/core/failfast.If, narrowed to the
// specific invariants this runtime checks (pin/unpin balance, at-most-one
// mailbox scheduling, slot generation mismatches) and wired to
// InvariantError instead of a bare formatted error.
func invariant(condition bool, name string, detailFormat string, args ...interface{}) {
	if condition {
		return
	}
	err := &InvariantError{
		Invariant: name,
		Detail:    fmt.Sprintf(detailFormat, args...),
	}
	panic(fmt.Errorf("%w\n%s", err, debug.Stack()))
}

// notNil panics via invariant when ptr is nil. Used at construction sites
// where a nil value would otherwise corrupt later bookkeeping silently.
func notNil(ptr interface{}, name string) {
	invariant(ptr != nil, "nil-argument", "%s must not be nil", name)
}
