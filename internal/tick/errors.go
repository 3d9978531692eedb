package tick

import "errors"

// Sentinel errors distinguishing the orchestrator's fatal failure cases
// from plain wrapped store errors. Lock contention and an already-processed
// tick are not errors at all: RunSimulationTick reports those through
// Result.SkipReason instead.
var (
	ErrMissingBaseline    = errors.New("tick: missing baseline garden state")
	ErrInvariantViolation = errors.New("tick: invariant violation")
)
