package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidTransition is returned for any punch attempted from a state
// that does not permit it. Use errors.Is; the concrete
// *InvalidTransitionError carries the details.
var ErrInvalidTransition = errors.New("invalid transition")

// Actions reported by InvalidTransitionError.
const (
	ActionClockIn    = "clock_in"
	ActionStartBreak = "start_break"
	ActionEndBreak   = "end_break"
	ActionClockOut   = "clock_out"
)

// InvalidTransitionError identifies the current state and the attempted
// action. The record is guaranteed unmodified.
type InvalidTransitionError struct {
	State  Status
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s while %s", e.Action, e.State)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
