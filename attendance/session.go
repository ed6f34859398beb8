/*
session.go - The punch state machine over one attendance record

PURPOSE:
  Applies clock-in, break, and clock-out events to a Record while
  enforcing the transition guards. Each punch carries its own timestamp
  so replayed/corrected punches and tests behave identically to live
  ones.

TRANSITIONS:
  ClockIn     NOT_STARTED -> CLOCKED_IN
  StartBreak  CLOCKED_IN  -> ON_BREAK    (once per day; the record keeps
                                          a single break window)
  EndBreak    ON_BREAK    -> CLOCKED_IN
  ClockOut    CLOCKED_IN  -> CLOCKED_OUT (terminal; computes hour figures)

  Everything else returns *InvalidTransitionError without touching the
  record. In particular, clocking out while ON_BREAK is rejected rather
  than implicitly ending the break.
*/
package attendance

import (
	"fmt"
	"time"

	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/worktime"
)

// =============================================================================
// SESSION
// =============================================================================

// Session drives the punch lifecycle of a single record. Construct with
// NewSession for a fresh day or Resume for a loaded record.
type Session struct {
	calc   *worktime.Calculator
	record *Record
}

// NewSession starts a fresh session for the employee-day.
func NewSession(calc *worktime.Calculator, employeeID labor.EmployeeID, date labor.Date) *Session {
	return &Session{calc: calc, record: NewRecord(employeeID, date)}
}

// Resume wraps an existing record; its state is derived from the punches.
func Resume(calc *worktime.Calculator, record *Record) *Session {
	return &Session{calc: calc, record: record}
}

// Record returns the underlying record.
func (s *Session) Record() *Record { return s.record }

// State returns the current lifecycle state.
func (s *Session) State() Status { return s.record.State() }

// =============================================================================
// TRANSITIONS
// =============================================================================

// ClockIn records the start of the work day.
func (s *Session) ClockIn(at time.Time) error {
	if st := s.State(); st != StatusNotStarted {
		return &InvalidTransitionError{State: st, Action: ActionClockIn}
	}
	s.record.ClockIn = &at
	s.record.Status = StatusClockedIn
	return nil
}

// StartBreak records the start of the day's break. The record holds a
// single break window, so a second break is rejected.
func (s *Session) StartBreak(at time.Time) error {
	st := s.State()
	if st != StatusClockedIn || s.record.BreakEnd != nil {
		return &InvalidTransitionError{State: st, Action: ActionStartBreak}
	}
	if at.Before(*s.record.ClockIn) {
		return fmt.Errorf("%w: break start before clock-in", labor.ErrInvalidInterval)
	}
	s.record.BreakStart = &at
	s.record.Status = StatusOnBreak
	return nil
}

// EndBreak records the end of the break.
func (s *Session) EndBreak(at time.Time) error {
	if st := s.State(); st != StatusOnBreak {
		return &InvalidTransitionError{State: st, Action: ActionEndBreak}
	}
	if !at.After(*s.record.BreakStart) {
		return fmt.Errorf("%w: break end not after break start", labor.ErrInvalidInterval)
	}
	s.record.BreakEnd = &at
	s.record.Status = StatusClockedIn
	return nil
}

// ClockOut ends the day and populates the four hour figures. Rejected
// while on break. Terminal on success.
func (s *Session) ClockOut(at time.Time) error {
	if st := s.State(); st != StatusClockedIn {
		return &InvalidTransitionError{State: st, Action: ActionClockOut}
	}
	clockIn := *s.record.ClockIn
	if !at.After(clockIn) {
		return fmt.Errorf("%w: clock-out not after clock-in", labor.ErrInvalidInterval)
	}

	work, err := s.calc.WorkHours(clockIn, at, s.record.BreakStart, s.record.BreakEnd)
	if err != nil {
		return err
	}
	night, err := s.calc.NightHours(clockIn, at)
	if err != nil {
		return err
	}
	holiday, err := s.calc.HolidayHours(clockIn, at, s.record.BreakStart, s.record.BreakEnd, s.record.Date)
	if err != nil {
		return err
	}

	s.record.ClockOut = &at
	s.record.WorkHours = work
	s.record.OvertimeHours = s.calc.OvertimeHours(work)
	s.record.NightHours = night
	s.record.HolidayHours = holiday
	s.record.Status = StatusClockedOut
	return nil
}

// =============================================================================
// LIVE ELAPSED TIME
// =============================================================================

// WorkedSoFar returns the elapsed working time at the given instant,
// excluding completed and in-progress break time, clamped at zero. Works
// for in-progress sessions without waiting for clock-out.
func (s *Session) WorkedSoFar(now time.Time) time.Duration {
	if s.record.ClockIn == nil {
		return 0
	}
	end := now
	if s.record.ClockOut != nil {
		end = *s.record.ClockOut
	}

	elapsed := end.Sub(*s.record.ClockIn)
	switch {
	case s.record.BreakStart != nil && s.record.BreakEnd != nil:
		elapsed -= s.record.BreakEnd.Sub(*s.record.BreakStart)
	case s.record.BreakStart != nil:
		elapsed -= end.Sub(*s.record.BreakStart)
	}

	if elapsed < 0 {
		return 0
	}
	return elapsed
}
