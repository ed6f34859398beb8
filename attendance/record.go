/*
Package attendance tracks one employee-day through its punch lifecycle.

PURPOSE:
  An attendance record is created on the first clock-in of the day and
  mutated only through the Session state machine:

    NOT_STARTED -> CLOCKED_IN -> (ON_BREAK <-> CLOCKED_IN) -> CLOCKED_OUT

  Clock-out is terminal: it triggers the work-time calculator to populate
  the day's work/overtime/night/holiday hour figures.

INVARIANTS:
  - clockOut, when present, is strictly after clockIn
  - the break window lies inside [clockIn, clockOut]
  - an illegal transition never mutates the record
  - clocking out while on break is rejected, never silently ends the break

CONCURRENCY:
  The engine assumes a single writer per (employee, date); the caller
  serializes concurrent punches (row lock, per-key mutex). Sessions are
  therefore plain structs with no internal locking.

SEE ALSO:
  - session.go: The state machine
  - worktime: Hour computation at clock-out
*/
package attendance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/worktime"
)

// =============================================================================
// STATUS - Lifecycle state of an employee-day
// =============================================================================

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusClockedIn  Status = "clocked_in"
	StatusOnBreak    Status = "on_break"
	StatusClockedOut Status = "clocked_out"
)

// =============================================================================
// RECORD - One (employee, date) attendance entity
// =============================================================================

// Record is the persisted attendance entity for one employee-day.
// Records are never hard-deleted; pay-period immutability is enforced by
// the payroll collaborator, not here.
type Record struct {
	EmployeeID labor.EmployeeID
	Date       labor.Date

	ClockIn    *time.Time
	ClockOut   *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time

	// Populated at clock-out.
	WorkHours     decimal.Decimal
	OvertimeHours decimal.Decimal
	NightHours    decimal.Decimal
	HolidayHours  decimal.Decimal

	Status  Status
	Remarks string

	// Administrative approval metadata.
	ApprovedBy string
	ApprovedAt *time.Time
}

// NewRecord creates an empty record for the employee-day.
func NewRecord(employeeID labor.EmployeeID, date labor.Date) *Record {
	return &Record{
		EmployeeID:    employeeID,
		Date:          date,
		Status:        StatusNotStarted,
		WorkHours:     decimal.Zero,
		OvertimeHours: decimal.Zero,
		NightHours:    decimal.Zero,
		HolidayHours:  decimal.Zero,
	}
}

// State derives the lifecycle state from the punch fields. The Status
// field mirrors this on save; the punches are authoritative.
func (r *Record) State() Status {
	switch {
	case r.ClockOut != nil:
		return StatusClockedOut
	case r.BreakStart != nil && r.BreakEnd == nil:
		return StatusOnBreak
	case r.ClockIn != nil:
		return StatusClockedIn
	default:
		return StatusNotStarted
	}
}

// Totals returns the day's computed figures for monthly aggregation.
func (r *Record) Totals() worktime.DayTotals {
	return worktime.DayTotals{
		Date:     r.Date,
		Work:     r.WorkHours,
		Overtime: r.OvertimeHours,
		Night:    r.NightHours,
		Holiday:  r.HolidayHours,
	}
}

// =============================================================================
// STORE - Persistence collaborator
// =============================================================================

// RecordStore persists attendance records. Implementations live in
// store/memory and store/sqlite.
type RecordStore interface {
	// Get returns the record for the employee-day, or nil if none exists.
	Get(ctx context.Context, employeeID labor.EmployeeID, date labor.Date) (*Record, error)

	// Save upserts the record keyed on (EmployeeID, Date).
	Save(ctx context.Context, record *Record) error

	// ListRange returns records for the employee in [from, to], ordered
	// by date.
	ListRange(ctx context.Context, employeeID labor.EmployeeID, from, to labor.Date) ([]*Record, error)
}
