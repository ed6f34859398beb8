/*
Package labor provides the shared primitives for the labor-time engine.

PURPOSE:
  This package contains the value types and helpers every other package
  in the engine builds on: calendar dates at day granularity, exact
  hour/minute arithmetic, and strongly typed identifiers.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A timezone-naive calendar day (used as record keys)
  - Punch timestamps stay plain time.Time; Date is for day-level logic

DESIGN PRINCIPLES:
  1. Precision: Payroll-facing figures use decimal.Decimal, never float64
  2. Day granularity: attendance and leave both key on (employee, Date)
  3. Type Safety: EmployeeID is its own type, not a bare string

SEE ALSO:
  - hours.go: Duration-to-decimal conversion helpers
  - errors.go: Shared sentinel errors
*/
package labor

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Timezone-naive calendar day
// =============================================================================

// Date is a calendar day with no time-of-day component. All dates in the
// engine are local, timezone-naive days; the surrounding service is
// responsible for resolving the employee's timezone before calling in.
type Date struct {
	t time.Time
}

// NewDate constructs a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// At returns a timestamp on this day at the given wall-clock time.
func (d Date) At(hour, minute int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

// Time returns midnight on this day.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID identifies an employee across all engine components.
type EmployeeID string
