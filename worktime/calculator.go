/*
Package worktime turns punch pairs into payroll-grade hour figures.

PURPOSE:
  Given a clock-in/clock-out pair and an optional break window, derive:
  - Billable work hours (with statutory minimum-break substitution)
  - Overtime hours above the standard daily threshold
  - Night hours inside the premium window
  - Holiday hours when the day is a legal or national holiday

MINIMUM-BREAK SUBSTITUTION:
  Labor law mandates a minimum break once the day's work passes a
  threshold. The caller-supplied break only counts if it already
  satisfies the minimum; otherwise the statutory break is charged
  instead. With the default rules:
    net work > 8h and break < 60min  -> break forced to 60min
    net work > 6h and break < 45min  -> break forced to 45min
  The first matching rule wins; rules are ordered longest-first.

NUMERIC DISCIPLINE:
  Every returned figure is a decimal.Decimal built by exact division of
  seconds - these numbers feed payroll and must not drift. float64 never
  appears on an output path.

SEE ALSO:
  - labor/hours.go: Exact duration-to-decimal conversion
  - calendar: HolidaySource implementation
  - summary.go: Monthly aggregation over per-day figures
*/
package worktime

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/labor"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config holds the statutory thresholds. All of these are jurisdiction
// data; none are inlined at call sites.
type Config struct {
	// StandardDailyHours is the overtime threshold (8 by default).
	StandardDailyHours decimal.Decimal

	// BreakRules are minimum-break substitutions, ordered by descending
	// WorkExceeds. The first rule whose threshold the net work duration
	// exceeds, and whose minimum the explicit break fails, is applied.
	BreakRules []BreakRule

	// Night premium window [NightStartHour, NightEndHour), crossing
	// midnight: 22:00-05:00 by default.
	NightStartHour int
	NightEndHour   int
}

// BreakRule is one statutory minimum-break threshold.
type BreakRule struct {
	WorkExceeds time.Duration
	MinBreak    time.Duration
}

// DefaultConfig returns the statutory defaults: 8h standard day,
// 60min break over 8h / 45min break over 6h, night window 22:00-05:00.
func DefaultConfig() Config {
	return Config{
		StandardDailyHours: decimal.NewFromInt(8),
		BreakRules: []BreakRule{
			{WorkExceeds: 8 * time.Hour, MinBreak: 60 * time.Minute},
			{WorkExceeds: 6 * time.Hour, MinBreak: 45 * time.Minute},
		},
		NightStartHour: 22,
		NightEndHour:   5,
	}
}

// HolidaySource answers holiday questions for a single date.
// *calendar.Calendar satisfies this.
type HolidaySource interface {
	IsLegalHoliday(labor.Date) bool
	IsNationalHoliday(labor.Date) bool
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator derives hour figures from raw punches. It is stateless and
// safe for concurrent use.
type Calculator struct {
	cfg      Config
	holidays HolidaySource
}

// New creates a Calculator over the given thresholds and holiday rules.
func New(cfg Config, holidays HolidaySource) *Calculator {
	c := Calculator{cfg: cfg, holidays: holidays}
	c.cfg.BreakRules = append([]BreakRule(nil), cfg.BreakRules...)
	return &c
}

// WorkHours computes billable hours for the interval minus the break,
// applying minimum-break substitution. breakStart/breakEnd may both be
// nil when no break was recorded. The result is clamped at zero.
func (c *Calculator) WorkHours(clockIn, clockOut time.Time, breakStart, breakEnd *time.Time) (decimal.Decimal, error) {
	if err := validateInterval(clockIn, clockOut, breakStart, breakEnd); err != nil {
		return decimal.Zero, err
	}

	var explicitBreak time.Duration
	if breakStart != nil && breakEnd != nil {
		explicitBreak = breakEnd.Sub(*breakStart)
	}
	return c.workHoursWithBreak(clockIn, clockOut, explicitBreak)
}

// workHoursWithBreak is the substitution core, shared with the attendance
// session which tracks break duration directly.
func (c *Calculator) workHoursWithBreak(clockIn, clockOut time.Time, explicitBreak time.Duration) (decimal.Decimal, error) {
	elapsed := clockOut.Sub(clockIn)
	applied := explicitBreak

	net := elapsed - explicitBreak
	for _, rule := range c.cfg.BreakRules {
		if net > rule.WorkExceeds && explicitBreak < rule.MinBreak {
			applied = rule.MinBreak
			break
		}
	}

	hours := labor.HoursFromMinutes(labor.MinutesFromDuration(elapsed - applied))
	if hours.IsNegative() {
		return decimal.Zero, nil
	}
	return hours, nil
}

// OvertimeHours returns the portion of work hours above the standard day.
func (c *Calculator) OvertimeHours(workHours decimal.Decimal) decimal.Decimal {
	overtime := workHours.Sub(c.cfg.StandardDailyHours)
	if overtime.IsNegative() {
		return decimal.Zero
	}
	return overtime
}

// NightHours returns the hours worked inside the night premium window.
//
// The interval is walked in hour-aligned sub-intervals; a sub-interval
// counts iff its starting hour-of-day falls in the window. Partial hours
// at either boundary contribute their exact fraction.
func (c *Calculator) NightHours(clockIn, clockOut time.Time) (decimal.Decimal, error) {
	if !clockOut.After(clockIn) {
		return decimal.Zero, fmt.Errorf("%w: clock-out %s not after clock-in %s",
			labor.ErrInvalidInterval, clockOut.Format(time.RFC3339), clockIn.Format(time.RFC3339))
	}

	var night time.Duration
	for cur := clockIn; cur.Before(clockOut); {
		// Align on wall-clock hours, not absolute ones: Truncate
		// works on absolute time and drifts for zones whose UTC
		// offset is not a whole hour.
		next := time.Date(cur.Year(), cur.Month(), cur.Day(), cur.Hour(), 0, 0, 0, cur.Location()).Add(time.Hour)
		if next.After(clockOut) {
			next = clockOut
		}
		if h := cur.Hour(); h >= c.cfg.NightStartHour || h < c.cfg.NightEndHour {
			night += next.Sub(cur)
		}
		cur = next
	}
	return labor.HoursFromDuration(night), nil
}

// HolidayHours returns WorkHours when the date is a legal or national
// holiday, zero otherwise.
func (c *Calculator) HolidayHours(clockIn, clockOut time.Time, breakStart, breakEnd *time.Time, date labor.Date) (decimal.Decimal, error) {
	if !c.holidays.IsLegalHoliday(date) && !c.holidays.IsNationalHoliday(date) {
		return decimal.Zero, nil
	}
	return c.WorkHours(clockIn, clockOut, breakStart, breakEnd)
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateInterval(clockIn, clockOut time.Time, breakStart, breakEnd *time.Time) error {
	if !clockOut.After(clockIn) {
		return fmt.Errorf("%w: clock-out %s not after clock-in %s",
			labor.ErrInvalidInterval, clockOut.Format(time.RFC3339), clockIn.Format(time.RFC3339))
	}
	if (breakStart == nil) != (breakEnd == nil) {
		return fmt.Errorf("%w: break window must have both start and end", labor.ErrInvalidInterval)
	}
	if breakStart != nil {
		if !breakEnd.After(*breakStart) {
			return fmt.Errorf("%w: break end not after break start", labor.ErrInvalidInterval)
		}
		if breakStart.Before(clockIn) || breakEnd.After(clockOut) {
			return fmt.Errorf("%w: break outside work interval", labor.ErrInvalidInterval)
		}
	}
	return nil
}
