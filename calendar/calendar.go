/*
Package calendar determines which days are holidays.

PURPOSE:
  Answers two questions for any calendar day:
  - Is it the statutory weekly rest day? (legal holiday)
  - Is it a government-designated holiday? (national holiday)

  Holiday-premium pay and leave-day counting both hang off these answers,
  so the rules live in one injected, immutable Config rather than spread
  across call sites.

HOLIDAY CATEGORIES:
  Fixed:       Same (month, day) every year, e.g. Jan 1.
  NthWeekday:  "2nd Monday of January" style rules.
  Equinox:     The vernal/autumnal equinox day, approximated by a
               piecewise linear formula whose base coefficient differs
               across historical eras. Years outside every era fall back
               to a fixed default day.

DESIGN:
  The Calendar is pure and side-effect free. It copies its Config at
  construction so a shared table can never be mutated underneath it.
  Jurisdiction changes are data changes: swap the Config, not the code.

SEE ALSO:
  - config.go: Config types and the built-in default rule table
  - worktime: consumes IsLegalHoliday/IsNationalHoliday for holiday hours
  - leave: consumes BusinessDays for leave-day counting
*/
package calendar

import (
	"math"
	"sort"
	"time"

	"github.com/kosei-hr/labor-engine/labor"
)

// =============================================================================
// CALENDAR
// =============================================================================

// Calendar evaluates holiday rules from an immutable configuration.
type Calendar struct {
	cfg Config
}

// New creates a Calendar. The Config is deep-copied; later mutation of the
// caller's slices does not affect the Calendar.
func New(cfg Config) *Calendar {
	c := Calendar{cfg: cfg}
	c.cfg.Fixed = append([]FixedHoliday(nil), cfg.Fixed...)
	c.cfg.NthWeekdays = append([]NthWeekdayHoliday(nil), cfg.NthWeekdays...)
	c.cfg.Equinoxes = append([]EquinoxHoliday(nil), cfg.Equinoxes...)
	return &c
}

// IsLegalHoliday reports whether the date falls on the statutory weekly
// rest day (Sunday in the default jurisdiction).
func (c *Calendar) IsLegalHoliday(d labor.Date) bool {
	return d.Weekday() == c.cfg.RestDay
}

// IsNationalHoliday reports whether the date matches any configured
// fixed-date, nth-weekday, or equinox holiday rule.
func (c *Calendar) IsNationalHoliday(d labor.Date) bool {
	_, ok := c.HolidayName(d)
	return ok
}

// HolidayName returns the name of the national holiday on the date, if any.
func (c *Calendar) HolidayName(d labor.Date) (string, bool) {
	for _, f := range c.cfg.Fixed {
		if d.Month() == f.Month && d.Day() == f.Day {
			return f.Name, true
		}
	}
	for _, n := range c.cfg.NthWeekdays {
		if d.Month() == n.Month && d.Day() == nthWeekdayOfMonth(d.Year(), n.Month, n.Weekday, n.N) {
			return n.Name, true
		}
	}
	for _, e := range c.cfg.Equinoxes {
		if d.Month() == e.Month && d.Day() == c.equinoxDay(e, d.Year()) {
			return e.Name, true
		}
	}
	return "", false
}

// HolidaysInYear enumerates all national holidays in a year, sorted by date.
func (c *Calendar) HolidaysInYear(year int) []Holiday {
	var out []Holiday
	for _, f := range c.cfg.Fixed {
		out = append(out, Holiday{Date: labor.NewDate(year, f.Month, f.Day), Name: f.Name})
	}
	for _, n := range c.cfg.NthWeekdays {
		day := nthWeekdayOfMonth(year, n.Month, n.Weekday, n.N)
		out = append(out, Holiday{Date: labor.NewDate(year, n.Month, day), Name: n.Name})
	}
	for _, e := range c.cfg.Equinoxes {
		out = append(out, Holiday{Date: labor.NewDate(year, e.Month, c.equinoxDay(e, year)), Name: e.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// BusinessDays counts weekdays (Mon-Fri) in [from, to] inclusive.
//
// National holidays are NOT excluded: a national holiday inside a leave
// range still consumes a leave day. Holiday-premium pay treats the same
// day specially. Both behaviors are intentional and must change together
// if the jurisdiction decides otherwise.
func (c *Calendar) BusinessDays(from, to labor.Date) int {
	count := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if !d.IsWeekend() {
			count++
		}
	}
	return count
}

// Holiday is a resolved national holiday occurrence.
type Holiday struct {
	Date labor.Date
	Name string
}

// =============================================================================
// RULE EVALUATION
// =============================================================================

// nthWeekdayOfMonth returns the day-of-month of the nth occurrence of the
// weekday in the given month.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	offset := (int(weekday) - int(first) + 7) % 7
	return 1 + offset + 7*(n-1)
}

// equinoxDay computes the approximated equinox day-of-month for the year.
// Within a configured era the day is
//
//	floor(base + drift*(year-anchor) - floor((year-anchor)/4))
//
// which tracks the slow drift of the astronomical equinox plus the
// four-year leap correction. Outside every era the fixed default applies.
func (c *Calendar) equinoxDay(e EquinoxHoliday, year int) int {
	for _, era := range e.Eras {
		if year >= era.FromYear && year <= era.ToYear {
			y := float64(year - c.cfg.EquinoxAnchorYear)
			return int(math.Floor(era.Base + c.cfg.EquinoxDrift*y - math.Floor(y/4)))
		}
	}
	return e.DefaultDay
}
