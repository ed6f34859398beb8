/*
summary.go - Monthly aggregation over per-day hour figures

PURPOSE:
  Folds an ordered sequence of per-day figures into a monthly aggregate.
  The fold is pure: it allocates a fresh MonthlySummary and never mutates
  shared state, so concurrent aggregation jobs need no locking.

  The compliance checker consumes the aggregate; the engine does not own
  scheduling of the aggregation itself.
*/
package worktime

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/labor"
)

// =============================================================================
// PER-DAY FIGURES
// =============================================================================

// DayTotals is one day's computed hour figures, as produced at clock-out.
type DayTotals struct {
	Date     labor.Date
	Work     decimal.Decimal
	Overtime decimal.Decimal
	Night    decimal.Decimal
	Holiday  decimal.Decimal
}

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

// MonthlySummary aggregates one employee-month.
type MonthlySummary struct {
	Year  int
	Month time.Month

	DaysWorked int
	Work       decimal.Decimal
	Overtime   decimal.Decimal
	Night      decimal.Decimal
	Holiday    decimal.Decimal
}

// Summarize folds per-day figures into the aggregate for (year, month).
// Days outside the month are skipped; a day counts as worked when any
// work hours were recorded.
func Summarize(year int, month time.Month, days []DayTotals) MonthlySummary {
	s := MonthlySummary{
		Year:     year,
		Month:    month,
		Work:     decimal.Zero,
		Overtime: decimal.Zero,
		Night:    decimal.Zero,
		Holiday:  decimal.Zero,
	}
	for _, d := range days {
		if d.Date.Year() != year || d.Date.Month() != month {
			continue
		}
		if d.Work.IsPositive() {
			s.DaysWorked++
		}
		s.Work = s.Work.Add(d.Work)
		s.Overtime = s.Overtime.Add(d.Overtime)
		s.Night = s.Night.Add(d.Night)
		s.Holiday = s.Holiday.Add(d.Holiday)
	}
	return s
}
