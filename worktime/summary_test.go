package worktime_test

import (
	"testing"
	"time"

	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/worktime"
)

func day(d labor.Date, work, overtime, night, holiday string) worktime.DayTotals {
	return worktime.DayTotals{
		Date:     d,
		Work:     dec(work),
		Overtime: dec(overtime),
		Night:    dec(night),
		Holiday:  dec(holiday),
	}
}

func TestSummarize_FoldsMonth(t *testing.T) {
	days := []worktime.DayTotals{
		day(labor.NewDate(2025, time.June, 2), "8", "0", "0", "0"),
		day(labor.NewDate(2025, time.June, 3), "9.5", "1.5", "1", "0"),
		day(labor.NewDate(2025, time.June, 15), "4", "0", "0", "4"), // Sunday shift
		// Different month, must be skipped
		day(labor.NewDate(2025, time.July, 1), "8", "0", "0", "0"),
	}

	s := worktime.Summarize(2025, time.June, days)

	if s.DaysWorked != 3 {
		t.Errorf("DaysWorked = %d, want 3", s.DaysWorked)
	}
	assertHours(t, s.Work, "21.5")
	assertHours(t, s.Overtime, "1.5")
	assertHours(t, s.Night, "1")
	assertHours(t, s.Holiday, "4")
}

func TestSummarize_EmptyMonth(t *testing.T) {
	s := worktime.Summarize(2025, time.June, nil)

	if s.DaysWorked != 0 {
		t.Errorf("DaysWorked = %d, want 0", s.DaysWorked)
	}
	assertHours(t, s.Work, "0")
	assertHours(t, s.Overtime, "0")
}
