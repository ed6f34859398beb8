package labor

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EXACT HOUR ARITHMETIC - Everything here feeds payroll
// =============================================================================

var (
	sixty        = decimal.NewFromInt(60)
	secondsPerHr = decimal.NewFromInt(3600)
)

// HoursFromDuration converts a duration to decimal hours by exact division.
// Never goes through float64; payroll figures must not accumulate drift.
func HoursFromDuration(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(secondsPerHr)
}

// MinutesFromDuration converts a duration to decimal minutes.
func MinutesFromDuration(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(sixty)
}

// HoursFromMinutes converts decimal minutes to decimal hours.
func HoursFromMinutes(minutes decimal.Decimal) decimal.Decimal {
	return minutes.Div(sixty)
}
