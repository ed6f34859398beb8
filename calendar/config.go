package calendar

import "time"

// =============================================================================
// CONFIG - Holiday rules as data, not code
// =============================================================================

// Config is the full holiday rule table for one jurisdiction.
type Config struct {
	// RestDay is the statutory weekly rest day.
	RestDay time.Weekday

	Fixed       []FixedHoliday
	NthWeekdays []NthWeekdayHoliday
	Equinoxes   []EquinoxHoliday

	// EquinoxAnchorYear and EquinoxDrift parameterize the shared part of
	// the equinox approximation; per-era bases live on each EquinoxHoliday.
	EquinoxAnchorYear int
	EquinoxDrift      float64
}

// FixedHoliday is a holiday on the same (month, day) every year.
type FixedHoliday struct {
	Month time.Month
	Day   int
	Name  string
}

// NthWeekdayHoliday is a holiday on the nth occurrence of a weekday in a month.
type NthWeekdayHoliday struct {
	Month   time.Month
	Weekday time.Weekday
	N       int
	Name    string
}

// EquinoxHoliday is an equinox-based holiday. The month is fixed (March or
// September); the day of month is approximated per year from era bases.
type EquinoxHoliday struct {
	Month time.Month
	Name  string
	Eras  []EquinoxEra
	// DefaultDay applies to years outside every era.
	DefaultDay int
}

// EquinoxEra is one year range of the piecewise approximation.
type EquinoxEra struct {
	FromYear int
	ToYear   int
	Base     float64
}

// DefaultConfig returns the built-in jurisdiction rule table: weekly rest on
// Sunday, ten fixed national holidays, four nth-Monday holidays, and the two
// equinox holidays with era coefficients covering 1851-2150.
func DefaultConfig() Config {
	vernalEras := []EquinoxEra{
		{FromYear: 1851, ToYear: 1899, Base: 19.8277},
		{FromYear: 1900, ToYear: 1979, Base: 20.8357},
		{FromYear: 1980, ToYear: 2099, Base: 20.8431},
		{FromYear: 2100, ToYear: 2150, Base: 21.8510},
	}
	autumnalEras := []EquinoxEra{
		{FromYear: 1851, ToYear: 1899, Base: 22.2588},
		{FromYear: 1900, ToYear: 1979, Base: 23.2588},
		{FromYear: 1980, ToYear: 2099, Base: 23.2488},
		{FromYear: 2100, ToYear: 2150, Base: 24.2488},
	}

	return Config{
		RestDay: time.Sunday,
		Fixed: []FixedHoliday{
			{Month: time.January, Day: 1, Name: "New Year's Day"},
			{Month: time.February, Day: 11, Name: "National Foundation Day"},
			{Month: time.February, Day: 23, Name: "Emperor's Birthday"},
			{Month: time.April, Day: 29, Name: "Showa Day"},
			{Month: time.May, Day: 3, Name: "Constitution Memorial Day"},
			{Month: time.May, Day: 4, Name: "Greenery Day"},
			{Month: time.May, Day: 5, Name: "Children's Day"},
			{Month: time.August, Day: 11, Name: "Mountain Day"},
			{Month: time.November, Day: 3, Name: "Culture Day"},
			{Month: time.November, Day: 23, Name: "Labor Thanksgiving Day"},
		},
		NthWeekdays: []NthWeekdayHoliday{
			{Month: time.January, Weekday: time.Monday, N: 2, Name: "Coming of Age Day"},
			{Month: time.July, Weekday: time.Monday, N: 3, Name: "Marine Day"},
			{Month: time.September, Weekday: time.Monday, N: 3, Name: "Respect for the Aged Day"},
			{Month: time.October, Weekday: time.Monday, N: 2, Name: "Sports Day"},
		},
		Equinoxes: []EquinoxHoliday{
			{Month: time.March, Name: "Vernal Equinox Day", Eras: vernalEras, DefaultDay: 20},
			{Month: time.September, Name: "Autumnal Equinox Day", Eras: autumnalEras, DefaultDay: 23},
		},
		EquinoxAnchorYear: 1980,
		EquinoxDrift:      0.242194,
	}
}
