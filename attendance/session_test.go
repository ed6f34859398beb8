package attendance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosei-hr/labor-engine/attendance"
	"github.com/kosei-hr/labor-engine/calendar"
	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/worktime"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// 2025-06-10 is an ordinary Tuesday; 2025-06-15 is a Sunday.
var (
	workday = labor.NewDate(2025, time.June, 10)
	sunday  = labor.NewDate(2025, time.June, 15)
)

func newSession(date labor.Date) *attendance.Session {
	calc := worktime.New(worktime.DefaultConfig(), calendar.New(calendar.DefaultConfig()))
	return attendance.NewSession(calc, "emp-1", date)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestSession_FullDay_PopulatesAllFourFigures(t *testing.T) {
	// GIVEN: clock-in 09:00, break 12:00-13:00, clock-out 19:00
	// WHEN: the full punch sequence runs
	// THEN: all four hour figures are populated and the day is terminal

	s := newSession(workday)

	require.NoError(t, s.ClockIn(workday.At(9, 0)))
	require.NoError(t, s.StartBreak(workday.At(12, 0)))
	require.NoError(t, s.EndBreak(workday.At(13, 0)))
	require.NoError(t, s.ClockOut(workday.At(19, 0)))

	rec := s.Record()
	assert.Equal(t, attendance.StatusClockedOut, rec.Status)
	assert.True(t, rec.WorkHours.Equal(dec("9")), "work hours: %s", rec.WorkHours)
	assert.True(t, rec.OvertimeHours.Equal(dec("1")), "overtime hours: %s", rec.OvertimeHours)
	assert.True(t, rec.NightHours.Equal(dec("0")), "night hours: %s", rec.NightHours)
	assert.True(t, rec.HolidayHours.Equal(dec("0")), "holiday hours: %s", rec.HolidayHours)
}

func TestSession_SundayShift_PopulatesHolidayHours(t *testing.T) {
	s := newSession(sunday)

	require.NoError(t, s.ClockIn(sunday.At(9, 0)))
	require.NoError(t, s.ClockOut(sunday.At(14, 0)))

	rec := s.Record()
	assert.True(t, rec.WorkHours.Equal(dec("5")), "work hours: %s", rec.WorkHours)
	assert.True(t, rec.HolidayHours.Equal(dec("5")), "holiday hours: %s", rec.HolidayHours)
}

func TestSession_EveningShift_PopulatesNightHours(t *testing.T) {
	// 18:00 to 23:30: 22:00-23:30 is inside the night window.
	s := newSession(workday)

	require.NoError(t, s.ClockIn(workday.At(18, 0)))
	require.NoError(t, s.ClockOut(workday.At(23, 30)))

	rec := s.Record()
	assert.True(t, rec.NightHours.Equal(dec("1.5")), "night hours: %s", rec.NightHours)
}

// =============================================================================
// GUARDS
// =============================================================================

func TestSession_ClockOutWhileOnBreak_Rejected(t *testing.T) {
	// GIVEN: an employee on break
	// WHEN: they try to clock out
	// THEN: InvalidTransition; the break is NOT silently ended and the
	// record is unmodified

	s := newSession(workday)
	require.NoError(t, s.ClockIn(workday.At(9, 0)))
	require.NoError(t, s.StartBreak(workday.At(12, 0)))

	err := s.ClockOut(workday.At(18, 0))

	assert.ErrorIs(t, err, attendance.ErrInvalidTransition)
	var transErr *attendance.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, attendance.StatusOnBreak, transErr.State)
	assert.Equal(t, attendance.ActionClockOut, transErr.Action)

	rec := s.Record()
	assert.Nil(t, rec.ClockOut, "record must not be mutated by a rejected punch")
	assert.Nil(t, rec.BreakEnd, "break must not be silently ended")
	assert.Equal(t, attendance.StatusOnBreak, s.State())
}

func TestSession_IllegalTransitions(t *testing.T) {
	cases := []struct {
		name  string
		setup func(s *attendance.Session)
		punch func(s *attendance.Session) error
	}{
		{
			"start break before clock-in",
			func(s *attendance.Session) {},
			func(s *attendance.Session) error { return s.StartBreak(workday.At(12, 0)) },
		},
		{
			"clock out before clock-in",
			func(s *attendance.Session) {},
			func(s *attendance.Session) error { return s.ClockOut(workday.At(18, 0)) },
		},
		{
			"end break while not on break",
			func(s *attendance.Session) { _ = s.ClockIn(workday.At(9, 0)) },
			func(s *attendance.Session) error { return s.EndBreak(workday.At(13, 0)) },
		},
		{
			"double clock-in",
			func(s *attendance.Session) { _ = s.ClockIn(workday.At(9, 0)) },
			func(s *attendance.Session) error { return s.ClockIn(workday.At(9, 5)) },
		},
		{
			"start break twice in one day",
			func(s *attendance.Session) {
				_ = s.ClockIn(workday.At(9, 0))
				_ = s.StartBreak(workday.At(12, 0))
				_ = s.EndBreak(workday.At(12, 30))
			},
			func(s *attendance.Session) error { return s.StartBreak(workday.At(15, 0)) },
		},
		{
			"punch after clock-out",
			func(s *attendance.Session) {
				_ = s.ClockIn(workday.At(9, 0))
				_ = s.ClockOut(workday.At(18, 0))
			},
			func(s *attendance.Session) error { return s.ClockIn(workday.At(19, 0)) },
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newSession(workday)
			c.setup(s)
			err := c.punch(s)
			assert.ErrorIs(t, err, attendance.ErrInvalidTransition)
		})
	}
}

// =============================================================================
// RESUME AND LIVE ELAPSED TIME
// =============================================================================

func TestSession_Resume_DerivesStateFromPunches(t *testing.T) {
	calc := worktime.New(worktime.DefaultConfig(), calendar.New(calendar.DefaultConfig()))

	rec := attendance.NewRecord("emp-1", workday)
	in := workday.At(9, 0)
	brk := workday.At(12, 0)
	rec.ClockIn = &in
	rec.BreakStart = &brk

	s := attendance.Resume(calc, rec)
	assert.Equal(t, attendance.StatusOnBreak, s.State())

	require.NoError(t, s.EndBreak(workday.At(13, 0)))
	require.NoError(t, s.ClockOut(workday.At(18, 0)))
	assert.Equal(t, attendance.StatusClockedOut, s.State())
}

func TestSession_WorkedSoFar(t *testing.T) {
	s := newSession(workday)

	assert.Equal(t, time.Duration(0), s.WorkedSoFar(workday.At(10, 0)), "not started yet")

	require.NoError(t, s.ClockIn(workday.At(9, 0)))
	assert.Equal(t, 3*time.Hour, s.WorkedSoFar(workday.At(12, 0)))

	require.NoError(t, s.StartBreak(workday.At(12, 0)))
	// 30 minutes into the break: the in-progress break is excluded.
	assert.Equal(t, 3*time.Hour, s.WorkedSoFar(workday.At(12, 30)))

	require.NoError(t, s.EndBreak(workday.At(13, 0)))
	assert.Equal(t, 5*time.Hour, s.WorkedSoFar(workday.At(15, 0)))

	require.NoError(t, s.ClockOut(workday.At(18, 0)))
	// After clock-out the figure is frozen at the clock-out instant.
	assert.Equal(t, 8*time.Hour, s.WorkedSoFar(workday.At(23, 0)))
}
