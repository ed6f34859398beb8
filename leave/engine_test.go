package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosei-hr/labor-engine/calendar"
	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/leave"
	"github.com/kosei-hr/labor-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const veteran = labor.EmployeeID("emp-veteran")

// newEngine returns an engine over a fresh memory store with one seeded
// employee hired 2018-04-01 (tenure 7 in 2025, full 20-day grant).
func newEngine(t *testing.T) (*leave.Engine, *memory.Store) {
	t.Helper()
	st := memory.New()
	st.SeedEmployee(veteran, labor.NewDate(2018, time.April, 1))
	cal := calendar.New(calendar.DefaultConfig())
	return leave.New(leave.DefaultConfig(), st, st, cal), st
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// ENTITLEMENT
// =============================================================================

func TestEntitlementForTenure_Bands(t *testing.T) {
	eng, _ := newEngine(t)
	hire := labor.NewDate(2020, time.April, 1)

	cases := []struct {
		targetYear int
		want       string
	}{
		{2020, "0"},  // hired this year
		{2021, "10"}, // first grant
		{2022, "11"},
		{2023, "12"},
		{2024, "14"},
		{2025, "16"},
		{2026, "18"},
		{2027, "20"}, // cap
		{2040, "20"},
	}
	for _, c := range cases {
		got := eng.EntitlementForTenure(hire, c.targetYear)
		assert.True(t, got.Equal(dec(c.want)),
			"year %d: want %s days, got %s", c.targetYear, c.want, got)
	}
}

func TestEntitlementForTenure_HiredLateInYear(t *testing.T) {
	// Tenure is a calendar-year difference, so a December hire reaches
	// the first band the following January.
	eng, _ := newEngine(t)
	hire := labor.NewDate(2024, time.December, 20)

	assert.True(t, eng.EntitlementForTenure(hire, 2024).Equal(dec("0")))
	assert.True(t, eng.EntitlementForTenure(hire, 2025).Equal(dec("10")))
}

// =============================================================================
// BALANCES
// =============================================================================

func TestGetBalance_SynthesizedFromTenure(t *testing.T) {
	// GIVEN: no stored balance
	// WHEN: the balance is fetched
	// THEN: it is derived from tenure with used = 0, without persisting

	eng, st := newEngine(t)
	ctx := context.Background()

	b, err := eng.GetBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	assert.True(t, b.Category(leave.TypeAnnual).Granted.Equal(dec("20")))
	assert.True(t, b.Category(leave.TypeAnnual).Used.IsZero())
	assert.True(t, b.Remaining(leave.TypeAnnual).Equal(dec("20")))
	assert.True(t, b.Category(leave.TypeSick).Granted.Equal(dec("5")))

	stored, err := st.GetBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	assert.Nil(t, stored, "synthesis must not persist")
}

func TestGetBalance_UnknownEmployee(t *testing.T) {
	eng, _ := newEngine(t)

	_, err := eng.GetBalance(context.Background(), "emp-ghost", 2025)
	assert.ErrorIs(t, err, labor.ErrEmployeeNotFound)
}

func TestInitializeBalance_PersistsOnce(t *testing.T) {
	eng, st := newEngine(t)
	ctx := context.Background()

	first, err := eng.InitializeBalance(ctx, veteran, 2025)
	require.NoError(t, err)

	stored, err := st.GetBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Category(leave.TypeAnnual).Granted.Equal(first.Category(leave.TypeAnnual).Granted))

	// Second call returns the stored row untouched.
	again, err := eng.InitializeBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	assert.True(t, again.Category(leave.TypeAnnual).Used.IsZero())
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitRequest_CountsWeekdaysOnly(t *testing.T) {
	// GIVEN: a Thursday-to-Wednesday range spanning a weekend
	// WHEN: a request is submitted
	// THEN: the day count covers the 5 weekdays, weekend excluded

	eng, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 18),
		leave.TypeAnnual, "family trip")
	require.NoError(t, err)

	assert.Equal(t, leave.RequestPending, req.Status)
	assert.True(t, req.DayCount.Equal(dec("5")), "day count: %s", req.DayCount)
	assert.NotEmpty(t, req.ID)
}

func TestSubmitRequest_HolidayStillCountsAsBusinessDay(t *testing.T) {
	// Marine Day, Monday 2025-07-21, is a national holiday but not a
	// weekend; the weekday count deliberately includes it.
	eng, _ := newEngine(t)

	req, err := eng.SubmitRequest(context.Background(), veteran,
		labor.NewDate(2025, time.July, 21), labor.NewDate(2025, time.July, 22),
		leave.TypeAnnual, "")
	require.NoError(t, err)
	assert.True(t, req.DayCount.Equal(dec("2")), "day count: %s", req.DayCount)
}

func TestSubmitRequest_EndBeforeStart(t *testing.T) {
	eng, _ := newEngine(t)

	_, err := eng.SubmitRequest(context.Background(), veteran,
		labor.NewDate(2025, time.June, 18), labor.NewDate(2025, time.June, 12),
		leave.TypeAnnual, "")
	assert.ErrorIs(t, err, labor.ErrInvalidInterval)
}

func TestSubmitRequest_InsufficientBalance(t *testing.T) {
	// GIVEN: a first-band employee with 10 granted days
	// WHEN: they request 4 calendar weeks (20 weekdays)
	// THEN: InsufficientBalance with the shortfall details

	eng, st := newEngine(t)
	st.SeedEmployee("emp-junior", labor.NewDate(2024, time.June, 1))

	_, err := eng.SubmitRequest(context.Background(), "emp-junior",
		labor.NewDate(2025, time.June, 2), labor.NewDate(2025, time.June, 27),
		leave.TypeAnnual, "sabbatical")

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	var balErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.True(t, balErr.Remaining.Equal(dec("10")))
	assert.True(t, balErr.Requested.Equal(dec("20")))
}

func TestSubmitRequest_NonAccruingTypeSkipsBalanceCheck(t *testing.T) {
	// Sick leave is not the accruing category, so a long range is
	// accepted regardless of the 5-day grant.
	eng, _ := newEngine(t)

	req, err := eng.SubmitRequest(context.Background(), veteran,
		labor.NewDate(2025, time.June, 2), labor.NewDate(2025, time.June, 27),
		leave.TypeSick, "surgery recovery")
	require.NoError(t, err)
	assert.True(t, req.DayCount.Equal(dec("20")))
}

func TestSubmitRequest_OverlapRejected(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	first, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 18),
		leave.TypeAnnual, "")
	require.NoError(t, err)

	cases := []struct {
		name       string
		start, end labor.Date
	}{
		{"identical range", labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 18)},
		{"touching the end day", labor.NewDate(2025, time.June, 18), labor.NewDate(2025, time.June, 20)},
		{"touching the start day", labor.NewDate(2025, time.June, 10), labor.NewDate(2025, time.June, 12)},
		{"enclosing", labor.NewDate(2025, time.June, 1), labor.NewDate(2025, time.June, 30)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := eng.SubmitRequest(ctx, veteran, c.start, c.end, leave.TypeAnnual, "")
			assert.ErrorIs(t, err, leave.ErrOverlappingRequest)
			var ovErr *leave.OverlapError
			require.ErrorAs(t, err, &ovErr)
			assert.Equal(t, first.ID, ovErr.Existing)
		})
	}

	// Disjoint ranges are fine.
	_, err = eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 19), labor.NewDate(2025, time.June, 20),
		leave.TypeAnnual, "")
	assert.NoError(t, err)
}

func TestSubmitRequest_CancelledAndRejectedDoNotBlock(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 13),
		leave.TypeAnnual, "")
	require.NoError(t, err)
	_, err = eng.Cancel(ctx, req.ID, "emp-veteran")
	require.NoError(t, err)

	_, err = eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 13),
		leave.TypeAnnual, "second attempt")
	assert.NoError(t, err, "cancelled requests must not block the range")
}

// =============================================================================
// REVIEW
// =============================================================================

func TestReview_ApproveDebitsBalanceExactlyOnce(t *testing.T) {
	// GIVEN: an approved 5-day annual request
	// WHEN: the review is retried
	// THEN: AlreadyReviewed, and used is incremented exactly once

	eng, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 18),
		leave.TypeAnnual, "")
	require.NoError(t, err)

	approved, err := eng.Review(ctx, req.ID, leave.RequestApproved, "mgr-1", "ok")
	require.NoError(t, err)
	assert.Equal(t, leave.RequestApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "mgr-1", *approved.ReviewedBy)

	b, err := eng.GetBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	assert.True(t, b.Category(leave.TypeAnnual).Used.Equal(dec("5")))
	assert.True(t, b.Remaining(leave.TypeAnnual).Equal(dec("15")))

	// Reviewer retry.
	_, err = eng.Review(ctx, req.ID, leave.RequestApproved, "mgr-1", "ok")
	assert.ErrorIs(t, err, leave.ErrAlreadyReviewed)

	b, err = eng.GetBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	assert.True(t, b.Category(leave.TypeAnnual).Used.Equal(dec("5")), "retry must not double-debit")
}

func TestReview_YearSpanningRequestDebitsStartYear(t *testing.T) {
	// GIVEN: an approved request running 2025-12-29 (Mon) through
	// 2026-01-02 (Fri), 5 weekdays
	// THEN: the whole count is drawn from the 2025 balance; 2026 is
	// untouched

	eng, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.December, 29), labor.NewDate(2026, time.January, 2),
		leave.TypeAnnual, "year end")
	require.NoError(t, err)
	assert.True(t, req.DayCount.Equal(dec("5")))

	_, err = eng.Review(ctx, req.ID, leave.RequestApproved, "mgr-1", "")
	require.NoError(t, err)

	b2025, err := eng.GetBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	assert.True(t, b2025.Category(leave.TypeAnnual).Used.Equal(dec("5")))

	b2026, err := eng.GetBalance(ctx, veteran, 2026)
	require.NoError(t, err)
	assert.True(t, b2026.Category(leave.TypeAnnual).Used.Equal(dec("0")))
}

func TestReview_RejectDoesNotDebit(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 13),
		leave.TypeAnnual, "")
	require.NoError(t, err)

	rejected, err := eng.Review(ctx, req.ID, leave.RequestRejected, "mgr-1", "short-staffed")
	require.NoError(t, err)
	assert.Equal(t, leave.RequestRejected, rejected.Status)
	assert.Equal(t, "short-staffed", rejected.ReviewRemarks)

	b, err := eng.GetBalance(ctx, veteran, 2025)
	require.NoError(t, err)
	assert.True(t, b.Category(leave.TypeAnnual).Used.IsZero())
}

func TestReview_OverdrawnApprovalRollsBack(t *testing.T) {
	// Two pending requests can both pass the submission check; the one
	// approved after the balance is exhausted must fail atomically.
	eng, st := newEngine(t)
	st.SeedEmployee("emp-junior", labor.NewDate(2024, time.June, 1)) // 10 days in 2025
	ctx := context.Background()

	first, err := eng.SubmitRequest(ctx, "emp-junior",
		labor.NewDate(2025, time.June, 2), labor.NewDate(2025, time.June, 13), // 10 weekdays
		leave.TypeAnnual, "")
	require.NoError(t, err)
	second, err := eng.SubmitRequest(ctx, "emp-junior",
		labor.NewDate(2025, time.June, 16), labor.NewDate(2025, time.June, 17), // 2 weekdays
		leave.TypeAnnual, "")
	require.NoError(t, err)

	_, err = eng.Review(ctx, first.ID, leave.RequestApproved, "mgr-1", "")
	require.NoError(t, err)

	_, err = eng.Review(ctx, second.ID, leave.RequestApproved, "mgr-1", "")
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	// The failed approval left the request pending and the balance intact.
	got, err := st.GetRequest(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.RequestPending, got.Status)

	b, err := eng.GetBalance(ctx, "emp-junior", 2025)
	require.NoError(t, err)
	assert.True(t, b.Category(leave.TypeAnnual).Used.Equal(dec("10")))
}

func TestReview_UnknownRequest(t *testing.T) {
	eng, _ := newEngine(t)

	_, err := eng.Review(context.Background(), "no-such-id", leave.RequestApproved, "mgr-1", "")
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

func TestReview_InvalidDecision(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 13),
		leave.TypeAnnual, "")
	require.NoError(t, err)

	_, err = eng.Review(ctx, req.ID, leave.RequestCancelled, "mgr-1", "")
	assert.Error(t, err, "cancel is not a review decision")
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestCancel_OnlyFromPending(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitRequest(ctx, veteran,
		labor.NewDate(2025, time.June, 12), labor.NewDate(2025, time.June, 13),
		leave.TypeAnnual, "")
	require.NoError(t, err)

	cancelled, err := eng.Cancel(ctx, req.ID, "emp-veteran")
	require.NoError(t, err)
	assert.Equal(t, leave.RequestCancelled, cancelled.Status)

	_, err = eng.Cancel(ctx, req.ID, "emp-veteran")
	assert.ErrorIs(t, err, leave.ErrAlreadyReviewed)
}
