package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosei-hr/labor-engine/attendance"
	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/leave"
	"github.com/kosei-hr/labor-engine/store/sqlite"
)

// newStore opens a store on a throwaway database file. A :memory: pool
// would hand each pooled connection its own database.
func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "labor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEmployees_SaveAndHireDate(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveEmployee(ctx, sqlite.Employee{
		ID:       "emp-1",
		Name:     "Sato Yuki",
		HireDate: labor.NewDate(2020, time.April, 1),
	}))

	hire, err := st.HireDate(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "2020-04-01", hire.String())

	_, err = st.HireDate(ctx, "emp-ghost")
	assert.ErrorIs(t, err, labor.ErrEmployeeNotFound)
}

func TestRecords_RoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	date := labor.NewDate(2025, time.June, 10)

	rec := attendance.NewRecord("emp-1", date)
	in := date.At(9, 0)
	out := date.At(19, 0)
	bs := date.At(12, 0)
	be := date.At(13, 0)
	rec.ClockIn, rec.ClockOut = &in, &out
	rec.BreakStart, rec.BreakEnd = &bs, &be
	rec.WorkHours = dec("9")
	rec.OvertimeHours = dec("1")
	rec.NightHours = dec("0")
	rec.HolidayHours = dec("0")
	rec.Status = attendance.StatusClockedOut
	rec.Remarks = "client visit"

	require.NoError(t, st.Save(ctx, rec))

	got, err := st.Get(ctx, "emp-1", date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.StatusClockedOut, got.Status)
	assert.True(t, got.WorkHours.Equal(dec("9")))
	assert.True(t, got.OvertimeHours.Equal(dec("1")))
	require.NotNil(t, got.ClockIn)
	assert.True(t, got.ClockIn.Equal(in))
	assert.Equal(t, "client visit", got.Remarks)

	// Upsert on the same day replaces.
	rec.Remarks = "corrected"
	require.NoError(t, st.Save(ctx, rec))
	got, err = st.Get(ctx, "emp-1", date)
	require.NoError(t, err)
	assert.Equal(t, "corrected", got.Remarks)

	missing, err := st.Get(ctx, "emp-1", labor.NewDate(2025, time.June, 11))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecords_ListRangeOrdered(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	for _, day := range []int{12, 10, 11} {
		require.NoError(t, st.Save(ctx, attendance.NewRecord("emp-1", labor.NewDate(2025, time.June, day))))
	}
	require.NoError(t, st.Save(ctx, attendance.NewRecord("emp-1", labor.NewDate(2025, time.July, 1))))

	got, err := st.ListRange(ctx, "emp-1",
		labor.NewDate(2025, time.June, 1), labor.NewDate(2025, time.June, 30))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-06-10", got[0].Date.String())
	assert.Equal(t, "2025-06-12", got[2].Date.String())
}

func TestBalances_RoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	missing, err := st.GetBalance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, st.SaveBalance(ctx, &leave.Balance{
		EmployeeID: "emp-1",
		Year:       2025,
		Categories: map[leave.Type]leave.CategoryBalance{
			leave.TypeAnnual: {Granted: dec("20"), Used: dec("5")},
			leave.TypeSick:   {Granted: dec("5"), Used: dec("0")},
		},
	}))

	got, err := st.GetBalance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Category(leave.TypeAnnual).Used.Equal(dec("5")))
	assert.True(t, got.Remaining(leave.TypeAnnual).Equal(dec("15")))
	assert.True(t, got.Category(leave.TypeSick).Granted.Equal(dec("5")))
}

func TestRequests_RoundTripAndStatusFilter(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	mk := func(id string, status leave.RequestStatus, created time.Time) *leave.Request {
		return &leave.Request{
			ID:         leave.RequestID(id),
			EmployeeID: "emp-1",
			Start:      labor.NewDate(2025, time.June, 12),
			End:        labor.NewDate(2025, time.June, 13),
			Type:       leave.TypeAnnual,
			DayCount:   dec("2"),
			Status:     status,
			CreatedAt:  created,
			UpdatedAt:  created,
		}
	}
	base := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveRequest(ctx, mk("req-1", leave.RequestPending, base)))
	require.NoError(t, st.SaveRequest(ctx, mk("req-2", leave.RequestApproved, base.Add(time.Minute))))
	require.NoError(t, st.SaveRequest(ctx, mk("req-3", leave.RequestCancelled, base.Add(2*time.Minute))))

	open, err := st.ListRequests(ctx, "emp-1", leave.RequestPending, leave.RequestApproved)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, leave.RequestID("req-1"), open[0].ID)
	assert.Equal(t, leave.RequestID("req-2"), open[1].ID)

	all, err := st.ListRequests(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := st.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DayCount.Equal(dec("2")))

	missing, err := st.GetRequest(ctx, "req-nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx leave.Store) error {
		if err := tx.SaveBalance(ctx, &leave.Balance{
			EmployeeID: "emp-1",
			Year:       2025,
			Categories: map[leave.Type]leave.CategoryBalance{
				leave.TypeAnnual: {Granted: dec("10")},
			},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := st.GetBalance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.Nil(t, b, "write inside a failed transaction must not survive")
}
