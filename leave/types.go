/*
types.go - Leave domain entities

PURPOSE:
  Defines the leave categories, the per-employee-per-year balance, and
  the request entity whose lifecycle the engine drives.

ENTITIES:
  Balance:  one row per (employee, year); per-category granted/used pairs
            with the write-time invariant used <= granted. Created lazily
            from tenure and persisted once initialized or first debited.
  Request:  one row per booking attempt. Status moves one-way from
            PENDING to exactly one of APPROVED/REJECTED/CANCELLED.

SEE ALSO:
  - engine.go: the operations that create and mutate these
  - errors.go: the business-rule errors they can trip
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/labor"
)

// =============================================================================
// LEAVE CATEGORIES
// =============================================================================

// Type is a leave category. Only the accruing category (annual, by
// default) is tenure-driven; the others carry fixed per-year grants.
type Type string

const (
	TypeAnnual  Type = "annual"
	TypeSick    Type = "sick"
	TypeSpecial Type = "special"
)

// Types lists the known categories in display order.
func Types() []Type { return []Type{TypeAnnual, TypeSick, TypeSpecial} }

// Valid reports whether t is a known category.
func (t Type) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypeSpecial:
		return true
	}
	return false
}

// =============================================================================
// BALANCE
// =============================================================================

// CategoryBalance is the granted/used pair for one category.
type CategoryBalance struct {
	Granted decimal.Decimal
	Used    decimal.Decimal
}

// Remaining returns granted minus used.
func (c CategoryBalance) Remaining() decimal.Decimal {
	return c.Granted.Sub(c.Used)
}

// Balance is the per-(employee, year) leave ledger across categories.
type Balance struct {
	EmployeeID labor.EmployeeID
	Year       int
	Categories map[Type]CategoryBalance

	UpdatedAt time.Time
}

// Category returns the pair for the given type, zero-valued if the
// category was never granted.
func (b *Balance) Category(t Type) CategoryBalance {
	return b.Categories[t]
}

// Remaining returns granted minus used for the given type.
func (b *Balance) Remaining(t Type) decimal.Decimal {
	return b.Categories[t].Remaining()
}

// =============================================================================
// REQUEST
// =============================================================================

type RequestID string

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Request is a booking attempt over an inclusive date range. DayCount is
// computed at submission time and never recomputed afterwards, so a
// calendar-rule change cannot retroactively alter an approved debit.
type Request struct {
	ID         RequestID
	EmployeeID labor.EmployeeID

	Start labor.Date
	End   labor.Date
	Type  Type

	DayCount decimal.Decimal
	Status   RequestStatus
	Reason   string

	ReviewedBy    *string
	ReviewedAt    *time.Time
	ReviewRemarks string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overlaps reports whether the request's inclusive range intersects
// [start, end].
func (r *Request) Overlaps(start, end labor.Date) bool {
	return !r.End.Before(start) && !r.Start.After(end)
}
