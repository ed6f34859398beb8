/*
errors.go - Leave business-rule errors

PURPOSE:
  Sentinels for errors.Is plus structured types carrying the details.
  All of these are expected business outcomes, surfaced to the
  requester verbatim and never retried automatically.
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/labor"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a submission for the
	// accruing category asks for more days than remain.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrOverlappingRequest is returned when the range intersects an
	// existing pending or approved request for the same employee.
	ErrOverlappingRequest = errors.New("overlapping leave request")

	// ErrAlreadyReviewed is returned when reviewing or cancelling a
	// request that is no longer pending. The caller may re-fetch and
	// decide; status transitions are one-way.
	ErrAlreadyReviewed = errors.New("request already reviewed")

	// ErrRequestNotFound is returned for an unknown request id.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrUnknownLeaveType is returned for a category outside the enum.
	ErrUnknownLeaveType = errors.New("unknown leave type")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError details a balance shortage.
type InsufficientBalanceError struct {
	EmployeeID labor.EmployeeID
	Year       int
	Type       Type
	Remaining  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance for %s in %d: %s remaining, %s requested",
		e.Type, e.EmployeeID, e.Year, e.Remaining, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// OverlapError identifies the existing request that blocks a submission.
type OverlapError struct {
	EmployeeID labor.EmployeeID
	Existing   RequestID
	Start      labor.Date
	End        labor.Date
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("leave request for %s overlaps existing request %s (%s to %s)",
		e.EmployeeID, e.Existing, e.Start, e.End)
}

func (e *OverlapError) Unwrap() error { return ErrOverlappingRequest }

// AlreadyReviewedError reports the status that blocked a review.
type AlreadyReviewedError struct {
	ID     RequestID
	Status RequestStatus
}

func (e *AlreadyReviewedError) Error() string {
	return fmt.Sprintf("request %s is %s, not pending", e.ID, e.Status)
}

func (e *AlreadyReviewedError) Unwrap() error { return ErrAlreadyReviewed }
