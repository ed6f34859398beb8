/*
errors.go - Shared sentinel errors

PURPOSE:
  Sentinels used across more than one engine package live here so that
  callers can branch with errors.Is without importing every domain
  package. Domain-specific errors stay in their own packages.

USAGE:
    if errors.Is(err, labor.ErrInvalidInterval) {
        // reject before computing anything
    }

SEE ALSO:
  - worktime: wraps ErrInvalidInterval for malformed punch pairs
  - attendance: wraps ErrInvalidInterval for out-of-order punches
  - leave: wraps ErrInvalidInterval for end-before-start ranges
*/
package labor

import "errors"

var (
	// ErrInvalidInterval is returned when a time range is malformed
	// (end before start, break outside the work interval). Rejected
	// before any computation runs.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")
)
