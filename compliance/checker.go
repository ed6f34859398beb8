/*
Package compliance evaluates monthly aggregates against statutory ceilings.

PURPOSE:
  The overtime-agreement framework caps monthly overtime at 45h in the
  ordinary case, with hard ceilings at 80h and 100h. This package turns a
  month's aggregate figures into violation signals for HR to act on.

  The checker is a pure function over its inputs. It is called by an
  external aggregation job (or the API's summary endpoint) and owns
  neither aggregation nor persistence.

SEVERITY:
  WARNING  - the ordinary limit is exceeded but within the escalation cap
  CRITICAL - a hard ceiling is breached; payroll sign-off should block
*/
package compliance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VIOLATIONS
// =============================================================================

type Rule string

const (
	// MonthlyOvertimeLimit fires when monthly overtime exceeds the
	// ordinary agreement limit.
	MonthlyOvertimeLimit Rule = "monthly_overtime_limit"

	// MonthlyTotalLimit fires when total monthly hours exceed the hard cap.
	MonthlyTotalLimit Rule = "monthly_total_limit"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Violation is one breached ceiling with the figures that breached it.
type Violation struct {
	Rule     Rule
	Severity Severity
	Actual   decimal.Decimal
	Limit    decimal.Decimal
	Message  string
}

// =============================================================================
// LIMITS
// =============================================================================

// Limits holds the statutory ceilings. Jurisdiction data, not code.
type Limits struct {
	// OvertimeSoft is the ordinary monthly overtime limit (45h).
	OvertimeSoft decimal.Decimal
	// OvertimeCritical escalates an overtime violation to critical (80h).
	OvertimeCritical decimal.Decimal
	// TotalMax is the hard cap on total monthly hours (100h).
	TotalMax decimal.Decimal
}

// DefaultLimits returns the statutory 45h/80h/100h ceilings.
func DefaultLimits() Limits {
	return Limits{
		OvertimeSoft:     decimal.NewFromInt(45),
		OvertimeCritical: decimal.NewFromInt(80),
		TotalMax:         decimal.NewFromInt(100),
	}
}

// =============================================================================
// CHECKER
// =============================================================================

// Checker evaluates monthly figures against configured limits.
type Checker struct {
	limits Limits
}

func New(limits Limits) *Checker {
	return &Checker{limits: limits}
}

// CheckMonthlyViolations returns every ceiling the month breaches.
// Pure; no side effects.
func (c *Checker) CheckMonthlyViolations(monthlyHours, monthlyOvertimeHours decimal.Decimal) []Violation {
	var violations []Violation

	if monthlyOvertimeHours.GreaterThan(c.limits.OvertimeSoft) {
		severity := SeverityWarning
		if monthlyOvertimeHours.GreaterThan(c.limits.OvertimeCritical) {
			severity = SeverityCritical
		}
		violations = append(violations, Violation{
			Rule:     MonthlyOvertimeLimit,
			Severity: severity,
			Actual:   monthlyOvertimeHours,
			Limit:    c.limits.OvertimeSoft,
			Message: fmt.Sprintf("monthly overtime %sh exceeds the %sh limit",
				monthlyOvertimeHours, c.limits.OvertimeSoft),
		})
	}

	if monthlyHours.GreaterThan(c.limits.TotalMax) {
		violations = append(violations, Violation{
			Rule:     MonthlyTotalLimit,
			Severity: SeverityCritical,
			Actual:   monthlyHours,
			Limit:    c.limits.TotalMax,
			Message: fmt.Sprintf("monthly total %sh exceeds the %sh cap",
				monthlyHours, c.limits.TotalMax),
		})
	}

	return violations
}
