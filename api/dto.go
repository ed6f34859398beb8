/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the HTTP layer, separate from domain types so the
  wire format can evolve independently.

CONVENTIONS:
  - Hour and day figures are JSON strings ("7.5"), never floats: the
    engines compute exactly and the wire format must not round.
  - Dates are "YYYY-MM-DD"; timestamps are RFC 3339.
  - Optional punch times are omitted when absent.

SEE ALSO:
  - handlers.go: Uses these DTOs
*/
package api

import (
	"time"

	"github.com/kosei-hr/labor-engine/attendance"
	"github.com/kosei-hr/labor-engine/calendar"
	"github.com/kosei-hr/labor-engine/compliance"
	"github.com/kosei-hr/labor-engine/leave"
	"github.com/kosei-hr/labor-engine/worktime"
)

// =============================================================================
// REQUEST BODIES
// =============================================================================

// PunchBody carries an optional punch timestamp; when omitted, the
// server clock is used.
type PunchBody struct {
	At string `json:"at,omitempty"` // RFC 3339
}

// SubmitLeaveBody is the payload for a new leave request.
type SubmitLeaveBody struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Reason    string `json:"reason,omitempty"`
}

// ReviewBody is the payload for approving/rejecting a request.
type ReviewBody struct {
	Reviewer string `json:"reviewer"`
	Remarks  string `json:"remarks,omitempty"`
}

// CancelBody identifies who withdrew the request.
type CancelBody struct {
	By string `json:"by"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type RecordDTO struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`

	ClockIn    *string `json:"clock_in,omitempty"`
	ClockOut   *string `json:"clock_out,omitempty"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`

	WorkHours     string `json:"work_hours"`
	OvertimeHours string `json:"overtime_hours"`
	NightHours    string `json:"night_hours"`
	HolidayHours  string `json:"holiday_hours"`

	Remarks string `json:"remarks,omitempty"`
}

type SummaryDTO struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	DaysWorked int    `json:"days_worked"`
	Work       string `json:"work_hours"`
	Overtime   string `json:"overtime_hours"`
	Night      string `json:"night_hours"`
	Holiday    string `json:"holiday_hours"`

	Violations []ViolationDTO `json:"violations"`
}

type ViolationDTO struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Actual   string `json:"actual"`
	Limit    string `json:"limit"`
	Message  string `json:"message"`
}

type BalanceDTO struct {
	EmployeeID string                 `json:"employee_id"`
	Year       int                    `json:"year"`
	Categories map[string]CategoryDTO `json:"categories"`
}

type CategoryDTO struct {
	Granted   string `json:"granted"`
	Used      string `json:"used"`
	Remaining string `json:"remaining"`
}

type RequestDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Type       string `json:"type"`
	DayCount   string `json:"day_count"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`

	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	ReviewRemarks string  `json:"review_remarks,omitempty"`

	CreatedAt string `json:"created_at"`
}

type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRecordDTO(r *attendance.Record) RecordDTO {
	return RecordDTO{
		EmployeeID:    string(r.EmployeeID),
		Date:          r.Date.String(),
		Status:        string(r.Status),
		ClockIn:       timeStr(r.ClockIn),
		ClockOut:      timeStr(r.ClockOut),
		BreakStart:    timeStr(r.BreakStart),
		BreakEnd:      timeStr(r.BreakEnd),
		WorkHours:     r.WorkHours.String(),
		OvertimeHours: r.OvertimeHours.String(),
		NightHours:    r.NightHours.String(),
		HolidayHours:  r.HolidayHours.String(),
		Remarks:       r.Remarks,
	}
}

func toSummaryDTO(s worktime.MonthlySummary, violations []compliance.Violation) SummaryDTO {
	dto := SummaryDTO{
		Year:       s.Year,
		Month:      int(s.Month),
		DaysWorked: s.DaysWorked,
		Work:       s.Work.String(),
		Overtime:   s.Overtime.String(),
		Night:      s.Night.String(),
		Holiday:    s.Holiday.String(),
		Violations: []ViolationDTO{},
	}
	for _, v := range violations {
		dto.Violations = append(dto.Violations, ViolationDTO{
			Rule:     string(v.Rule),
			Severity: string(v.Severity),
			Actual:   v.Actual.String(),
			Limit:    v.Limit.String(),
			Message:  v.Message,
		})
	}
	return dto
}

func toBalanceDTO(b *leave.Balance) BalanceDTO {
	dto := BalanceDTO{
		EmployeeID: string(b.EmployeeID),
		Year:       b.Year,
		Categories: make(map[string]CategoryDTO, len(b.Categories)),
	}
	for typ, cat := range b.Categories {
		dto.Categories[string(typ)] = CategoryDTO{
			Granted:   cat.Granted.String(),
			Used:      cat.Used.String(),
			Remaining: cat.Remaining().String(),
		}
	}
	return dto
}

func toRequestDTO(r *leave.Request) RequestDTO {
	dto := RequestDTO{
		ID:            string(r.ID),
		EmployeeID:    string(r.EmployeeID),
		StartDate:     r.Start.String(),
		EndDate:       r.End.String(),
		Type:          string(r.Type),
		DayCount:      r.DayCount.String(),
		Status:        string(r.Status),
		Reason:        r.Reason,
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    timeStr(r.ReviewedAt),
		ReviewRemarks: r.ReviewRemarks,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
	return dto
}

func toHolidayDTOs(holidays []calendar.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, h := range holidays {
		dtos = append(dtos, HolidayDTO{Date: h.Date.String(), Name: h.Name})
	}
	return dtos
}

func timeStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
