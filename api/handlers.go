/*
handlers.go - HTTP API handlers for the labor-time engine

PURPOSE:
  Exposes the attendance, work-time, leave, and compliance engines via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Attendance:
    POST   /api/attendance/{employeeId}/clock-in     Punch in
    POST   /api/attendance/{employeeId}/break/start  Start break
    POST   /api/attendance/{employeeId}/break/end    End break
    POST   /api/attendance/{employeeId}/clock-out    Punch out
    GET    /api/attendance/{employeeId}/records      Records in range
    GET    /api/attendance/{employeeId}/summary      Monthly summary + violations

  Leave:
    GET    /api/leave/{employeeId}/balance           Balance for a year
    GET    /api/leave/{employeeId}/requests          Request list
    POST   /api/leave/{employeeId}/requests          Submit request
    POST   /api/leave/requests/{id}/approve          Approve
    POST   /api/leave/requests/{id}/reject           Reject
    POST   /api/leave/requests/{id}/cancel           Cancel

  Calendar:
    GET    /api/holidays                             Holidays for a year

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input, invalid intervals
  - 404: Unknown employee or request
  - 409: Illegal punch transition, already-reviewed request
  - 422: Business-rule rejections (balance, overlap)
  - 500: Internal errors

CONCURRENCY:
  The engines assume one writer at a time per employee-day and per
  request; punches and reviews are serialized here with a per-key lock.

SECURITY NOTE:
  No authentication middleware. Identity and tenant scoping are owned
  by the surrounding platform gateway.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kosei-hr/labor-engine/attendance"
	"github.com/kosei-hr/labor-engine/calendar"
	"github.com/kosei-hr/labor-engine/compliance"
	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/leave"
	"github.com/kosei-hr/labor-engine/worktime"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Records  attendance.RecordStore
	Leave    *leave.Engine
	Calc     *worktime.Calculator
	Calendar *calendar.Calendar
	Checker  *compliance.Checker

	// now is the punch clock; replaced in tests.
	Now func() time.Time

	locks keyedLocks
}

// NewHandler creates a new handler over the given collaborators.
func NewHandler(records attendance.RecordStore, lv *leave.Engine, calc *worktime.Calculator, cal *calendar.Calendar, checker *compliance.Checker) *Handler {
	return &Handler{
		Records:  records,
		Leave:    lv,
		Calc:     calc,
		Calendar: cal,
		Checker:  checker,
		Now:      time.Now,
	}
}

// keyedLocks serializes writers per employee key. The engines assume a
// single-writer-at-a-time contract; this is where it is honored.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// =============================================================================
// ATTENDANCE - PUNCHES
// =============================================================================

// ClockIn punches the start of the day.
// POST /api/attendance/{employeeId}/clock-in
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, func(s *attendance.Session, at time.Time) error {
		return s.ClockIn(at)
	})
}

// StartBreak punches the start of the break.
// POST /api/attendance/{employeeId}/break/start
func (h *Handler) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, func(s *attendance.Session, at time.Time) error {
		return s.StartBreak(at)
	})
}

// EndBreak punches the end of the break.
// POST /api/attendance/{employeeId}/break/end
func (h *Handler) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, func(s *attendance.Session, at time.Time) error {
		return s.EndBreak(at)
	})
}

// ClockOut punches the end of the day and computes the hour figures.
// POST /api/attendance/{employeeId}/clock-out
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, func(s *attendance.Session, at time.Time) error {
		return s.ClockOut(at)
	})
}

// punch loads the employee-day record, applies one transition, and
// saves. The punch timestamp defaults to the server clock; its date
// selects the record.
func (h *Handler) punch(w http.ResponseWriter, r *http.Request, apply func(*attendance.Session, time.Time) error) {
	ctx := r.Context()
	employeeID := labor.EmployeeID(chi.URLParam(r, "employeeId"))
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "Missing employee id", nil)
		return
	}

	var body PunchBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	at := h.Now()
	if body.At != "" {
		parsed, err := time.Parse(time.RFC3339, body.At)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid punch time (use RFC 3339)", err)
			return
		}
		at = parsed
	}
	date := labor.DateOf(at)

	unlock := h.locks.lock(string(employeeID) + "/" + date.String())
	defer unlock()

	record, err := h.Records.Get(ctx, employeeID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load record", err)
		return
	}
	var session *attendance.Session
	if record == nil {
		session = attendance.NewSession(h.Calc, employeeID, date)
	} else {
		session = attendance.Resume(h.Calc, record)
	}

	if err := apply(session, at); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Records.Save(ctx, session.Record()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(session.Record()))
}

// =============================================================================
// ATTENDANCE - QUERIES
// =============================================================================

// ListRecords returns the employee's records in a date range.
// GET /api/attendance/{employeeId}/records?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := labor.EmployeeID(chi.URLParam(r, "employeeId"))

	from, err := labor.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := labor.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	records, err := h.Records.ListRange(ctx, employeeID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}
	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MonthlySummary aggregates the employee's month and runs the
// compliance checks over the totals.
// GET /api/attendance/{employeeId}/summary?year=2025&month=6
func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := labor.EmployeeID(chi.URLParam(r, "employeeId"))

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	month := time.Month(monthNum)

	first := labor.NewDate(year, month, 1)
	last := first.AddDays(daysIn(year, month) - 1)
	records, err := h.Records.ListRange(ctx, employeeID, first, last)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	days := make([]worktime.DayTotals, 0, len(records))
	for _, rec := range records {
		days = append(days, rec.Totals())
	}
	summary := worktime.Summarize(year, month, days)
	violations := h.Checker.CheckMonthlyViolations(summary.Work, summary.Overtime)

	writeJSON(w, http.StatusOK, toSummaryDTO(summary, violations))
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// LEAVE
// =============================================================================

// GetBalance returns the leave balance for a year (defaults to the
// current year).
// GET /api/leave/{employeeId}/balance?year=2025
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := labor.EmployeeID(chi.URLParam(r, "employeeId"))

	year := h.Now().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	balance, err := h.Leave.GetBalance(ctx, employeeID, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// ListLeaveRequests returns the employee's requests, optionally
// filtered by status.
// GET /api/leave/{employeeId}/requests?status=pending
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := labor.EmployeeID(chi.URLParam(r, "employeeId"))

	var statuses []leave.RequestStatus
	if q := r.URL.Query().Get("status"); q != "" {
		statuses = append(statuses, leave.RequestStatus(q))
	}

	requests, err := h.Leave.ListRequests(ctx, employeeID, statuses...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	dtos := make([]RequestDTO, 0, len(requests))
	for _, req := range requests {
		dtos = append(dtos, toRequestDTO(req))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLeaveRequest creates a pending leave request.
// POST /api/leave/{employeeId}/requests
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := labor.EmployeeID(chi.URLParam(r, "employeeId"))

	var body SubmitLeaveBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := labor.ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := labor.ParseDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	unlock := h.locks.lock(string(employeeID) + "/leave")
	defer unlock()

	req, err := h.Leave.SubmitRequest(ctx, employeeID, start, end, leave.Type(body.Type), body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// ApproveRequest approves a pending request and debits the balance.
// POST /api/leave/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, leave.RequestApproved)
}

// RejectRequest rejects a pending request.
// POST /api/leave/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, leave.RequestRejected)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, decision leave.RequestStatus) {
	ctx := r.Context()
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body ReviewBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Reviewer == "" {
		writeError(w, http.StatusBadRequest, "Missing reviewer", nil)
		return
	}

	unlock := h.locks.lock("review/" + string(id))
	defer unlock()

	req, err := h.Leave.Review(ctx, id, decision, body.Reviewer, body.Remarks)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// CancelRequest withdraws a pending request.
// POST /api/leave/requests/{id}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body CancelBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	unlock := h.locks.lock("review/" + string(id))
	defer unlock()

	req, err := h.Leave.Cancel(ctx, id, body.By)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// =============================================================================
// CALENDAR
// =============================================================================

// ListHolidays returns the national holidays of a year.
// GET /api/holidays?year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.Now().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(h.Calendar.HolidaysInYear(year)))
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attendance.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Illegal attendance transition", err)
	case errors.Is(err, leave.ErrAlreadyReviewed):
		writeError(w, http.StatusConflict, "Request already reviewed", err)
	case errors.Is(err, leave.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, "Insufficient leave balance", err)
	case errors.Is(err, leave.ErrOverlappingRequest):
		writeError(w, http.StatusUnprocessableEntity, "Overlapping leave request", err)
	case errors.Is(err, leave.ErrUnknownLeaveType):
		writeError(w, http.StatusBadRequest, "Unknown leave type", err)
	case errors.Is(err, labor.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, "Invalid time range", err)
	case errors.Is(err, leave.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Request not found", err)
	case errors.Is(err, labor.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, "Employee not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
