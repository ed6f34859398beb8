/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements attendance.RecordStore, leave.Store, and
  leave.EmployeeDirectory on SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:          Hire dates for tenure computation
  attendance_records: One row per (employee, date) with punch times and
                      the computed hour figures
  leave_balances:     One row per (employee, year, category)
  leave_requests:     The booking workflow rows

DECIMALS:
  All hour and day figures are stored as TEXT via decimal.String() and
  parsed back exactly. REAL would reintroduce the float drift the hour
  math avoids.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - attendance/record.go, leave/engine.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/attendance"
	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/leave"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ attendance.RecordStore  = (*Store)(nil)
	_ leave.Store             = (*Store)(nil)
	_ leave.EmployeeDirectory = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- One row per employee-day; punches are NULL until they happen.
	CREATE TABLE IF NOT EXISTS attendance_records (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		break_start TEXT,
		break_end TEXT,
		work_hours TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		night_hours TEXT NOT NULL,
		holiday_hours TEXT NOT NULL,
		status TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		approved_by TEXT NOT NULL DEFAULT '',
		approved_at TEXT,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		category TEXT NOT NULL,
		granted TEXT NOT NULL,
		used TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year, category)
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		day_count TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		reviewed_by TEXT,
		reviewed_at TEXT,
		review_remarks TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// Employee is the minimal employee row the engine needs.
type Employee struct {
	ID       labor.EmployeeID
	Name     string
	Email    string
	HireDate labor.Date
}

// SaveEmployee upserts an employee row.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date
	`
	_, err := s.db.ExecContext(ctx, query,
		string(emp.ID),
		emp.Name,
		nullString(emp.Email),
		emp.HireDate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// HireDate implements leave.EmployeeDirectory. Deliberately lock-free:
// it is called inside WithTx (balance synthesis needs the hire date)
// while the store mutex is held, and WAL readers don't block anyway.
func (s *Store) HireDate(ctx context.Context, employeeID labor.EmployeeID) (labor.Date, error) {
	var hireDate string
	err := s.db.QueryRowContext(ctx,
		`SELECT hire_date FROM employees WHERE id = ?`, string(employeeID),
	).Scan(&hireDate)
	if err == sql.ErrNoRows {
		return labor.Date{}, labor.ErrEmployeeNotFound
	}
	if err != nil {
		return labor.Date{}, err
	}
	return labor.ParseDate(hireDate)
}

// =============================================================================
// ATTENDANCE RECORDS
// =============================================================================

// Get returns the record for the employee-day, or nil if none exists.
func (s *Store) Get(ctx context.Context, employeeID labor.EmployeeID, date labor.Date) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queryRecords(ctx, s.db,
		recordColumns+` WHERE employee_id = ? AND date = ?`,
		string(employeeID), date.String())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Save upserts the record keyed on (EmployeeID, Date).
func (s *Store) Save(ctx context.Context, record *attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRecord(ctx, s.db, record)
}

// ListRange returns records for the employee in [from, to], ordered by date.
func (s *Store) ListRange(ctx context.Context, employeeID labor.EmployeeID, from, to labor.Date) ([]*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx, s.db,
		recordColumns+` WHERE employee_id = ? AND date >= ? AND date <= ? ORDER BY date`,
		string(employeeID), from.String(), to.String())
}

const recordColumns = `
	SELECT employee_id, date, clock_in, clock_out, break_start, break_end,
	       work_hours, overtime_hours, night_hours, holiday_hours,
	       status, remarks, approved_by, approved_at
	FROM attendance_records`

func (s *Store) saveRecord(ctx context.Context, db executor, record *attendance.Record) error {
	query := `
		INSERT INTO attendance_records
		(employee_id, date, clock_in, clock_out, break_start, break_end,
		 work_hours, overtime_hours, night_hours, holiday_hours,
		 status, remarks, approved_by, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out,
			break_start = excluded.break_start,
			break_end = excluded.break_end,
			work_hours = excluded.work_hours,
			overtime_hours = excluded.overtime_hours,
			night_hours = excluded.night_hours,
			holiday_hours = excluded.holiday_hours,
			status = excluded.status,
			remarks = excluded.remarks,
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at
	`
	_, err := db.ExecContext(ctx, query,
		string(record.EmployeeID),
		record.Date.String(),
		nullTime(record.ClockIn),
		nullTime(record.ClockOut),
		nullTime(record.BreakStart),
		nullTime(record.BreakEnd),
		record.WorkHours.String(),
		record.OvertimeHours.String(),
		record.NightHours.String(),
		record.HolidayHours.String(),
		string(record.Status),
		record.Remarks,
		record.ApprovedBy,
		nullTime(record.ApprovedAt),
	)
	return err
}

func (s *Store) queryRecords(ctx context.Context, db executor, query string, args ...any) ([]*attendance.Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*attendance.Record
	for rows.Next() {
		var (
			employeeID, dateStr, status, remarks, approvedBy string
			clockIn, clockOut, breakStart, breakEnd          sql.NullString
			approvedAt                                       sql.NullString
			work, overtime, night, holiday                   string
		)
		if err := rows.Scan(&employeeID, &dateStr,
			&clockIn, &clockOut, &breakStart, &breakEnd,
			&work, &overtime, &night, &holiday,
			&status, &remarks, &approvedBy, &approvedAt); err != nil {
			return nil, err
		}

		date, err := labor.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt date %q: %w", dateStr, err)
		}

		rec := &attendance.Record{
			EmployeeID: labor.EmployeeID(employeeID),
			Date:       date,
			Status:     attendance.Status(status),
			Remarks:    remarks,
			ApprovedBy: approvedBy,
		}
		if rec.ClockIn, err = parseTimePtr(clockIn); err != nil {
			return nil, err
		}
		if rec.ClockOut, err = parseTimePtr(clockOut); err != nil {
			return nil, err
		}
		if rec.BreakStart, err = parseTimePtr(breakStart); err != nil {
			return nil, err
		}
		if rec.BreakEnd, err = parseTimePtr(breakEnd); err != nil {
			return nil, err
		}
		if rec.ApprovedAt, err = parseTimePtr(approvedAt); err != nil {
			return nil, err
		}
		if rec.WorkHours, err = parseDecimal(work); err != nil {
			return nil, err
		}
		if rec.OvertimeHours, err = parseDecimal(overtime); err != nil {
			return nil, err
		}
		if rec.NightHours, err = parseDecimal(night); err != nil {
			return nil, err
		}
		if rec.HolidayHours, err = parseDecimal(holiday); err != nil {
			return nil, err
		}

		result = append(result, rec)
	}
	return result, rows.Err()
}

// =============================================================================
// LEAVE BALANCES
// =============================================================================

// GetBalance returns the balance for (employee, year), or nil if no
// category rows exist yet.
func (s *Store) GetBalance(ctx context.Context, employeeID labor.EmployeeID, year int) (*leave.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getBalance(ctx, s.db, employeeID, year)
}

// SaveBalance upserts all category rows of the balance.
func (s *Store) SaveBalance(ctx context.Context, b *leave.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveBalance(ctx, s.db, b)
}

func (s *Store) getBalance(ctx context.Context, db executor, employeeID labor.EmployeeID, year int) (*leave.Balance, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT category, granted, used, updated_at
		 FROM leave_balances WHERE employee_id = ? AND year = ?`,
		string(employeeID), year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balance := &leave.Balance{
		EmployeeID: employeeID,
		Year:       year,
		Categories: make(map[leave.Type]leave.CategoryBalance),
	}
	for rows.Next() {
		var category, granted, used, updatedAt string
		if err := rows.Scan(&category, &granted, &used, &updatedAt); err != nil {
			return nil, err
		}
		cat := leave.CategoryBalance{}
		if cat.Granted, err = parseDecimal(granted); err != nil {
			return nil, err
		}
		if cat.Used, err = parseDecimal(used); err != nil {
			return nil, err
		}
		balance.Categories[leave.Type(category)] = cat
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil && t.After(balance.UpdatedAt) {
			balance.UpdatedAt = t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(balance.Categories) == 0 {
		return nil, nil
	}
	return balance, nil
}

func (s *Store) saveBalance(ctx context.Context, db executor, b *leave.Balance) error {
	query := `
		INSERT INTO leave_balances (employee_id, year, category, granted, used, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year, category) DO UPDATE SET
			granted = excluded.granted,
			used = excluded.used,
			updated_at = excluded.updated_at
	`
	updatedAt := b.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	for category, cat := range b.Categories {
		_, err := db.ExecContext(ctx, query,
			string(b.EmployeeID),
			b.Year,
			string(category),
			cat.Granted.String(),
			cat.Used.String(),
			updatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// GetRequest returns the request, or nil if the id is unknown.
func (s *Store) GetRequest(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRequest(ctx, s.db, id)
}

// SaveRequest upserts the request row.
func (s *Store) SaveRequest(ctx context.Context, r *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRequest(ctx, s.db, r)
}

// ListRequests returns the employee's requests, optionally filtered by
// status, ordered by creation time.
func (s *Store) ListRequests(ctx context.Context, employeeID labor.EmployeeID, statuses ...leave.RequestStatus) ([]*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRequests(ctx, s.db, employeeID, statuses)
}

const requestColumns = `
	SELECT id, employee_id, start_date, end_date, leave_type, day_count,
	       status, reason, reviewed_by, reviewed_at, review_remarks,
	       created_at, updated_at
	FROM leave_requests`

func (s *Store) getRequest(ctx context.Context, db executor, id leave.RequestID) (*leave.Request, error) {
	reqs, err := s.queryRequests(ctx, db, requestColumns+` WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return reqs[0], nil
}

func (s *Store) saveRequest(ctx context.Context, db executor, r *leave.Request) error {
	query := `
		INSERT INTO leave_requests
		(id, employee_id, start_date, end_date, leave_type, day_count,
		 status, reason, reviewed_by, reviewed_at, review_remarks,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			reviewed_by = excluded.reviewed_by,
			reviewed_at = excluded.reviewed_at,
			review_remarks = excluded.review_remarks,
			updated_at = excluded.updated_at
	`
	var reviewedBy sql.NullString
	if r.ReviewedBy != nil {
		reviewedBy = sql.NullString{String: *r.ReviewedBy, Valid: true}
	}
	_, err := db.ExecContext(ctx, query,
		string(r.ID),
		string(r.EmployeeID),
		r.Start.String(),
		r.End.String(),
		string(r.Type),
		r.DayCount.String(),
		string(r.Status),
		r.Reason,
		reviewedBy,
		nullTime(r.ReviewedAt),
		r.ReviewRemarks,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) listRequests(ctx context.Context, db executor, employeeID labor.EmployeeID, statuses []leave.RequestStatus) ([]*leave.Request, error) {
	query := requestColumns + ` WHERE employee_id = ?`
	args := []any{string(employeeID)}
	if len(statuses) > 0 {
		query += ` AND status IN (?` + repeatPlaceholder(len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY created_at`
	return s.queryRequests(ctx, db, query, args...)
}

func (s *Store) queryRequests(ctx context.Context, db executor, query string, args ...any) ([]*leave.Request, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*leave.Request
	for rows.Next() {
		var (
			id, employeeID, startStr, endStr, leaveType string
			dayCount, status, reason, reviewRemarks     string
			reviewedBy, reviewedAt                      sql.NullString
			createdAt, updatedAt                        string
		)
		if err := rows.Scan(&id, &employeeID, &startStr, &endStr, &leaveType,
			&dayCount, &status, &reason, &reviewedBy, &reviewedAt,
			&reviewRemarks, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		req := &leave.Request{
			ID:            leave.RequestID(id),
			EmployeeID:    labor.EmployeeID(employeeID),
			Type:          leave.Type(leaveType),
			Status:        leave.RequestStatus(status),
			Reason:        reason,
			ReviewRemarks: reviewRemarks,
		}
		if req.Start, err = labor.ParseDate(startStr); err != nil {
			return nil, err
		}
		if req.End, err = labor.ParseDate(endStr); err != nil {
			return nil, err
		}
		if req.DayCount, err = parseDecimal(dayCount); err != nil {
			return nil, err
		}
		if reviewedBy.Valid {
			by := reviewedBy.String
			req.ReviewedBy = &by
		}
		if req.ReviewedAt, err = parseTimePtr(reviewedAt); err != nil {
			return nil, err
		}
		if req.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, err
		}
		if req.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, err
		}

		result = append(result, req)
	}
	return result, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &txStore{tx: sqlTx, parent: s}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) GetBalance(ctx context.Context, employeeID labor.EmployeeID, year int) (*leave.Balance, error) {
	return ts.parent.getBalance(ctx, ts.tx, employeeID, year)
}

func (ts *txStore) SaveBalance(ctx context.Context, b *leave.Balance) error {
	return ts.parent.saveBalance(ctx, ts.tx, b)
}

func (ts *txStore) GetRequest(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	return ts.parent.getRequest(ctx, ts.tx, id)
}

func (ts *txStore) SaveRequest(ctx context.Context, r *leave.Request) error {
	return ts.parent.saveRequest(ctx, ts.tx, r)
}

func (ts *txStore) ListRequests(ctx context.Context, employeeID labor.EmployeeID, statuses ...leave.RequestStatus) ([]*leave.Request, error) {
	return ts.parent.listRequests(ctx, ts.tx, employeeID, statuses)
}

func (ts *txStore) WithTx(ctx context.Context, fn func(store leave.Store) error) error {
	return fn(ts)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt timestamp %q: %w", s.String, err)
	}
	return &t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt decimal %q: %w", s, err)
	}
	return d, nil
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
