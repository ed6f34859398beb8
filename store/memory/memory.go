// Package memory provides in-memory store implementations for testing
// and development. Writes are serialized by a single mutex; WithTx is
// simulated with a snapshot restored on error.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kosei-hr/labor-engine/attendance"
	"github.com/kosei-hr/labor-engine/labor"
	"github.com/kosei-hr/labor-engine/leave"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type recordKey struct {
	EmployeeID labor.EmployeeID
	Date       string
}

type balanceKey struct {
	EmployeeID labor.EmployeeID
	Year       int
}

// Store holds all engine state in maps. It implements
// attendance.RecordStore, leave.Store, and leave.EmployeeDirectory.
type Store struct {
	mu       sync.RWMutex
	records  map[recordKey]*attendance.Record
	balances map[balanceKey]*leave.Balance
	requests map[leave.RequestID]*leave.Request

	// employees has its own lock: the directory is read while mu is
	// held inside WithTx (balance synthesis needs the hire date).
	empMu     sync.RWMutex
	employees map[labor.EmployeeID]labor.Date
}

var (
	_ attendance.RecordStore  = (*Store)(nil)
	_ leave.Store             = (*Store)(nil)
	_ leave.EmployeeDirectory = (*Store)(nil)
)

func New() *Store {
	return &Store{
		employees: make(map[labor.EmployeeID]labor.Date),
		records:   make(map[recordKey]*attendance.Record),
		balances:  make(map[balanceKey]*leave.Balance),
		requests:  make(map[leave.RequestID]*leave.Request),
	}
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// SeedEmployee registers an employee's hire date.
func (s *Store) SeedEmployee(employeeID labor.EmployeeID, hireDate labor.Date) {
	s.empMu.Lock()
	defer s.empMu.Unlock()
	s.employees[employeeID] = hireDate
}

func (s *Store) HireDate(_ context.Context, employeeID labor.EmployeeID) (labor.Date, error) {
	s.empMu.RLock()
	defer s.empMu.RUnlock()
	hireDate, ok := s.employees[employeeID]
	if !ok {
		return labor.Date{}, labor.ErrEmployeeNotFound
	}
	return hireDate, nil
}

// =============================================================================
// ATTENDANCE RECORDS
// =============================================================================

func (s *Store) Get(_ context.Context, employeeID labor.EmployeeID, date labor.Date) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{EmployeeID: employeeID, Date: date.String()}]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

func (s *Store) Save(_ context.Context, record *attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{EmployeeID: record.EmployeeID, Date: record.Date.String()}] = copyRecord(record)
	return nil
}

func (s *Store) ListRange(_ context.Context, employeeID labor.EmployeeID, from, to labor.Date) ([]*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*attendance.Record
	for _, rec := range s.records {
		if rec.EmployeeID != employeeID {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		result = append(result, copyRecord(rec))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// =============================================================================
// LEAVE BALANCES AND REQUESTS
// =============================================================================

func (s *Store) GetBalance(_ context.Context, employeeID labor.EmployeeID, year int) (*leave.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getBalanceLocked(employeeID, year), nil
}

func (s *Store) SaveBalance(_ context.Context, b *leave.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveBalanceLocked(b)
	return nil
}

func (s *Store) GetRequest(_ context.Context, id leave.RequestID) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRequestLocked(id), nil
}

func (s *Store) SaveRequest(_ context.Context, r *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveRequestLocked(r)
	return nil
}

func (s *Store) ListRequests(_ context.Context, employeeID labor.EmployeeID, statuses ...leave.RequestStatus) ([]*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRequestsLocked(employeeID, statuses), nil
}

func (s *Store) getBalanceLocked(employeeID labor.EmployeeID, year int) *leave.Balance {
	b, ok := s.balances[balanceKey{EmployeeID: employeeID, Year: year}]
	if !ok {
		return nil
	}
	return copyBalance(b)
}

func (s *Store) saveBalanceLocked(b *leave.Balance) {
	s.balances[balanceKey{EmployeeID: b.EmployeeID, Year: b.Year}] = copyBalance(b)
}

func (s *Store) getRequestLocked(id leave.RequestID) *leave.Request {
	r, ok := s.requests[id]
	if !ok {
		return nil
	}
	return copyRequest(r)
}

func (s *Store) saveRequestLocked(r *leave.Request) {
	s.requests[r.ID] = copyRequest(r)
}

func (s *Store) listRequestsLocked(employeeID labor.EmployeeID, statuses []leave.RequestStatus) []*leave.Request {
	var result []*leave.Request
	for _, r := range s.requests {
		if r.EmployeeID != employeeID {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, r.Status) {
			continue
		}
		result = append(result, copyRequest(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func hasStatus(statuses []leave.RequestStatus, status leave.RequestStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn against a transactional view. For the memory store
// this is simulated: state is snapshotted up front and restored if fn
// returns an error.
func (s *Store) WithTx(_ context.Context, fn func(tx leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&txView{parent: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	balances map[balanceKey]*leave.Balance
	requests map[leave.RequestID]*leave.Request
}

func (s *Store) snapshot() storeSnapshot {
	balances := make(map[balanceKey]*leave.Balance, len(s.balances))
	for k, v := range s.balances {
		balances[k] = copyBalance(v)
	}
	requests := make(map[leave.RequestID]*leave.Request, len(s.requests))
	for k, v := range s.requests {
		requests[k] = copyRequest(v)
	}
	return storeSnapshot{balances: balances, requests: requests}
}

func (s *Store) restore(snap storeSnapshot) {
	s.balances = snap.balances
	s.requests = snap.requests
}

// txView performs unlocked writes under the parent's already-held lock.
type txView struct {
	parent *Store
}

func (tv *txView) GetBalance(_ context.Context, employeeID labor.EmployeeID, year int) (*leave.Balance, error) {
	return tv.parent.getBalanceLocked(employeeID, year), nil
}

func (tv *txView) SaveBalance(_ context.Context, b *leave.Balance) error {
	tv.parent.saveBalanceLocked(b)
	return nil
}

func (tv *txView) GetRequest(_ context.Context, id leave.RequestID) (*leave.Request, error) {
	return tv.parent.getRequestLocked(id), nil
}

func (tv *txView) SaveRequest(_ context.Context, r *leave.Request) error {
	tv.parent.saveRequestLocked(r)
	return nil
}

func (tv *txView) ListRequests(_ context.Context, employeeID labor.EmployeeID, statuses ...leave.RequestStatus) ([]*leave.Request, error) {
	return tv.parent.listRequestsLocked(employeeID, statuses), nil
}

func (tv *txView) WithTx(_ context.Context, fn func(tx leave.Store) error) error {
	return fn(tv)
}

// =============================================================================
// COPY HELPERS - Keep callers from aliasing stored state
// =============================================================================

func copyRecord(r *attendance.Record) *attendance.Record {
	c := *r
	c.ClockIn = copyTimePtr(r.ClockIn)
	c.ClockOut = copyTimePtr(r.ClockOut)
	c.BreakStart = copyTimePtr(r.BreakStart)
	c.BreakEnd = copyTimePtr(r.BreakEnd)
	c.ApprovedAt = copyTimePtr(r.ApprovedAt)
	return &c
}

func copyBalance(b *leave.Balance) *leave.Balance {
	c := *b
	c.Categories = make(map[leave.Type]leave.CategoryBalance, len(b.Categories))
	for t, v := range b.Categories {
		c.Categories[t] = v
	}
	return &c
}

func copyRequest(r *leave.Request) *leave.Request {
	c := *r
	if r.ReviewedBy != nil {
		by := *r.ReviewedBy
		c.ReviewedBy = &by
	}
	c.ReviewedAt = copyTimePtr(r.ReviewedAt)
	return &c
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
