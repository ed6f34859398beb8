/*
engine.go - Statutory leave accrual and request workflow

PURPOSE:
  Computes annual-leave entitlement from tenure, synthesizes balances on
  demand, and drives the submit/review/cancel lifecycle of leave
  requests with the balance invariants enforced at write time.

ACCRUAL MODEL:
  Entitlement is a step function over tenure bands. Tenure is the
  integer year difference targetYear - hireDate.year, matching how the
  balances are keyed (one per calendar year). An employee hired in
  December 2024 therefore reaches the first band in 2025 even though
  fewer than six months have elapsed.

REQUEST FLOW:
  Submit    -> counts business days, checks balance and overlaps,
               creates PENDING
  Review    -> PENDING -> APPROVED (debits the accruing balance,
               atomically with the status change) or REJECTED
  Cancel    -> PENDING -> CANCELLED

  A retried Review of an already-decided request returns
  AlreadyReviewed; the debit happens exactly once because the status
  change and the debit commit together.

SEE ALSO:
  - types.go: Balance and Request entities
  - errors.go: the business-rule errors raised here
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/calendar"
	"github.com/kosei-hr/labor-engine/labor"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// TenureBand grants Days of annual leave once tenure reaches MinYears.
// Bands must be ordered by ascending MinYears; the last band whose
// threshold is met wins.
type TenureBand struct {
	MinYears decimal.Decimal
	Days     decimal.Decimal
}

// Config carries the accrual bands and the fixed grants for the
// non-accruing categories.
type Config struct {
	// Bands for the accruing category, ascending by MinYears.
	Bands []TenureBand

	// AccruingType is the category driven by the bands. Submissions of
	// this type are balance-checked and approvals debit it.
	AccruingType Type

	// DefaultGrants are the fixed per-year grants for the other
	// categories, used when a balance is synthesized.
	DefaultGrants map[Type]decimal.Decimal
}

// DefaultConfig returns the statutory Japanese annual-leave bands
// (Labor Standards Act art. 39) with modest fixed grants for sick and
// special leave.
func DefaultConfig() Config {
	band := func(minYears, days string) TenureBand {
		return TenureBand{
			MinYears: decimal.RequireFromString(minYears),
			Days:     decimal.RequireFromString(days),
		}
	}
	return Config{
		Bands: []TenureBand{
			band("0.5", "10"),
			band("1.5", "11"),
			band("2.5", "12"),
			band("3.5", "14"),
			band("4.5", "16"),
			band("5.5", "18"),
			band("6.5", "20"),
		},
		AccruingType: TypeAnnual,
		DefaultGrants: map[Type]decimal.Decimal{
			TypeSick:    decimal.NewFromInt(5),
			TypeSpecial: decimal.NewFromInt(5),
		},
	}
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Store persists balances and requests. Get methods return (nil, nil)
// when the row is absent. WithTx runs fn against a transactional view;
// the writes inside commit together or not at all.
type Store interface {
	GetBalance(ctx context.Context, employeeID labor.EmployeeID, year int) (*Balance, error)
	SaveBalance(ctx context.Context, b *Balance) error

	GetRequest(ctx context.Context, id RequestID) (*Request, error)
	SaveRequest(ctx context.Context, r *Request) error
	ListRequests(ctx context.Context, employeeID labor.EmployeeID, statuses ...RequestStatus) ([]*Request, error)

	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// EmployeeDirectory resolves the hire date needed for tenure. Owned by
// the surrounding employee-management service.
type EmployeeDirectory interface {
	HireDate(ctx context.Context, employeeID labor.EmployeeID) (labor.Date, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives leave accrual and the request workflow.
type Engine struct {
	cfg       Config
	store     Store
	directory EmployeeDirectory
	cal       *calendar.Calendar

	now func() time.Time
}

// New builds an Engine over the given collaborators.
func New(cfg Config, store Store, directory EmployeeDirectory, cal *calendar.Calendar) *Engine {
	return &Engine{
		cfg:       cfg,
		store:     store,
		directory: directory,
		cal:       cal,
		now:       time.Now,
	}
}

// EntitlementForTenure returns the annual-leave days granted for the
// target year given the hire date. Tenure is the integer year
// difference; bands below the first threshold grant zero.
func (e *Engine) EntitlementForTenure(hireDate labor.Date, targetYear int) decimal.Decimal {
	tenure := decimal.NewFromInt(int64(targetYear - hireDate.Year()))
	days := decimal.Zero
	for _, band := range e.cfg.Bands {
		if tenure.GreaterThanOrEqual(band.MinYears) {
			days = band.Days
		}
	}
	return days
}

// =============================================================================
// BALANCES
// =============================================================================

// GetBalance returns the stored balance for (employee, year), or a
// synthesized one derived from tenure if none exists yet. Synthesis
// does not persist; the balance is only written once initialized or
// first debited.
func (e *Engine) GetBalance(ctx context.Context, employeeID labor.EmployeeID, year int) (*Balance, error) {
	return e.loadOrSynthesize(ctx, e.store, employeeID, year)
}

// InitializeBalance persists the synthesized balance for (employee,
// year) so later grants can be adjusted explicitly. Idempotent: an
// existing balance is returned untouched.
func (e *Engine) InitializeBalance(ctx context.Context, employeeID labor.EmployeeID, year int) (*Balance, error) {
	stored, err := e.store.GetBalance(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}
	b, err := e.synthesize(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveBalance(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (e *Engine) loadOrSynthesize(ctx context.Context, store Store, employeeID labor.EmployeeID, year int) (*Balance, error) {
	stored, err := store.GetBalance(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}
	return e.synthesize(ctx, employeeID, year)
}

func (e *Engine) synthesize(ctx context.Context, employeeID labor.EmployeeID, year int) (*Balance, error) {
	hireDate, err := e.directory.HireDate(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	categories := map[Type]CategoryBalance{
		e.cfg.AccruingType: {Granted: e.EntitlementForTenure(hireDate, year)},
	}
	for t, granted := range e.cfg.DefaultGrants {
		categories[t] = CategoryBalance{Granted: granted}
	}
	return &Balance{
		EmployeeID: employeeID,
		Year:       year,
		Categories: categories,
		UpdatedAt:  e.now(),
	}, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

// ListRequests returns the employee's requests, optionally filtered by
// status.
func (e *Engine) ListRequests(ctx context.Context, employeeID labor.EmployeeID, statuses ...RequestStatus) ([]*Request, error) {
	return e.store.ListRequests(ctx, employeeID, statuses...)
}

// SubmitRequest validates and creates a PENDING request over the
// inclusive [start, end] range. The day count is the number of weekdays
// in range; national holidays are not excluded, matching how the
// balances were granted. The balance checked here, and debited on
// approval, is the start year's: a range spanning New Year draws its
// entire day count from the year the leave begins in.
func (e *Engine) SubmitRequest(ctx context.Context, employeeID labor.EmployeeID, start, end labor.Date, typ Type, reason string) (*Request, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLeaveType, typ)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", labor.ErrInvalidInterval, end, start)
	}

	dayCount := decimal.NewFromInt(int64(e.cal.BusinessDays(start, end)))

	open, err := e.store.ListRequests(ctx, employeeID, RequestPending, RequestApproved)
	if err != nil {
		return nil, err
	}
	for _, r := range open {
		if r.Overlaps(start, end) {
			return nil, &OverlapError{
				EmployeeID: employeeID,
				Existing:   r.ID,
				Start:      r.Start,
				End:        r.End,
			}
		}
	}

	if typ == e.cfg.AccruingType {
		balance, err := e.loadOrSynthesize(ctx, e.store, employeeID, start.Year())
		if err != nil {
			return nil, err
		}
		if remaining := balance.Remaining(typ); dayCount.GreaterThan(remaining) {
			return nil, &InsufficientBalanceError{
				EmployeeID: employeeID,
				Year:       start.Year(),
				Type:       typ,
				Remaining:  remaining,
				Requested:  dayCount,
			}
		}
	}

	now := e.now()
	req := &Request{
		ID:         RequestID(uuid.NewString()),
		EmployeeID: employeeID,
		Start:      start,
		End:        end,
		Type:       typ,
		DayCount:   dayCount,
		Status:     RequestPending,
		Reason:     reason,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.SaveRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// =============================================================================
// REVIEW
// =============================================================================

// Review decides a PENDING request. decision must be RequestApproved or
// RequestRejected. Approval of the accruing category debits the balance
// and flips the status in one transaction, so a retried review cannot
// double-debit: the second attempt finds the request decided and
// returns AlreadyReviewed.
func (e *Engine) Review(ctx context.Context, id RequestID, decision RequestStatus, reviewer string, remarks string) (*Request, error) {
	if decision != RequestApproved && decision != RequestRejected {
		return nil, fmt.Errorf("invalid review decision %q", decision)
	}

	var reviewed *Request
	err := e.store.WithTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: %s", ErrRequestNotFound, id)
		}
		if req.Status != RequestPending {
			return &AlreadyReviewedError{ID: req.ID, Status: req.Status}
		}

		if decision == RequestApproved && req.Type == e.cfg.AccruingType {
			if err := e.debit(ctx, tx, req); err != nil {
				return err
			}
		}

		now := e.now()
		req.Status = decision
		req.ReviewedBy = &reviewer
		req.ReviewedAt = &now
		req.ReviewRemarks = remarks
		req.UpdatedAt = now
		if err := tx.SaveRequest(ctx, req); err != nil {
			return err
		}
		reviewed = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// debit increments used on the balance for the request's year, creating
// the balance from tenure if it was never persisted. The used <= granted
// invariant is enforced here so an over-approved request surfaces as
// InsufficientBalance instead of a negative remainder.
func (e *Engine) debit(ctx context.Context, tx Store, req *Request) error {
	balance, err := e.loadOrSynthesize(ctx, tx, req.EmployeeID, req.Start.Year())
	if err != nil {
		return err
	}

	cat := balance.Category(req.Type)
	used := cat.Used.Add(req.DayCount)
	if used.GreaterThan(cat.Granted) {
		return &InsufficientBalanceError{
			EmployeeID: req.EmployeeID,
			Year:       balance.Year,
			Type:       req.Type,
			Remaining:  cat.Remaining(),
			Requested:  req.DayCount,
		}
	}
	cat.Used = used
	balance.Categories[req.Type] = cat
	balance.UpdatedAt = e.now()
	return tx.SaveBalance(ctx, balance)
}

// =============================================================================
// CANCELLATION
// =============================================================================

// Cancel withdraws a PENDING request. Decided requests cannot be
// cancelled and return AlreadyReviewed.
func (e *Engine) Cancel(ctx context.Context, id RequestID, by string) (*Request, error) {
	req, err := e.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	if req.Status != RequestPending {
		return nil, &AlreadyReviewedError{ID: req.ID, Status: req.Status}
	}

	now := e.now()
	req.Status = RequestCancelled
	req.ReviewedBy = &by
	req.ReviewedAt = &now
	req.UpdatedAt = now
	if err := e.store.SaveRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
