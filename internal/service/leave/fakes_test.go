package leave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/employee"
	holidaydom "github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes. They mirror the guarantees of the postgresql
// implementations (the guarded pending increment in particular) so service
// behavior can be tested without a database.

type fakeTypeRepo struct {
	mu    sync.Mutex
	types map[string]leave.LeaveType
	seq   int
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[string]leave.LeaveType)}
}

func (f *fakeTypeRepo) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	lt.ID = fmt.Sprintf("type-%d", f.seq)
	f.types[lt.ID] = lt
	return lt, nil
}

func (f *fakeTypeRepo) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lt, ok := f.types[id]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

func (f *fakeTypeRepo) GetAll(ctx context.Context) ([]leave.LeaveType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]leave.LeaveType, 0, len(f.types))
	for _, lt := range f.types {
		out = append(out, lt)
	}
	return out, nil
}

func (f *fakeTypeRepo) GetActive(ctx context.Context) ([]leave.LeaveType, error) {
	all, _ := f.GetAll(ctx)
	out := all[:0]
	for _, lt := range all {
		if lt.IsActive {
			out = append(out, lt)
		}
	}
	return out, nil
}

func (f *fakeTypeRepo) Update(ctx context.Context, req leave.UpdateLeaveTypeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lt, ok := f.types[req.ID]
	if !ok {
		return leave.ErrLeaveTypeNotFound
	}
	if req.Name != nil {
		lt.Name = *req.Name
	}
	if req.Description != nil {
		lt.Description = req.Description
	}
	if req.IsActive != nil {
		lt.IsActive = *req.IsActive
	}
	if req.DefaultBalance != nil {
		lt.DefaultBalance = *req.DefaultBalance
	}
	if req.MaxBalance != nil {
		lt.MaxBalance = req.MaxBalance
	}
	if req.ServiceTiers != nil {
		lt.ServiceTiers = req.ServiceTiers
	}
	if req.MaxCarryoverDays != nil {
		lt.MaxCarryoverDays = req.MaxCarryoverDays
	}
	f.types[req.ID] = lt
	return nil
}

func (f *fakeTypeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.types[id]; !ok {
		return leave.ErrLeaveTypeNotFound
	}
	delete(f.types, id)
	return nil
}

type fakeBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]leave.LeaveBalance
	seq      int
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[string]leave.LeaveBalance)}
}

func (f *fakeBalanceRepo) Create(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = fmt.Sprintf("bal-%d", f.seq)
	f.balances[b.ID] = b
	return b, nil
}

func (f *fakeBalanceRepo) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[id]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (f *fakeBalanceRepo) GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.balances {
		if b.EmployeeID == employeeID && b.LeaveTypeID == leaveTypeID && b.Year == year {
			return b, nil
		}
	}
	return leave.LeaveBalance{}, leave.ErrBalanceNotFound
}

func (f *fakeBalanceRepo) GetByEmployeeTypeYearForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	return f.GetByEmployeeTypeYear(ctx, employeeID, leaveTypeID, year)
}

func (f *fakeBalanceRepo) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveBalance
	for _, b := range f.balances {
		if b.EmployeeID == employeeID && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) GetByYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveBalance
	for _, b := range f.balances {
		if b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) AddPending(ctx context.Context, balanceID string, days decimal.Decimal) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[balanceID]
	if !ok {
		return false, leave.ErrBalanceNotFound
	}
	if b.AvailableDays().Sub(days).IsNegative() {
		return false, nil
	}
	b.PendingDays = b.PendingDays.Add(days)
	f.balances[balanceID] = b
	return true, nil
}

func (f *fakeBalanceRepo) SetBuckets(ctx context.Context, balanceID string, used, pending decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[balanceID]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	b.UsedDays = used
	b.PendingDays = pending
	f.balances[balanceID] = b
	return nil
}

func (f *fakeBalanceRepo) SetCarryover(ctx context.Context, balanceID string, days decimal.Decimal, sourceYear int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[balanceID]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	if b.CarryoverSourceYear != nil && *b.CarryoverSourceYear == sourceYear {
		return nil
	}
	b.CarriedOverDays = days
	b.CarryoverSourceYear = &sourceYear
	f.balances[balanceID] = b
	return nil
}

type fakeRequestRepo struct {
	mu        sync.Mutex
	requests  map[string]leave.LeaveRequest
	seq       int
	sequences map[int]int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests:  make(map[string]leave.LeaveRequest),
		sequences: make(map[int]int),
	}
}

func (f *fakeRequestRepo) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.ID = fmt.Sprintf("req-%d", f.seq)
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByStatus(ctx context.Context, status leave.RequestStatus) ([]leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListStartable(ctx context.Context, asOf time.Time) ([]leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if r.Status == leave.StatusApproved && !r.StartDate.After(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) CountByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.requests {
		if r.EmployeeID != employeeID || r.LeaveTypeID != leaveTypeID || r.StartDate.Year() != year {
			continue
		}
		switch r.Status {
		case leave.StatusSubmitted, leave.StatusApproved, leave.StatusInProgress, leave.StatusCompleted:
			count++
		}
	}
	return count, nil
}

func (f *fakeRequestRepo) CheckOverlapping(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.EmployeeID != employeeID {
			continue
		}
		switch r.Status {
		case leave.StatusSubmitted, leave.StatusApproved, leave.StatusInProgress:
		default:
			continue
		}
		if !r.StartDate.After(endDate) && !r.EndDate.Before(startDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, req leave.UpdateLeaveRequestRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[req.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	if req.Status != nil {
		r.Status = leave.RequestStatus(*req.Status)
	}
	if req.RequestNumber != nil {
		r.RequestNumber = *req.RequestNumber
	}
	if req.RequestedDays != nil {
		r.RequestedDays = *req.RequestedDays
	}
	if req.ApprovedDays != nil {
		r.ApprovedDays = req.ApprovedDays
	}
	if req.SubmittedBy != nil {
		r.SubmittedBy = req.SubmittedBy
	}
	if req.SubmittedAt != nil {
		r.SubmittedAt = req.SubmittedAt
	}
	if req.ActualReturnDate != nil {
		r.ActualReturnDate = req.ActualReturnDate
	}
	f.requests[req.ID] = r
	return nil
}

func (f *fakeRequestRepo) NextRequestNumber(ctx context.Context, year int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sequences[year]++
	return fmt.Sprintf("LR-%d-%05d", year, f.sequences[year]), nil
}

type fakeApprovalRepo struct {
	mu        sync.Mutex
	approvals []leave.LeaveApproval
	seq       int
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{}
}

func (f *fakeApprovalRepo) Create(ctx context.Context, a leave.LeaveApproval) (leave.LeaveApproval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	a.ID = fmt.Sprintf("appr-%d", f.seq)
	a.CreatedAt = time.Now()
	f.approvals = append(f.approvals, a)
	return a, nil
}

func (f *fakeApprovalRepo) GetByRequestID(ctx context.Context, requestID string) ([]leave.LeaveApproval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveApproval
	for _, a := range f.approvals {
		if a.LeaveRequestID == requestID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
}

func (f *fakeEmployeeRepo) add(e employee.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees[e.ID] = e
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetActive(ctx context.Context) ([]employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []employee.Employee
	for _, e := range f.employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeHolidayRepo struct {
	holidays []holidaydom.Holiday
}

func (f *fakeHolidayRepo) Create(ctx context.Context, h holidaydom.Holiday) (holidaydom.Holiday, error) {
	f.holidays = append(f.holidays, h)
	return h, nil
}

func (f *fakeHolidayRepo) GetByID(ctx context.Context, id string) (holidaydom.Holiday, error) {
	for _, h := range f.holidays {
		if h.ID == id {
			return h, nil
		}
	}
	return holidaydom.Holiday{}, holidaydom.ErrHolidayNotFound
}

func (f *fakeHolidayRepo) GetByDateRange(ctx context.Context, from, to time.Time) ([]holidaydom.Holiday, error) {
	var out []holidaydom.Holiday
	for _, h := range f.holidays {
		if h.IsRecurring || (!h.StartDate.After(to) && !h.EndDate.Before(from)) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHolidayRepo) GetAll(ctx context.Context) ([]holidaydom.Holiday, error) {
	return f.holidays, nil
}

func (f *fakeHolidayRepo) Update(ctx context.Context, h holidaydom.Holiday) error {
	for i := range f.holidays {
		if f.holidays[i].ID == h.ID {
			f.holidays[i] = h
			return nil
		}
	}
	return holidaydom.ErrHolidayNotFound
}

func (f *fakeHolidayRepo) Delete(ctx context.Context, id string) error {
	for i := range f.holidays {
		if f.holidays[i].ID == id {
			f.holidays = append(f.holidays[:i], f.holidays[i+1:]...)
			return nil
		}
	}
	return holidaydom.ErrHolidayNotFound
}

// passthroughTransactor runs fn directly. The fakes have no transactional
// semantics, so atomicity assertions are made on observable state instead.
type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// capturePublisher records every published event in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []leave.Event
}

func (p *capturePublisher) Publish(event leave.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) all() []leave.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]leave.Event, len(p.events))
	copy(out, p.events)
	return out
}
