package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	GetAll(ctx context.Context) ([]LeaveType, error)
	GetActive(ctx context.Context) ([]LeaveType, error)
	Update(ctx context.Context, req UpdateLeaveTypeRequest) error
	Delete(ctx context.Context, id string) error
}

// LeaveBalanceRepository - interface for leave_balances table
type LeaveBalanceRepository interface {
	Create(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)
	GetByID(ctx context.Context, id string) (LeaveBalance, error)
	GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (LeaveBalance, error)
	// GetByEmployeeTypeYearForUpdate locks the row (SELECT ... FOR UPDATE) so
	// ledger mutations against it are serialized. Must run inside a transaction.
	GetByEmployeeTypeYearForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (LeaveBalance, error)
	GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	GetByYear(ctx context.Context, year int) ([]LeaveBalance, error)

	// AddPending atomically increments pending_days, guarded so the available
	// balance can never go negative. Returns false when the guard rejects.
	AddPending(ctx context.Context, balanceID string, days decimal.Decimal) (bool, error)
	// SetBuckets overwrites the mutable day buckets in one statement.
	SetBuckets(ctx context.Context, balanceID string, used, pending decimal.Decimal) error
	// SetCarryover records carried-over days and the idempotence marker.
	SetCarryover(ctx context.Context, balanceID string, days decimal.Decimal, sourceYear int) error
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	ListByStatus(ctx context.Context, status RequestStatus) ([]LeaveRequest, error)
	// ListStartable returns approved requests whose start date is not after asOf.
	ListStartable(ctx context.Context, asOf time.Time) ([]LeaveRequest, error)
	CountByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (int, error)
	CheckOverlapping(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	Update(ctx context.Context, req UpdateLeaveRequestRequest) error
	// NextRequestNumber returns the next value of the year-scoped sequence.
	// Must run inside a transaction so concurrent submissions cannot collide.
	NextRequestNumber(ctx context.Context, year int) (string, error)
}

// LeaveApprovalRepository - interface for leave_approvals table.
// Append-only by design: there are no update or delete methods.
type LeaveApprovalRepository interface {
	Create(ctx context.Context, approval LeaveApproval) (LeaveApproval, error)
	GetByRequestID(ctx context.Context, requestID string) ([]LeaveApproval, error)
}
