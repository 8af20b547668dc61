package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrLeaveTypeNotFound    = errors.New("Leave type not found")
	ErrLeaveTypeInactive    = errors.New("Leave type is inactive")
	ErrLeaveTypeInUse       = errors.New("Leave type is referenced by balances or requests")
	ErrBalanceNotFound      = errors.New("Leave balance not found")
	ErrLeaveRequestNotFound = errors.New("Leave request not found")
	ErrGenderRestricted     = errors.New("Leave type is restricted to a different gender")
	ErrOverlappingLeave     = errors.New("Overlapping leave request exists")
	ErrCarryoverNotAllowed  = errors.New("Leave type does not allow carryover")

	ErrMinAdvanceNotice           = errors.New("Request does not meet the minimum advance notice")
	ErrBelowMinDaysPerRequest     = errors.New("Request is below the minimum days per request")
	ErrAboveMaxDaysPerRequest     = errors.New("Request exceeds the maximum days per request")
	ErrMaxRequestsPerYearReached  = errors.New("Maximum requests per year reached for this leave type")
	ErrMedicalCertificateRequired = errors.New("Medical certificate is required for this leave type")
	ErrNoWorkingDays              = errors.New("Date range contains no working days")
	ErrApprovedExceedsRequested   = errors.New("Approved days cannot exceed requested days")
	ErrStartDateNotReached        = errors.New("Leave cannot start before its start date")
)

// InsufficientBalanceError is returned when a reservation would drive the
// available balance negative. It carries the remaining balance so callers
// can surface it to the user.
type InsufficientBalanceError struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: requested %s days, %s available",
		e.Requested.String(), e.Available.String())
}

// InvalidTransitionError reports a workflow operation attempted from a state
// that does not permit it. Seeing one in production logs indicates a UI or
// programming defect, not a user mistake.
type InvalidTransitionError struct {
	Status RequestStatus
	Action RequestAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s a request in status %q", e.Action, e.Status)
}
