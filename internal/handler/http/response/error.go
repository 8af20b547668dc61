package response

import (
	"errors"
	"net/http"

	"github.com/deskware/hr-backend-go/internal/domain/employee"
	"github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/deskware/hr-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Insufficient balance carries the remaining figure for the client.
	var insufficientErr *leave.InsufficientBalanceError
	if errors.As(err, &insufficientErr) {
		BadRequest(w, "Insufficient leave balance", map[string]string{
			"requested_days": insufficientErr.Requested.String(),
			"available_days": insufficientErr.Available.String(),
		})
		return
	}

	// An invalid transition is a stale or conflicting view of the request.
	var transitionErr *leave.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		Conflict(w, transitionErr.Error(), map[string]string{
			"status": string(transitionErr.Status),
			"action": string(transitionErr.Action),
		})
		return
	}

	switch {
	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveTypeInactive):
		BadRequest(w, "Leave type is inactive", nil)
	case errors.Is(err, leave.ErrLeaveTypeInUse):
		Conflict(w, "Leave type is referenced by balances or requests", nil)
	case errors.Is(err, leave.ErrGenderRestricted):
		BadRequest(w, "Leave type is restricted to a different gender", nil)
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, "An overlapping leave request already exists", nil)
	case errors.Is(err, leave.ErrCarryoverNotAllowed):
		BadRequest(w, "Leave type does not allow carryover", nil)
	case errors.Is(err, leave.ErrMinAdvanceNotice):
		BadRequest(w, "Request does not meet the minimum advance notice", nil)
	case errors.Is(err, leave.ErrBelowMinDaysPerRequest):
		BadRequest(w, "Request is below the minimum days per request", nil)
	case errors.Is(err, leave.ErrAboveMaxDaysPerRequest):
		BadRequest(w, "Request exceeds the maximum days per request", nil)
	case errors.Is(err, leave.ErrMaxRequestsPerYearReached):
		BadRequest(w, "Maximum requests per year reached for this leave type", nil)
	case errors.Is(err, leave.ErrMedicalCertificateRequired):
		BadRequest(w, "Medical certificate is required for this leave type", nil)
	case errors.Is(err, leave.ErrNoWorkingDays):
		BadRequest(w, "Date range contains no working days", nil)
	case errors.Is(err, leave.ErrApprovedExceedsRequested):
		BadRequest(w, "Approved days cannot exceed requested days", nil)
	case errors.Is(err, leave.ErrStartDateNotReached):
		BadRequest(w, "Leave cannot start before its start date", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Holiday domain errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
