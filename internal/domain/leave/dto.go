package leave

import (
	"time"

	"github.com/deskware/hr-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLeaveTypeRequest struct {
	Name        string  `json:"leave_type_name"`
	Code        *string `json:"leave_type_code,omitempty"`
	Description *string `json:"leave_type_description,omitempty"`

	IsPaid                     bool `json:"is_paid"`
	RequiresApproval           bool `json:"requires_approval"`
	RequiresMedicalCertificate bool `json:"requires_medical_certificate"`

	CalculationMethod string          `json:"calculation_method"`
	DefaultBalance    decimal.Decimal `json:"default_balance"`
	MaxBalance        *decimal.Decimal `json:"max_balance,omitempty"`
	ServiceTiers      ServiceTiers    `json:"service_tiers,omitempty"`

	MinDaysPerRequest    *decimal.Decimal `json:"min_days_per_request,omitempty"`
	MaxDaysPerRequest    *decimal.Decimal `json:"max_days_per_request,omitempty"`
	MaxRequestsPerYear   *int             `json:"max_requests_per_year,omitempty"`
	MinAdvanceNoticeDays *int             `json:"min_advance_notice_days,omitempty"`
	GenderRestriction    string           `json:"gender_restriction,omitempty"`
	ExcludeWeekends      bool             `json:"exclude_weekends"`
	ExcludeHolidays      bool             `json:"exclude_holidays"`

	AllowCarryover        bool             `json:"allow_carryover"`
	MaxCarryoverDays      *decimal.Decimal `json:"max_carryover_days,omitempty"`
	CarryoverExpiryMonths *int             `json:"carryover_expiry_months,omitempty"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_name",
			Message: "leave_type_name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_name",
			Message: "leave_type_name must not exceed 255 characters",
		})
	}

	switch CalculationMethod(r.CalculationMethod) {
	case CalculationFixed, CalculationMonthly, CalculationYearly, CalculationServiceBased:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "calculation_method",
			Message: "calculation_method must be one of fixed, monthly, yearly, service_based",
		})
	}

	if r.DefaultBalance.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "default_balance",
			Message: "default_balance must not be negative",
		})
	}

	switch GenderRestriction(r.GenderRestriction) {
	case GenderRestrictionNone, GenderRestrictionMale, GenderRestrictionFemale:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "gender_restriction",
			Message: "gender_restriction must be empty, male or female",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateLeaveTypeRequest struct {
	ID          string  `json:"leave_type_id"`
	Name        *string `json:"leave_type_name,omitempty"`
	Description *string `json:"leave_type_description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`

	DefaultBalance   *decimal.Decimal `json:"default_balance,omitempty"`
	MaxBalance       *decimal.Decimal `json:"max_balance,omitempty"`
	ServiceTiers     ServiceTiers     `json:"service_tiers,omitempty"`
	MaxCarryoverDays *decimal.Decimal `json:"max_carryover_days,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "leave_type_name",
				Message: "leave_type_name must not be empty",
			})
		}
		if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "leave_type_name",
				Message: "leave_type_name must not exceed 255 characters",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// CreateLeaveRequestRequest creates a request in draft status. Days are not
// computed here; that happens at submission.
type CreateLeaveRequestRequest struct {
	EmployeeID            string  `json:"employee_id"`
	LeaveTypeID           string  `json:"leave_type_id"`
	StartDate             string  `json:"start_date"`
	EndDate               string  `json:"end_date"`
	Priority              string  `json:"priority,omitempty"`
	Reason                string  `json:"reason"`
	MedicalCertificateURL *string `json:"medical_certificate_url,omitempty"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}

	startDate, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date (YYYY-MM-DD)",
		})
	}
	endDate, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date (YYYY-MM-DD)",
		})
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if r.Priority != "" {
		switch RequestPriority(r.Priority) {
		case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		default:
			errs = append(errs, validator.ValidationError{
				Field:   "priority",
				Message: "priority must be one of low, normal, high, urgent",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SubmitRequestRequest struct {
	RequestID   string `json:"request_id"`
	SubmittedBy string `json:"submitted_by"`
}

func (r *SubmitRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ApproveRequestRequest struct {
	RequestID    string           `json:"request_id"`
	ApproverID   string           `json:"approver_id"`
	ApprovedDays *decimal.Decimal `json:"approved_days,omitempty"`
	Comments     *string          `json:"comments,omitempty"`
}

func (r *ApproveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if r.ApprovedDays != nil && !r.ApprovedDays.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "approved_days",
			Message: "approved_days must be positive",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectRequestRequest struct {
	RequestID  string `json:"request_id"`
	ApproverID string `json:"approver_id"`
	Comments   string `json:"comments"`
}

func (r *RejectRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if validator.IsEmpty(r.Comments) {
		errs = append(errs, validator.ValidationError{
			Field:   "comments",
			Message: "comments is required when rejecting",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CompleteRequestRequest struct {
	RequestID        string  `json:"request_id"`
	ActualReturnDate *string `json:"actual_return_date,omitempty"`
}

func (r *CompleteRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if r.ActualReturnDate != nil {
		if _, ok := validator.IsValidDate(*r.ActualReturnDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "actual_return_date",
				Message: "actual_return_date must be a valid date (YYYY-MM-DD)",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateLeaveRequestRequest is the partial-update carrier used by the
// repository layer. Nil fields are left untouched.
type UpdateLeaveRequestRequest struct {
	ID               string
	Status           *string
	RequestNumber    *string
	RequestedDays    *decimal.Decimal
	ApprovedDays     *decimal.Decimal
	SubmittedBy      *string
	SubmittedAt      *time.Time
	ActualReturnDate *time.Time
}
