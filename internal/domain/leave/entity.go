package leave

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CalculationMethod determines how the yearly allocation for a leave type
// is computed when a balance row is first created.
type CalculationMethod string

const (
	CalculationFixed        CalculationMethod = "fixed"
	CalculationMonthly      CalculationMethod = "monthly"
	CalculationYearly       CalculationMethod = "yearly"
	CalculationServiceBased CalculationMethod = "service_based"
)

type GenderRestriction string

const (
	GenderRestrictionNone   GenderRestriction = ""
	GenderRestrictionMale   GenderRestriction = "male"
	GenderRestrictionFemale GenderRestriction = "female"
)

// LeaveType entity
type LeaveType struct {
	ID          string
	Name        string
	Code        *string
	Description *string

	// Policy rules
	IsActive                   bool
	IsPaid                     bool
	RequiresApproval           bool
	RequiresMedicalCertificate bool

	// Allocation rules
	CalculationMethod CalculationMethod
	DefaultBalance    decimal.Decimal
	MaxBalance        *decimal.Decimal
	ServiceTiers      ServiceTiers // service_based bonus schedule, policy data

	// Request rules
	MinDaysPerRequest    *decimal.Decimal
	MaxDaysPerRequest    *decimal.Decimal
	MaxRequestsPerYear   *int
	MinAdvanceNoticeDays *int
	GenderRestriction    GenderRestriction
	ExcludeWeekends      bool
	ExcludeHolidays      bool

	// Carryover rules
	AllowCarryover        bool
	MaxCarryoverDays      *decimal.Decimal
	CarryoverExpiryMonths *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceTiers is the JSONB schedule of bonus days granted per full years of
// service for service_based leave types. Tiers are matched by the highest
// MinYears not exceeding the employee's completed years.
type ServiceTiers []ServiceTier

type ServiceTier struct {
	MinYears  int             `json:"min_years"`
	BonusDays decimal.Decimal `json:"bonus_days"`
}

// Value implements driver.Valuer for database storage
func (st ServiceTiers) Value() (driver.Value, error) {
	if len(st) == 0 {
		return nil, nil
	}
	return json.Marshal(st)
}

// Scan implements sql.Scanner for database retrieval
func (st *ServiceTiers) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan ServiceTiers: invalid type")
	}

	return json.Unmarshal(bytes, st)
}

// BonusFor returns the bonus days for the given completed years of service.
func (st ServiceTiers) BonusFor(yearsOfService int) decimal.Decimal {
	bonus := decimal.Zero
	best := -1
	for _, tier := range st {
		if yearsOfService >= tier.MinYears && tier.MinYears > best {
			best = tier.MinYears
			bonus = tier.BonusDays
		}
	}
	return bonus
}

// LeaveBalance entity. One row per (employee, leave type, year); uniqueness
// is enforced by the database. All buckets are non-negative decimals;
// available days are derived, never stored.
type LeaveBalance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int

	AllocatedDays   decimal.Decimal
	UsedDays        decimal.Decimal
	PendingDays     decimal.Decimal
	CarriedOverDays decimal.Decimal

	// CarryoverSourceYear marks which year's rollover has been applied to
	// this row. Set exactly once: the rollover job skips rows where it is
	// already set, which keeps the year-end run idempotent.
	CarryoverSourceYear *int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveTypeName *string
	EmployeeName  *string
}

// AvailableDays returns allocated + carried_over - used - pending.
func (b LeaveBalance) AvailableDays() decimal.Decimal {
	return b.AllocatedDays.Add(b.CarriedOverDays).Sub(b.UsedDays).Sub(b.PendingDays)
}

type RequestStatus string

const (
	StatusDraft      RequestStatus = "draft"
	StatusSubmitted  RequestStatus = "submitted"
	StatusApproved   RequestStatus = "approved"
	StatusRejected   RequestStatus = "rejected"
	StatusCancelled  RequestStatus = "cancelled"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
)

// ParseStatus converts a raw string to a RequestStatus, returning an error
// for unknown values.
func ParseStatus(s string) (RequestStatus, error) {
	st := RequestStatus(s)
	switch st {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected,
		StatusCancelled, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown leave request status %q", s)
}

// RequestAction is a workflow operation applied to a leave request.
type RequestAction string

const (
	ActionSubmit   RequestAction = "submit"
	ActionApprove  RequestAction = "approve"
	ActionReject   RequestAction = "reject"
	ActionCancel   RequestAction = "cancel"
	ActionStart    RequestAction = "start"
	ActionComplete RequestAction = "complete"
)

// validTransitions lists every allowed (status, action) pair and the
// resulting status:
//
//	draft ──submit──► submitted ──approve──► approved ──start──► in_progress ──complete──► completed
//	  │                  │   └───reject───► rejected
//	  └───cancel──► cancelled ◄──cancel──┘
//
// rejected, cancelled and completed are terminal.
var validTransitions = map[RequestStatus]map[RequestAction]RequestStatus{
	StatusDraft: {
		ActionSubmit: StatusSubmitted,
		ActionCancel: StatusCancelled,
	},
	StatusSubmitted: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
		ActionCancel:  StatusCancelled,
	},
	StatusApproved: {
		ActionStart: StatusInProgress,
	},
	StatusInProgress: {
		ActionComplete: StatusCompleted,
	},
}

// NextStatus returns the status reached by applying action in the given
// status, or an InvalidTransitionError when the pair is not permitted.
func NextStatus(from RequestStatus, action RequestAction) (RequestStatus, error) {
	if to, ok := validTransitions[from][action]; ok {
		return to, nil
	}
	return "", &InvalidTransitionError{Status: from, Action: action}
}

// CanTransition reports whether action is permitted in the given status.
func CanTransition(from RequestStatus, action RequestAction) bool {
	_, ok := validTransitions[from][action]
	return ok
}

type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityNormal RequestPriority = "normal"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID            string
	RequestNumber string // e.g. LR-2026-00042, unique and increasing within a year
	EmployeeID    string
	LeaveTypeID   string

	StartDate time.Time
	EndDate   time.Time

	RequestedDays decimal.Decimal  // computed from the date range, never hand-edited
	ApprovedDays  *decimal.Decimal // nil until decided

	Status   RequestStatus
	Priority RequestPriority
	Reason   string

	MedicalCertificateURL *string

	SubmittedBy      *string
	SubmittedAt      *time.Time
	ActualReturnDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveTypeName *string
	EmployeeName  *string
}

// Year returns the balance year the request draws from.
func (r LeaveRequest) Year() int {
	return r.StartDate.Year()
}

// ExpectedReturnDate is the first day back, the day after the leave ends.
func (r LeaveRequest) ExpectedReturnDate() time.Time {
	return r.EndDate.AddDate(0, 0, 1)
}

// IsOverdue reports whether the request is in progress past its expected
// return date.
func (r LeaveRequest) IsOverdue(now time.Time) bool {
	return r.Status == StatusInProgress && now.After(r.ExpectedReturnDate())
}

// CanBeApproved reports whether an approval decision may still be recorded.
// Who may approve is the web layer's concern.
func (r LeaveRequest) CanBeApproved() bool {
	return CanTransition(r.Status, ActionApprove)
}

// CanBeCancelled reports whether the request may still be cancelled.
func (r LeaveRequest) CanBeCancelled() bool {
	return CanTransition(r.Status, ActionCancel)
}

type ApprovalAction string

const (
	ApprovalActionApprove     ApprovalAction = "approve"
	ApprovalActionReject      ApprovalAction = "reject"
	ApprovalActionRequestInfo ApprovalAction = "request_info"
)

// LeaveApproval entity. Append-only: rows are never updated or deleted.
// This is the workflow's decision log.
type LeaveApproval struct {
	ID             string
	LeaveRequestID string
	ApproverID     string
	ApprovalLevel  int
	Action         ApprovalAction
	ApprovedDays   *decimal.Decimal
	Comments       *string
	CreatedAt      time.Time
}
