package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/employee"
	holidaydom "github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transactor runs fn atomically. The postgresql package provides the real
// implementation; tests substitute a pass-through.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher receives exactly one event per completed workflow transition.
type Publisher interface {
	Publish(event leave.Event)
}

// WorkflowService drives a leave request through its lifecycle. Every
// transition is validated against the state machine before any side effect,
// and approval records always land in the same transaction as the ledger
// mutation they justify.
type WorkflowService struct {
	requestRepository  leave.LeaveRequestRepository
	typeRepository     leave.LeaveTypeRepository
	approvalRepository leave.LeaveApprovalRepository
	employeeRepository employee.EmployeeRepository
	holidayRepository  holidaydom.HolidayRepository
	ledger             *LedgerService
	tx                 Transactor
	publisher          Publisher
	now                func() time.Time
}

func NewWorkflowService(
	requestRepository leave.LeaveRequestRepository,
	typeRepository leave.LeaveTypeRepository,
	approvalRepository leave.LeaveApprovalRepository,
	employeeRepository employee.EmployeeRepository,
	holidayRepository holidaydom.HolidayRepository,
	ledger *LedgerService,
	tx Transactor,
	publisher Publisher,
) *WorkflowService {
	return &WorkflowService{
		requestRepository:  requestRepository,
		typeRepository:     typeRepository,
		approvalRepository: approvalRepository,
		employeeRepository: employeeRepository,
		holidayRepository:  holidayRepository,
		ledger:             ledger,
		tx:                 tx,
		publisher:          publisher,
		now:                time.Now,
	}
}

// CreateDraft creates a new request in draft status. No balance is touched
// and no days are computed yet; both happen at submission.
func (s *WorkflowService) CreateDraft(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	leaveType, err := s.typeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	if !leaveType.IsActive {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeInactive
	}
	if _, err := s.employeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get employee: %w", err)
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)

	priority := leave.PriorityNormal
	if req.Priority != "" {
		priority = leave.RequestPriority(req.Priority)
	}

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		number, err := s.requestRepository.NextRequestNumber(ctx, startDate.Year())
		if err != nil {
			return fmt.Errorf("failed to assign request number: %w", err)
		}

		created, err = s.requestRepository.Create(ctx, leave.LeaveRequest{
			RequestNumber:         number,
			EmployeeID:            req.EmployeeID,
			LeaveTypeID:           req.LeaveTypeID,
			StartDate:             startDate,
			EndDate:               endDate,
			Status:                leave.StatusDraft,
			Priority:              priority,
			Reason:                req.Reason,
			MedicalCertificateURL: req.MedicalCertificateURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	slog.Info("Created leave request draft",
		"request_id", created.ID,
		"request_number", created.RequestNumber,
		"employee_id", created.EmployeeID,
	)
	return created, nil
}

// Submit validates the request against the leave type's policy rules,
// computes the day count, reserves the days on the balance and moves the
// request to submitted. The reservation and the status change are atomic:
// if the balance rejects, the request stays in draft.
func (s *WorkflowService) Submit(ctx context.Context, req leave.SubmitRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	request, err := s.requestRepository.GetByID(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	nextStatus, err := leave.NextStatus(request.Status, leave.ActionSubmit)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	leaveType, err := s.typeRepository.GetByID(ctx, request.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	if !leaveType.IsActive {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeInactive
	}
	emp, err := s.employeeRepository.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get employee: %w", err)
	}

	if err := s.checkPolicy(ctx, leaveType, emp, request); err != nil {
		return leave.LeaveRequest{}, err
	}

	requestedDays, err := s.countDays(ctx, leaveType, emp.DepartmentID, request.StartDate, request.EndDate)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if leaveType.MinDaysPerRequest != nil && requestedDays.LessThan(*leaveType.MinDaysPerRequest) {
		return leave.LeaveRequest{}, leave.ErrBelowMinDaysPerRequest
	}
	if leaveType.MaxDaysPerRequest != nil && requestedDays.GreaterThan(*leaveType.MaxDaysPerRequest) {
		return leave.LeaveRequest{}, leave.ErrAboveMaxDaysPerRequest
	}

	submittedBy := req.SubmittedBy
	if submittedBy == "" {
		submittedBy = request.EmployeeID
	}
	submittedAt := s.now()
	newStatus := string(nextStatus)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ledger.Reserve(ctx, request.EmployeeID, request.LeaveTypeID, request.Year(), requestedDays); err != nil {
			return err
		}
		return s.requestRepository.Update(ctx, leave.UpdateLeaveRequestRequest{
			ID:            request.ID,
			Status:        &newStatus,
			RequestedDays: &requestedDays,
			SubmittedBy:   &submittedBy,
			SubmittedAt:   &submittedAt,
		})
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	request.Status = nextStatus
	request.RequestedDays = requestedDays
	request.SubmittedBy = &submittedBy
	request.SubmittedAt = &submittedAt

	s.publish(leave.EventRequestSubmitted, request, submittedBy, &requestedDays)
	slog.Info("Submitted leave request",
		"request_id", request.ID,
		"request_number", request.RequestNumber,
		"requested_days", requestedDays.String(),
	)
	return request, nil
}

// Approve records the approval decision and commits the reserved days in one
// transaction. Approvers may grant fewer days than requested, never more.
func (s *WorkflowService) Approve(ctx context.Context, req leave.ApproveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	request, err := s.requestRepository.GetByID(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	nextStatus, err := leave.NextStatus(request.Status, leave.ActionApprove)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	approvedDays := request.RequestedDays
	if req.ApprovedDays != nil {
		approvedDays = *req.ApprovedDays
	}
	if approvedDays.GreaterThan(request.RequestedDays) {
		return leave.LeaveRequest{}, leave.ErrApprovedExceedsRequested
	}

	newStatus := string(nextStatus)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.approvalRepository.GetByRequestID(ctx, request.ID)
		if err != nil {
			return fmt.Errorf("failed to get approval history: %w", err)
		}
		_, err = s.approvalRepository.Create(ctx, leave.LeaveApproval{
			LeaveRequestID: request.ID,
			ApproverID:     req.ApproverID,
			ApprovalLevel:  len(existing) + 1,
			Action:         leave.ApprovalActionApprove,
			ApprovedDays:   &approvedDays,
			Comments:       req.Comments,
		})
		if err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}

		if err := s.ledger.Commit(ctx, request.EmployeeID, request.LeaveTypeID, request.Year(), request.RequestedDays, approvedDays); err != nil {
			return err
		}

		return s.requestRepository.Update(ctx, leave.UpdateLeaveRequestRequest{
			ID:           request.ID,
			Status:       &newStatus,
			ApprovedDays: &approvedDays,
		})
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	request.Status = nextStatus
	request.ApprovedDays = &approvedDays

	s.publish(leave.EventRequestApproved, request, req.ApproverID, &approvedDays)
	slog.Info("Approved leave request",
		"request_id", request.ID,
		"request_number", request.RequestNumber,
		"approver_id", req.ApproverID,
		"approved_days", approvedDays.String(),
	)
	return request, nil
}

// Reject records the rejection and releases the reserved days. Comments are
// mandatory so the employee learns why.
func (s *WorkflowService) Reject(ctx context.Context, req leave.RejectRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	request, err := s.requestRepository.GetByID(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	nextStatus, err := leave.NextStatus(request.Status, leave.ActionReject)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	newStatus := string(nextStatus)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.approvalRepository.GetByRequestID(ctx, request.ID)
		if err != nil {
			return fmt.Errorf("failed to get approval history: %w", err)
		}
		_, err = s.approvalRepository.Create(ctx, leave.LeaveApproval{
			LeaveRequestID: request.ID,
			ApproverID:     req.ApproverID,
			ApprovalLevel:  len(existing) + 1,
			Action:         leave.ApprovalActionReject,
			Comments:       &req.Comments,
		})
		if err != nil {
			return fmt.Errorf("failed to record rejection: %w", err)
		}

		if err := s.ledger.Release(ctx, request.EmployeeID, request.LeaveTypeID, request.Year(), request.RequestedDays); err != nil {
			return err
		}

		return s.requestRepository.Update(ctx, leave.UpdateLeaveRequestRequest{
			ID:     request.ID,
			Status: &newStatus,
		})
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	request.Status = nextStatus

	s.publish(leave.EventRequestRejected, request, req.ApproverID, nil)
	slog.Info("Rejected leave request",
		"request_id", request.ID,
		"request_number", request.RequestNumber,
		"approver_id", req.ApproverID,
	)
	return request, nil
}

// Cancel withdraws a request. Reserved days are released only when a
// reservation exists, which is exactly the submitted state; cancelling a
// draft touches no balance.
func (s *WorkflowService) Cancel(ctx context.Context, requestID, actorID string) (leave.LeaveRequest, error) {
	request, err := s.requestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	nextStatus, err := leave.NextStatus(request.Status, leave.ActionCancel)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	fromSubmitted := request.Status == leave.StatusSubmitted
	newStatus := string(nextStatus)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if fromSubmitted {
			if err := s.ledger.Release(ctx, request.EmployeeID, request.LeaveTypeID, request.Year(), request.RequestedDays); err != nil {
				return err
			}
		}
		return s.requestRepository.Update(ctx, leave.UpdateLeaveRequestRequest{
			ID:     request.ID,
			Status: &newStatus,
		})
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	request.Status = nextStatus

	s.publish(leave.EventRequestCancelled, request, actorID, nil)
	slog.Info("Cancelled leave request",
		"request_id", request.ID,
		"request_number", request.RequestNumber,
		"actor_id", actorID,
	)
	return request, nil
}

// Start moves an approved request to in_progress once its start date has
// been reached. No balance movement: the days were committed at approval.
func (s *WorkflowService) Start(ctx context.Context, requestID string) (leave.LeaveRequest, error) {
	request, err := s.requestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	nextStatus, err := leave.NextStatus(request.Status, leave.ActionStart)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	today := dateOnly(s.now())
	if today.Before(dateOnly(request.StartDate)) {
		return leave.LeaveRequest{}, leave.ErrStartDateNotReached
	}

	newStatus := string(nextStatus)
	if err := s.requestRepository.Update(ctx, leave.UpdateLeaveRequestRequest{
		ID:     request.ID,
		Status: &newStatus,
	}); err != nil {
		return leave.LeaveRequest{}, err
	}

	request.Status = nextStatus

	s.publish(leave.EventRequestStarted, request, "", nil)
	slog.Info("Started leave request",
		"request_id", request.ID,
		"request_number", request.RequestNumber,
	)
	return request, nil
}

// Complete closes out an in-progress request, recording when the employee
// actually came back. Defaults to now when no date is given.
func (s *WorkflowService) Complete(ctx context.Context, req leave.CompleteRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	request, err := s.requestRepository.GetByID(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	nextStatus, err := leave.NextStatus(request.Status, leave.ActionComplete)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	returnDate := s.now()
	if req.ActualReturnDate != nil {
		returnDate, _ = time.Parse("2006-01-02", *req.ActualReturnDate)
	}

	newStatus := string(nextStatus)
	if err := s.requestRepository.Update(ctx, leave.UpdateLeaveRequestRequest{
		ID:               request.ID,
		Status:           &newStatus,
		ActualReturnDate: &returnDate,
	}); err != nil {
		return leave.LeaveRequest{}, err
	}

	request.Status = nextStatus
	request.ActualReturnDate = &returnDate

	s.publish(leave.EventRequestCompleted, request, "", nil)
	slog.Info("Completed leave request",
		"request_id", request.ID,
		"request_number", request.RequestNumber,
	)
	return request, nil
}

// StartDueRequests starts every approved request whose start date has been
// reached. Run by the scheduler; one bad row does not stop the sweep.
func (s *WorkflowService) StartDueRequests(ctx context.Context) error {
	due, err := s.requestRepository.ListStartable(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to list startable requests: %w", err)
	}

	for _, request := range due {
		if _, err := s.Start(ctx, request.ID); err != nil {
			slog.Error("Failed to start due leave request",
				"request_id", request.ID,
				"error", err,
			)
		}
	}
	return nil
}

// GetRequest returns a single request by ID.
func (s *WorkflowService) GetRequest(ctx context.Context, requestID string) (leave.LeaveRequest, error) {
	return s.requestRepository.GetByID(ctx, requestID)
}

// ListByEmployee returns an employee's requests, newest first.
func (s *WorkflowService) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return s.requestRepository.GetByEmployeeID(ctx, employeeID)
}

// ListByStatus returns requests in a given status, oldest first. Approval
// queues use this with submitted.
func (s *WorkflowService) ListByStatus(ctx context.Context, status leave.RequestStatus) ([]leave.LeaveRequest, error) {
	return s.requestRepository.ListByStatus(ctx, status)
}

// GetApprovalHistory returns the append-only decision log for a request.
func (s *WorkflowService) GetApprovalHistory(ctx context.Context, requestID string) ([]leave.LeaveApproval, error) {
	if _, err := s.requestRepository.GetByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.approvalRepository.GetByRequestID(ctx, requestID)
}

func (s *WorkflowService) checkPolicy(ctx context.Context, leaveType leave.LeaveType, emp employee.Employee, request leave.LeaveRequest) error {
	if leaveType.GenderRestriction != leave.GenderRestrictionNone &&
		string(leaveType.GenderRestriction) != string(emp.Gender) {
		return leave.ErrGenderRestricted
	}

	if leaveType.RequiresMedicalCertificate && request.MedicalCertificateURL == nil {
		return leave.ErrMedicalCertificateRequired
	}

	if leaveType.MinAdvanceNoticeDays != nil {
		earliest := dateOnly(s.now()).AddDate(0, 0, *leaveType.MinAdvanceNoticeDays)
		if dateOnly(request.StartDate).Before(earliest) {
			return leave.ErrMinAdvanceNotice
		}
	}

	if leaveType.MaxRequestsPerYear != nil {
		count, err := s.requestRepository.CountByEmployeeTypeYear(ctx, request.EmployeeID, request.LeaveTypeID, request.Year())
		if err != nil {
			return fmt.Errorf("failed to count requests: %w", err)
		}
		if count >= *leaveType.MaxRequestsPerYear {
			return leave.ErrMaxRequestsPerYearReached
		}
	}

	overlapping, err := s.requestRepository.CheckOverlapping(ctx, request.EmployeeID, request.StartDate, request.EndDate)
	if err != nil {
		return fmt.Errorf("failed to check overlapping requests: %w", err)
	}
	if overlapping {
		return leave.ErrOverlappingLeave
	}

	return nil
}

func (s *WorkflowService) countDays(ctx context.Context, leaveType leave.LeaveType, departmentID string, startDate, endDate time.Time) (decimal.Decimal, error) {
	var holidays []holidaydom.Holiday
	if leaveType.ExcludeHolidays {
		var err error
		holidays, err = s.holidayRepository.GetByDateRange(ctx, startDate, endDate)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to get holidays: %w", err)
		}
	}

	days := CountRequestedDays(leaveType, departmentID, startDate, endDate, holidays)
	if days.IsZero() {
		return decimal.Zero, leave.ErrNoWorkingDays
	}
	return days, nil
}

func (s *WorkflowService) publish(eventType leave.EventType, request leave.LeaveRequest, actorID string, days *decimal.Decimal) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(leave.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		RequestID:     request.ID,
		RequestNumber: request.RequestNumber,
		EmployeeID:    request.EmployeeID,
		LeaveTypeID:   request.LeaveTypeID,
		ActorID:       actorID,
		Days:          days,
		OccurredAt:    s.now(),
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
