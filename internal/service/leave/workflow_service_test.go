package leave

import (
	"context"
	"testing"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/employee"
	holidaydom "github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workflowFixture struct {
	workflow  *WorkflowService
	ledger    *LedgerService
	requests  *fakeRequestRepo
	balances  *fakeBalanceRepo
	types     *fakeTypeRepo
	approvals *fakeApprovalRepo
	employees *fakeEmployeeRepo
	holidays  *fakeHolidayRepo
	published *capturePublisher
	typeID    string
}

// newWorkflowFixture wires the workflow against in-memory fakes with a
// fixed clock of Monday 2026-03-02.
func newWorkflowFixture(t *testing.T, leaveType leave.LeaveType) *workflowFixture {
	t.Helper()

	f := &workflowFixture{
		requests:  newFakeRequestRepo(),
		balances:  newFakeBalanceRepo(),
		types:     newFakeTypeRepo(),
		approvals: newFakeApprovalRepo(),
		employees: newFakeEmployeeRepo(),
		holidays:  &fakeHolidayRepo{},
		published: &capturePublisher{},
	}

	f.employees.add(employee.Employee{
		ID:           "emp-1",
		EmployeeCode: "E001",
		FullName:     "Test Employee",
		Gender:       employee.Male,
		DepartmentID: "dept-eng",
		HireDate:     date(2020, time.January, 15),
		IsActive:     true,
	})

	created, err := f.types.Create(context.Background(), leaveType)
	require.NoError(t, err)
	f.typeID = created.ID

	calc := NewAccrualCalculator(nil)
	f.ledger = NewLedgerService(f.balances, f.types, f.employees, calc)
	f.workflow = NewWorkflowService(
		f.requests, f.types, f.approvals, f.employees, f.holidays,
		f.ledger, passthroughTransactor{}, f.published,
	)
	f.workflow.now = func() time.Time { return date(2026, time.March, 2) }
	return f
}

func workingDaysType(days int64) leave.LeaveType {
	lt := fixedType(days)
	lt.ExcludeWeekends = true
	lt.ExcludeHolidays = true
	return lt
}

func (f *workflowFixture) draft(t *testing.T, startDate, endDate string) leave.LeaveRequest {
	t.Helper()
	created, err := f.workflow.CreateDraft(context.Background(), leave.CreateLeaveRequestRequest{
		EmployeeID:  "emp-1",
		LeaveTypeID: f.typeID,
		StartDate:   startDate,
		EndDate:     endDate,
		Reason:      "family time",
	})
	require.NoError(t, err)
	return created
}

func (f *workflowFixture) submitted(t *testing.T, startDate, endDate string) leave.LeaveRequest {
	t.Helper()
	created := f.draft(t, startDate, endDate)
	request, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{
		RequestID:   created.ID,
		SubmittedBy: "emp-1",
	})
	require.NoError(t, err)
	return request
}

func (f *workflowFixture) balance(t *testing.T, year int) leave.LeaveBalance {
	t.Helper()
	b, err := f.balances.GetByEmployeeTypeYear(context.Background(), "emp-1", f.typeID, year)
	require.NoError(t, err)
	return b
}

func TestCreateDraftAssignsSequentialRequestNumbers(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	first := f.draft(t, "2026-03-09", "2026-03-13")
	second := f.draft(t, "2026-04-06", "2026-04-10")

	assert.Equal(t, "LR-2026-00001", first.RequestNumber)
	assert.Equal(t, "LR-2026-00002", second.RequestNumber)
	assert.Equal(t, leave.StatusDraft, first.Status)
	assert.True(t, first.RequestedDays.IsZero(), "days are computed at submission, not creation")
}

func TestSubmitReservesDaysAndTransitions(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	// Mon Mar 9 through Fri Mar 13: 5 working days.
	request := f.submitted(t, "2026-03-09", "2026-03-13")

	assert.Equal(t, leave.StatusSubmitted, request.Status)
	assert.True(t, request.RequestedDays.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, request.SubmittedAt)

	b := f.balance(t, 2026)
	assert.True(t, b.PendingDays.Equal(decimal.NewFromInt(5)))
	assert.True(t, b.AvailableDays().Equal(decimal.NewFromInt(16)))

	events := f.published.all()
	require.Len(t, events, 1)
	assert.Equal(t, leave.EventRequestSubmitted, events[0].Type)
	assert.Equal(t, request.ID, events[0].RequestID)
	require.NotNil(t, events[0].Days)
	assert.True(t, events[0].Days.Equal(decimal.NewFromInt(5)))
}

func TestSubmitSpanningWeekendCountsWorkingDaysOnly(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	// Mon Mar 9 through Fri Mar 20 spans one weekend: 10 working days.
	request := f.submitted(t, "2026-03-09", "2026-03-20")
	assert.True(t, request.RequestedDays.Equal(decimal.NewFromInt(10)), "got %s", request.RequestedDays)
}

func TestSubmitInsufficientBalanceKeepsDraft(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	// Mon Mar 9 through Fri Apr 10: 25 working days against 21 available.
	created := f.draft(t, "2026-03-09", "2026-04-10")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{
		RequestID: created.ID,
	})

	var insufficientErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficientErr)
	assert.True(t, insufficientErr.Requested.Equal(decimal.NewFromInt(25)))
	assert.True(t, insufficientErr.Available.Equal(decimal.NewFromInt(21)))

	stored, err := f.requests.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusDraft, stored.Status, "failed submit must leave the request in draft")

	b := f.balance(t, 2026)
	assert.True(t, b.PendingDays.IsZero())
	assert.Empty(t, f.published.all(), "no event for a failed transition")
}

func TestSubmitExcludesHolidays(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	f.holidays.holidays = append(f.holidays.holidays, holidaydom.Holiday{
		ID:                      "hol-1",
		Name:                    "Founders Day",
		StartDate:               date(2026, time.March, 11),
		EndDate:                 date(2026, time.March, 11),
		AffectsLeaveCalculation: true,
	})

	request := f.submitted(t, "2026-03-09", "2026-03-13")
	assert.True(t, request.RequestedDays.Equal(decimal.NewFromInt(4)), "got %s", request.RequestedDays)
}

func TestSubmitGenderRestricted(t *testing.T) {
	lt := workingDaysType(21)
	lt.GenderRestriction = leave.GenderRestrictionFemale
	f := newWorkflowFixture(t, lt)

	created := f.draft(t, "2026-03-09", "2026-03-13")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: created.ID})
	assert.ErrorIs(t, err, leave.ErrGenderRestricted)
}

func TestSubmitRequiresMedicalCertificate(t *testing.T) {
	lt := workingDaysType(21)
	lt.RequiresMedicalCertificate = true
	f := newWorkflowFixture(t, lt)

	created := f.draft(t, "2026-03-09", "2026-03-13")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: created.ID})
	assert.ErrorIs(t, err, leave.ErrMedicalCertificateRequired)
}

func TestSubmitMinAdvanceNotice(t *testing.T) {
	notice := 14
	lt := workingDaysType(21)
	lt.MinAdvanceNoticeDays = &notice
	f := newWorkflowFixture(t, lt)

	// Clock is Mar 2; starting Mar 9 gives only 7 days notice.
	created := f.draft(t, "2026-03-09", "2026-03-13")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: created.ID})
	assert.ErrorIs(t, err, leave.ErrMinAdvanceNotice)

	// Mar 16 gives exactly 14 days and passes.
	ok := f.draft(t, "2026-03-16", "2026-03-20")
	_, err = f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: ok.ID})
	require.NoError(t, err)
}

func TestSubmitMaxDaysPerRequest(t *testing.T) {
	max := decimal.NewFromInt(3)
	lt := workingDaysType(21)
	lt.MaxDaysPerRequest = &max
	f := newWorkflowFixture(t, lt)

	created := f.draft(t, "2026-03-09", "2026-03-13")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: created.ID})
	assert.ErrorIs(t, err, leave.ErrAboveMaxDaysPerRequest)
}

func TestSubmitMaxRequestsPerYear(t *testing.T) {
	limit := 1
	lt := workingDaysType(21)
	lt.MaxRequestsPerYear = &limit
	f := newWorkflowFixture(t, lt)

	f.submitted(t, "2026-03-09", "2026-03-13")

	second := f.draft(t, "2026-04-06", "2026-04-10")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: second.ID})
	assert.ErrorIs(t, err, leave.ErrMaxRequestsPerYearReached)
}

func TestSubmitOverlappingRequest(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	f.submitted(t, "2026-03-09", "2026-03-13")

	overlapping := f.draft(t, "2026-03-12", "2026-03-17")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: overlapping.ID})
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
}

func TestSubmitWeekendOnlyRange(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	created := f.draft(t, "2026-03-14", "2026-03-15")
	_, err := f.workflow.Submit(context.Background(), leave.SubmitRequestRequest{RequestID: created.ID})
	assert.ErrorIs(t, err, leave.ErrNoWorkingDays)
}

func TestApproveCommitsReservedDays(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	request := f.submitted(t, "2026-03-09", "2026-03-13")

	approved, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
		RequestID:  request.ID,
		ApproverID: "mgr-1",
	})
	require.NoError(t, err)

	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedDays)
	assert.True(t, approved.ApprovedDays.Equal(decimal.NewFromInt(5)), "approved days default to requested")

	b := f.balance(t, 2026)
	assert.True(t, b.UsedDays.Equal(decimal.NewFromInt(5)))
	assert.True(t, b.PendingDays.IsZero())
	assert.True(t, b.AvailableDays().Equal(decimal.NewFromInt(16)))

	history, err := f.approvals.GetByRequestID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, leave.ApprovalActionApprove, history[0].Action)
	assert.Equal(t, 1, history[0].ApprovalLevel)
	assert.Equal(t, "mgr-1", history[0].ApproverID)

	events := f.published.all()
	require.Len(t, events, 2)
	assert.Equal(t, leave.EventRequestApproved, events[1].Type)
}

func TestApprovePartialDays(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	request := f.submitted(t, "2026-03-09", "2026-03-13")

	three := decimal.NewFromInt(3)
	approved, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
		RequestID:    request.ID,
		ApproverID:   "mgr-1",
		ApprovedDays: &three,
	})
	require.NoError(t, err)
	assert.True(t, approved.ApprovedDays.Equal(three))

	b := f.balance(t, 2026)
	assert.True(t, b.UsedDays.Equal(three))
	assert.True(t, b.PendingDays.IsZero())
	assert.True(t, b.AvailableDays().Equal(decimal.NewFromInt(18)), "unused reservation flows back")
}

func TestApproveCannotExceedRequested(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	request := f.submitted(t, "2026-03-09", "2026-03-13")

	ten := decimal.NewFromInt(10)
	_, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
		RequestID:    request.ID,
		ApproverID:   "mgr-1",
		ApprovedDays: &ten,
	})
	assert.ErrorIs(t, err, leave.ErrApprovedExceedsRequested)
}

func TestRejectReleasesReservation(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	request := f.submitted(t, "2026-03-09", "2026-03-13")

	rejected, err := f.workflow.Reject(context.Background(), leave.RejectRequestRequest{
		RequestID:  request.ID,
		ApproverID: "mgr-1",
		Comments:   "critical release week",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)

	// Submit-then-reject nets to zero.
	b := f.balance(t, 2026)
	assert.True(t, b.PendingDays.IsZero())
	assert.True(t, b.UsedDays.IsZero())
	assert.True(t, b.AvailableDays().Equal(decimal.NewFromInt(21)))

	history, err := f.approvals.GetByRequestID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, leave.ApprovalActionReject, history[0].Action)
	require.NotNil(t, history[0].Comments)
	assert.Equal(t, "critical release week", *history[0].Comments)
}

func TestCancelSubmittedReleasesReservation(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	request := f.submitted(t, "2026-03-09", "2026-03-13")

	cancelled, err := f.workflow.Cancel(context.Background(), request.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)

	b := f.balance(t, 2026)
	assert.True(t, b.PendingDays.IsZero())
	assert.True(t, b.AvailableDays().Equal(decimal.NewFromInt(21)))
}

func TestCancelDraftTouchesNoBalance(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	created := f.draft(t, "2026-03-09", "2026-03-13")

	cancelled, err := f.workflow.Cancel(context.Background(), created.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)

	_, err = f.balances.GetByEmployeeTypeYear(context.Background(), "emp-1", f.typeID, 2026)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound, "draft never reserved, so no balance row exists")
}

func TestInvalidTransitionLeavesStateUnchanged(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))
	created := f.draft(t, "2026-03-09", "2026-03-13")

	_, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
		RequestID:  created.ID,
		ApproverID: "mgr-1",
	})

	var transitionErr *leave.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, leave.StatusDraft, transitionErr.Status)
	assert.Equal(t, leave.ActionApprove, transitionErr.Action)

	stored, err := f.requests.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusDraft, stored.Status)

	history, err := f.approvals.GetByRequestID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "failed transition must not record a decision")
	assert.Empty(t, f.published.all())
}

func TestStartAndComplete(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	// Already past its start date by the fixture clock.
	request := f.submitted(t, "2026-03-02", "2026-03-06")
	_, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
		RequestID:  request.ID,
		ApproverID: "mgr-1",
	})
	require.NoError(t, err)

	started, err := f.workflow.Start(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusInProgress, started.Status)

	completed, err := f.workflow.Complete(context.Background(), leave.CompleteRequestRequest{
		RequestID: request.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCompleted, completed.Status)
	require.NotNil(t, completed.ActualReturnDate)

	types := make([]leave.EventType, 0)
	for _, e := range f.published.all() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []leave.EventType{
		leave.EventRequestSubmitted,
		leave.EventRequestApproved,
		leave.EventRequestStarted,
		leave.EventRequestCompleted,
	}, types, "exactly one event per transition")
}

func TestStartBeforeStartDate(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	request := f.submitted(t, "2026-03-09", "2026-03-13")
	_, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
		RequestID:  request.ID,
		ApproverID: "mgr-1",
	})
	require.NoError(t, err)

	_, err = f.workflow.Start(context.Background(), request.ID)
	assert.ErrorIs(t, err, leave.ErrStartDateNotReached)
}

func TestStartDueRequestsStartsOnlyDue(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	due := f.submitted(t, "2026-03-02", "2026-03-06")
	future := f.submitted(t, "2026-03-16", "2026-03-20")
	for _, id := range []string{due.ID, future.ID} {
		_, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
			RequestID:  id,
			ApproverID: "mgr-1",
		})
		require.NoError(t, err)
	}

	require.NoError(t, f.workflow.StartDueRequests(context.Background()))

	dueStored, err := f.requests.GetByID(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusInProgress, dueStored.Status)

	futureStored, err := f.requests.GetByID(context.Background(), future.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, futureStored.Status)
}

func TestCompletedRequestIsTerminal(t *testing.T) {
	f := newWorkflowFixture(t, workingDaysType(21))

	request := f.submitted(t, "2026-03-02", "2026-03-06")
	_, err := f.workflow.Approve(context.Background(), leave.ApproveRequestRequest{
		RequestID:  request.ID,
		ApproverID: "mgr-1",
	})
	require.NoError(t, err)
	_, err = f.workflow.Start(context.Background(), request.ID)
	require.NoError(t, err)
	_, err = f.workflow.Complete(context.Background(), leave.CompleteRequestRequest{RequestID: request.ID})
	require.NoError(t, err)

	_, err = f.workflow.Cancel(context.Background(), request.ID, "emp-1")
	var transitionErr *leave.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}
