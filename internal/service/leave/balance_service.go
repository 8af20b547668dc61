package leave

import (
	"context"
	"errors"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// BalanceView is the read model handed to the web layer: the stored buckets
// plus the derived available figure.
type BalanceView struct {
	ID            string          `json:"leave_balance_id"`
	EmployeeID    string          `json:"employee_id"`
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeName *string         `json:"leave_type_name,omitempty"`
	Year          int             `json:"year"`
	AllocatedDays decimal.Decimal `json:"allocated_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	PendingDays   decimal.Decimal `json:"pending_days"`
	CarriedOver   decimal.Decimal `json:"carried_over_days"`
	AvailableDays decimal.Decimal `json:"available_days"`
}

// BalanceService answers balance queries. All writes go through the ledger.
type BalanceService struct {
	leave.LeaveBalanceRepository
}

func NewBalanceService(balanceRepository leave.LeaveBalanceRepository) *BalanceService {
	return &BalanceService{LeaveBalanceRepository: balanceRepository}
}

// GetEmployeeBalances returns all of an employee's balances for a year.
func (s *BalanceService) GetEmployeeBalances(ctx context.Context, employeeID string, year int) ([]BalanceView, error) {
	balances, err := s.LeaveBalanceRepository.GetByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}

	views := make([]BalanceView, 0, len(balances))
	for _, b := range balances {
		views = append(views, toBalanceView(b))
	}
	return views, nil
}

// GetBalance returns one employee's balance for a specific leave type and
// year. A missing row reads as an all-zero balance, not an error: an
// employee who never touched a type simply has nothing reserved yet.
func (s *BalanceService) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (BalanceView, error) {
	balance, err := s.LeaveBalanceRepository.GetByEmployeeTypeYear(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return BalanceView{
				EmployeeID:  employeeID,
				LeaveTypeID: leaveTypeID,
				Year:        year,
			}, nil
		}
		return BalanceView{}, err
	}
	return toBalanceView(balance), nil
}

func toBalanceView(b leave.LeaveBalance) BalanceView {
	return BalanceView{
		ID:            b.ID,
		EmployeeID:    b.EmployeeID,
		LeaveTypeID:   b.LeaveTypeID,
		LeaveTypeName: b.LeaveTypeName,
		Year:          b.Year,
		AllocatedDays: b.AllocatedDays,
		UsedDays:      b.UsedDays,
		PendingDays:   b.PendingDays,
		CarriedOver:   b.CarriedOverDays,
		AvailableDays: b.AvailableDays(),
	}
}
