package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskware/hr-backend-go/internal/domain/employee"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// LedgerService owns every mutation of leave_balances. Only the workflow
// and the rollover job call it; handlers never touch balance buckets
// directly. Commit, Release and Carryover expect to run inside the caller's
// transaction so the approval record and the bucket change land together.
type LedgerService struct {
	leave.LeaveBalanceRepository
	leave.LeaveTypeRepository
	employee.EmployeeRepository
	calculator *AccrualCalculator
}

func NewLedgerService(
	balanceRepository leave.LeaveBalanceRepository,
	leaveTypeRepository leave.LeaveTypeRepository,
	employeeRepository employee.EmployeeRepository,
	calculator *AccrualCalculator,
) *LedgerService {
	return &LedgerService{
		LeaveBalanceRepository: balanceRepository,
		LeaveTypeRepository:    leaveTypeRepository,
		EmployeeRepository:     employeeRepository,
		calculator:             calculator,
	}
}

// Reserve places a hold of days on the employee's balance for the year,
// creating the balance row lazily on first use. The availability check and
// the pending increment are one atomic statement; when it rejects, the
// caller gets an InsufficientBalanceError carrying the remaining balance.
func (s *LedgerService) Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	balance, err := s.ensureBalance(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return err
	}

	ok, err := s.LeaveBalanceRepository.AddPending(ctx, balance.ID, days)
	if err != nil {
		return fmt.Errorf("failed to reserve %s days: %w", days.String(), err)
	}
	if !ok {
		// Re-read for an accurate remaining figure in the error.
		current, err := s.LeaveBalanceRepository.GetByID(ctx, balance.ID)
		if err != nil {
			current = balance
		}
		return &leave.InsufficientBalanceError{
			EmployeeID:  employeeID,
			LeaveTypeID: leaveTypeID,
			Year:        year,
			Requested:   days,
			Available:   current.AvailableDays(),
		}
	}

	slog.Info("Reserved leave days",
		"employee_id", employeeID,
		"leave_type_id", leaveTypeID,
		"year", year,
		"days", days.String(),
	)
	return nil
}

// Commit moves approvedDays from pending to used on approval. requestedDays
// is what the reservation held; when the approver grants fewer days the
// difference is released back. Pending is clamped at zero; a negative
// intermediate value means pre-existing drift and is logged, not raised.
func (s *LedgerService) Commit(ctx context.Context, employeeID, leaveTypeID string, year int, requestedDays, approvedDays decimal.Decimal) error {
	balance, err := s.LeaveBalanceRepository.GetByEmployeeTypeYearForUpdate(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return fmt.Errorf("failed to lock balance for commit: %w", err)
	}

	newPending := balance.PendingDays.Sub(requestedDays)
	if newPending.IsNegative() {
		slog.Warn("Pending days would go negative on commit, clamping to zero",
			"employee_id", employeeID,
			"leave_type_id", leaveTypeID,
			"year", year,
			"pending_days", balance.PendingDays.String(),
			"requested_days", requestedDays.String(),
		)
		newPending = decimal.Zero
	}
	newUsed := balance.UsedDays.Add(approvedDays)

	if err := s.LeaveBalanceRepository.SetBuckets(ctx, balance.ID, newUsed, newPending); err != nil {
		return fmt.Errorf("failed to commit %s days: %w", approvedDays.String(), err)
	}

	slog.Info("Committed leave days",
		"employee_id", employeeID,
		"leave_type_id", leaveTypeID,
		"year", year,
		"approved_days", approvedDays.String(),
	)
	return nil
}

// Release returns reserved days to the balance on rejection or
// cancellation. Clamped at zero with the same integrity-warning policy as
// Commit.
func (s *LedgerService) Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	balance, err := s.LeaveBalanceRepository.GetByEmployeeTypeYearForUpdate(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return fmt.Errorf("failed to lock balance for release: %w", err)
	}

	newPending := balance.PendingDays.Sub(days)
	if newPending.IsNegative() {
		slog.Warn("Pending days would go negative on release, clamping to zero",
			"employee_id", employeeID,
			"leave_type_id", leaveTypeID,
			"year", year,
			"pending_days", balance.PendingDays.String(),
			"release_days", days.String(),
		)
		newPending = decimal.Zero
	}

	if err := s.LeaveBalanceRepository.SetBuckets(ctx, balance.ID, balance.UsedDays, newPending); err != nil {
		return fmt.Errorf("failed to release %s days: %w", days.String(), err)
	}

	slog.Info("Released leave days",
		"employee_id", employeeID,
		"leave_type_id", leaveTypeID,
		"year", year,
		"days", days.String(),
	)
	return nil
}

// Carryover rolls the unused balance of fromYear into fromYear+1, capped by
// the leave type's max_carryover_days. Idempotent: the destination row
// carries a carryover_source_year marker and a second run for the same year
// leaves the row untouched.
func (s *LedgerService) Carryover(ctx context.Context, employeeID, leaveTypeID string, fromYear int) error {
	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, leaveTypeID)
	if err != nil {
		return fmt.Errorf("failed to get leave type: %w", err)
	}
	if !leaveType.AllowCarryover {
		return leave.ErrCarryoverNotAllowed
	}

	source, err := s.LeaveBalanceRepository.GetByEmployeeTypeYear(ctx, employeeID, leaveTypeID, fromYear)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return nil // nothing to carry
		}
		return fmt.Errorf("failed to get source balance: %w", err)
	}

	amount := source.AvailableDays()
	if amount.IsNegative() {
		slog.Warn("Source balance available days negative at carryover, clamping to zero",
			"employee_id", employeeID,
			"leave_type_id", leaveTypeID,
			"year", fromYear,
			"available_days", amount.String(),
		)
		amount = decimal.Zero
	}
	if leaveType.MaxCarryoverDays != nil && amount.GreaterThan(*leaveType.MaxCarryoverDays) {
		amount = *leaveType.MaxCarryoverDays
	}

	toYear := fromYear + 1
	dest, err := s.LeaveBalanceRepository.GetByEmployeeTypeYearForUpdate(ctx, employeeID, leaveTypeID, toYear)
	if err != nil {
		if !errors.Is(err, leave.ErrBalanceNotFound) {
			return fmt.Errorf("failed to get destination balance: %w", err)
		}

		emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}
		_, err = s.LeaveBalanceRepository.Create(ctx, leave.LeaveBalance{
			EmployeeID:          employeeID,
			LeaveTypeID:         leaveTypeID,
			Year:                toYear,
			AllocatedDays:       s.calculator.InitialAllocation(leaveType, emp, toYear),
			CarriedOverDays:     amount,
			CarryoverSourceYear: &fromYear,
		})
		if err != nil {
			return fmt.Errorf("failed to create destination balance: %w", err)
		}
	} else {
		if dest.CarryoverSourceYear != nil && *dest.CarryoverSourceYear == fromYear {
			slog.Debug("Carryover already applied, skipping",
				"employee_id", employeeID,
				"leave_type_id", leaveTypeID,
				"from_year", fromYear,
			)
			return nil
		}
		if err := s.LeaveBalanceRepository.SetCarryover(ctx, dest.ID, amount, fromYear); err != nil {
			return fmt.Errorf("failed to set carryover: %w", err)
		}
	}

	slog.Info("Carried over leave days",
		"employee_id", employeeID,
		"leave_type_id", leaveTypeID,
		"from_year", fromYear,
		"days", amount.String(),
	)
	return nil
}

// ensureBalance returns the year's balance row, creating it with the
// accrual-computed allocation when it does not exist yet.
func (s *LedgerService) ensureBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	balance, err := s.LeaveBalanceRepository.GetByEmployeeTypeYear(ctx, employeeID, leaveTypeID, year)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get balance: %w", err)
	}

	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, leaveTypeID)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get employee: %w", err)
	}

	created, err := s.LeaveBalanceRepository.Create(ctx, leave.LeaveBalance{
		EmployeeID:    employeeID,
		LeaveTypeID:   leaveTypeID,
		Year:          year,
		AllocatedDays: s.calculator.InitialAllocation(leaveType, emp, year),
	})
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to create balance: %w", err)
	}

	slog.Info("Created leave balance",
		"employee_id", employeeID,
		"leave_type_id", leaveTypeID,
		"year", year,
		"allocated_days", created.AllocatedDays.String(),
	)
	return created, nil
}
