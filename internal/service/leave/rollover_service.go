package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/employee"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
)

// RolloverService owns the scheduled balance maintenance: allocating yearly
// balances and carrying unused days into the next year.
type RolloverService struct {
	balanceRepository  leave.LeaveBalanceRepository
	typeRepository     leave.LeaveTypeRepository
	employeeRepository employee.EmployeeRepository
	ledger             *LedgerService
	tx                 Transactor
	now                func() time.Time
}

func NewRolloverService(
	balanceRepository leave.LeaveBalanceRepository,
	typeRepository leave.LeaveTypeRepository,
	employeeRepository employee.EmployeeRepository,
	ledger *LedgerService,
	tx Transactor,
) *RolloverService {
	return &RolloverService{
		balanceRepository:  balanceRepository,
		typeRepository:     typeRepository,
		employeeRepository: employeeRepository,
		ledger:             ledger,
		tx:                 tx,
		now:                time.Now,
	}
}

// AllocateForEmployee creates the year's balance row for every active leave
// type the employee does not have one for yet. Used at onboarding and at
// the start of a new year; safe to call repeatedly.
func (s *RolloverService) AllocateForEmployee(ctx context.Context, employeeID string, year int) error {
	emp, err := s.employeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}

	leaveTypes, err := s.typeRepository.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active leave types: %w", err)
	}

	for _, leaveType := range leaveTypes {
		_, err := s.balanceRepository.GetByEmployeeTypeYear(ctx, employeeID, leaveType.ID, year)
		if err == nil {
			continue // already allocated
		}
		if !errors.Is(err, leave.ErrBalanceNotFound) {
			return fmt.Errorf("failed to get balance: %w", err)
		}

		allocation := s.ledger.calculator.InitialAllocation(leaveType, emp, year)
		if _, err := s.balanceRepository.Create(ctx, leave.LeaveBalance{
			EmployeeID:    employeeID,
			LeaveTypeID:   leaveType.ID,
			Year:          year,
			AllocatedDays: allocation,
		}); err != nil {
			return fmt.Errorf("failed to create balance for leave type %s: %w", leaveType.ID, err)
		}

		slog.Info("Allocated leave balance",
			"employee_id", employeeID,
			"leave_type_id", leaveType.ID,
			"year", year,
			"allocated_days", allocation.String(),
		)
	}

	return nil
}

// AllocateForActiveEmployees runs AllocateForEmployee across the whole
// active headcount, continuing past individual failures.
func (s *RolloverService) AllocateForActiveEmployees(ctx context.Context, year int) error {
	employees, err := s.employeeRepository.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active employees: %w", err)
	}

	for _, emp := range employees {
		if err := s.AllocateForEmployee(ctx, emp.ID, year); err != nil {
			slog.Error("Failed to allocate balances for employee",
				"employee_id", emp.ID,
				"year", year,
				"error", err,
			)
		}
	}
	return nil
}

// RunYearRollover carries every balance of fromYear into fromYear+1. Each
// balance rolls in its own transaction so one failure does not abort the
// whole run, and the carryover marker makes re-running the year a no-op.
func (s *RolloverService) RunYearRollover(ctx context.Context, fromYear int) error {
	balances, err := s.balanceRepository.GetByYear(ctx, fromYear)
	if err != nil {
		return fmt.Errorf("failed to list balances for year %d: %w", fromYear, err)
	}

	var failed int
	for _, balance := range balances {
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.ledger.Carryover(ctx, balance.EmployeeID, balance.LeaveTypeID, fromYear)
		})
		if err != nil {
			if errors.Is(err, leave.ErrCarryoverNotAllowed) {
				continue
			}
			failed++
			slog.Error("Failed to carry over balance",
				"employee_id", balance.EmployeeID,
				"leave_type_id", balance.LeaveTypeID,
				"from_year", fromYear,
				"error", err,
			)
		}
	}

	slog.Info("Year rollover finished",
		"from_year", fromYear,
		"balances", len(balances),
		"failed", failed,
	)
	if failed > 0 {
		return fmt.Errorf("year rollover finished with %d failed balances", failed)
	}
	return nil
}

// RunScheduledRollover is the cron entrypoint: in January it rolls the
// previous year over and tops up allocations for the new year.
func (s *RolloverService) RunScheduledRollover(ctx context.Context) error {
	now := s.now()
	if now.Month() != time.January {
		return nil
	}

	year := now.Year()
	if err := s.RunYearRollover(ctx, year-1); err != nil {
		return err
	}
	return s.AllocateForActiveEmployees(ctx, year)
}
