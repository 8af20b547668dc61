package postgresql

import (
	"context"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/deskware/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `
	id, employee_id, leave_type_id, year,
	allocated_days, used_days, pending_days, carried_over_days,
	carryover_source_year, created_at, updated_at`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.AllocatedDays, &b.UsedDays, &b.PendingDays, &b.CarriedOverDays,
		&b.CarryoverSourceYear, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Create implements leave.LeaveBalanceRepository. The unique constraint on
// (employee_id, leave_type_id, year) is the backstop against concurrent
// lazy creation.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_balances (
			id, employee_id, leave_type_id, year,
			allocated_days, used_days, pending_days, carried_over_days,
			carryover_source_year, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7,
			$8, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		balance.EmployeeID, balance.LeaveTypeID, balance.Year,
		balance.AllocatedDays, balance.UsedDays, balance.PendingDays, balance.CarriedOverDays,
		balance.CarryoverSourceYear,
	).Scan(&balance.ID, &balance.CreatedAt, &balance.UpdatedAt)

	if err != nil {
		return leave.LeaveBalance{}, err
	}

	return balance, nil
}

// GetByID implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveBalanceColumns + ` FROM leave_balances WHERE id = $1`

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

// GetByEmployeeTypeYear implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	return r.getByEmployeeTypeYear(ctx, employeeID, leaveTypeID, year, false)
}

// GetByEmployeeTypeYearForUpdate implements leave.LeaveBalanceRepository.
// Row-locks the balance so concurrent ledger mutations serialize.
func (r *leaveBalanceRepositoryImpl) GetByEmployeeTypeYearForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	return r.getByEmployeeTypeYear(ctx, employeeID, leaveTypeID, year, true)
}

func (r *leaveBalanceRepositoryImpl) getByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int, forUpdate bool) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

// GetByEmployeeYear implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.year,
		       lb.allocated_days, lb.used_days, lb.pending_days, lb.carried_over_days,
		       lb.carryover_source_year, lb.created_at, lb.updated_at,
		       lt.name AS leave_type_name
		FROM leave_balances lb
		JOIN leave_types lt ON lb.leave_type_id = lt.id
		WHERE lb.employee_id = $1 AND lb.year = $2
		ORDER BY lt.name
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		var b leave.LeaveBalance
		if err := rows.Scan(
			&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
			&b.AllocatedDays, &b.UsedDays, &b.PendingDays, &b.CarriedOverDays,
			&b.CarryoverSourceYear, &b.CreatedAt, &b.UpdatedAt,
			&b.LeaveTypeName,
		); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// GetByYear implements leave.LeaveBalanceRepository. Used by the year-end
// rollover job.
func (r *leaveBalanceRepositoryImpl) GetByYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE year = $1
		ORDER BY employee_id, leave_type_id`

	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// AddPending implements leave.LeaveBalanceRepository. The availability check
// lives in the WHERE clause, so the check and the increment are one atomic
// statement, so two concurrent reservations cannot both pass.
func (r *leaveBalanceRepositoryImpl) AddPending(ctx context.Context, balanceID string, days decimal.Decimal) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET pending_days = pending_days + $1,
		    updated_at = NOW()
		WHERE id = $2
		AND (allocated_days + carried_over_days - used_days - pending_days - $1) >= 0
	`

	result, err := q.Exec(ctx, query, days, balanceID)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() == 1, nil
}

// SetBuckets implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) SetBuckets(ctx context.Context, balanceID string, used, pending decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used_days = $1,
		    pending_days = $2,
		    updated_at = NOW()
		WHERE id = $3
	`

	result, err := q.Exec(ctx, query, used, pending, balanceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() != 1 {
		return leave.ErrBalanceNotFound
	}
	return nil
}

// SetCarryover implements leave.LeaveBalanceRepository. The WHERE clause
// refuses rows already stamped with this source year, so a re-run is a no-op
// at the storage layer too.
func (r *leaveBalanceRepositoryImpl) SetCarryover(ctx context.Context, balanceID string, days decimal.Decimal, sourceYear int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET carried_over_days = $1,
		    carryover_source_year = $2,
		    updated_at = NOW()
		WHERE id = $3
		AND (carryover_source_year IS NULL OR carryover_source_year <> $2)
	`

	_, err := q.Exec(ctx, query, days, sourceYear, balanceID)
	return err
}
