package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/deskware/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

const leaveTypeColumns = `
	id, name, code, description,
	is_active, is_paid, requires_approval, requires_medical_certificate,
	calculation_method, default_balance, max_balance, service_tiers,
	min_days_per_request, max_days_per_request, max_requests_per_year,
	min_advance_notice_days, gender_restriction, exclude_weekends, exclude_holidays,
	allow_carryover, max_carryover_days, carryover_expiry_months,
	created_at, updated_at`

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(
		&lt.ID, &lt.Name, &lt.Code, &lt.Description,
		&lt.IsActive, &lt.IsPaid, &lt.RequiresApproval, &lt.RequiresMedicalCertificate,
		&lt.CalculationMethod, &lt.DefaultBalance, &lt.MaxBalance, &lt.ServiceTiers,
		&lt.MinDaysPerRequest, &lt.MaxDaysPerRequest, &lt.MaxRequestsPerYear,
		&lt.MinAdvanceNoticeDays, &lt.GenderRestriction, &lt.ExcludeWeekends, &lt.ExcludeHolidays,
		&lt.AllowCarryover, &lt.MaxCarryoverDays, &lt.CarryoverExpiryMonths,
		&lt.CreatedAt, &lt.UpdatedAt,
	)
	return lt, err
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_types (
			id, name, code, description,
			is_active, is_paid, requires_approval, requires_medical_certificate,
			calculation_method, default_balance, max_balance, service_tiers,
			min_days_per_request, max_days_per_request, max_requests_per_year,
			min_advance_notice_days, gender_restriction, exclude_weekends, exclude_holidays,
			allow_carryover, max_carryover_days, carryover_expiry_months,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		lt.Name, lt.Code, lt.Description,
		lt.IsActive, lt.IsPaid, lt.RequiresApproval, lt.RequiresMedicalCertificate,
		lt.CalculationMethod, lt.DefaultBalance, lt.MaxBalance, lt.ServiceTiers,
		lt.MinDaysPerRequest, lt.MaxDaysPerRequest, lt.MaxRequestsPerYear,
		lt.MinAdvanceNoticeDays, lt.GenderRestriction, lt.ExcludeWeekends, lt.ExcludeHolidays,
		lt.AllowCarryover, lt.MaxCarryoverDays, lt.CarryoverExpiryMonths,
	).Scan(&lt.ID, &lt.CreatedAt, &lt.UpdatedAt)

	if err != nil {
		return leave.LeaveType{}, err
	}

	return lt, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE id = $1`

	lt, err := scanLeaveType(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, err
	}
	return lt, nil
}

// GetAll implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetAll(ctx context.Context) ([]leave.LeaveType, error) {
	return r.list(ctx, `SELECT `+leaveTypeColumns+` FROM leave_types ORDER BY name`)
}

// GetActive implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetActive(ctx context.Context) ([]leave.LeaveType, error) {
	return r.list(ctx, `SELECT `+leaveTypeColumns+` FROM leave_types WHERE is_active ORDER BY name`)
}

func (r *leaveTypeRepositoryImpl) list(ctx context.Context, query string) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]leave.LeaveType, 0)
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, lt)
	}

	return types, rows.Err()
}

// Update implements leave.LeaveTypeRepository. Only administrative
// corrections go through here; allocation rules for referenced types are
// otherwise immutable.
func (r *leaveTypeRepositoryImpl) Update(ctx context.Context, req leave.UpdateLeaveTypeRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.DefaultBalance != nil {
		updates["default_balance"] = *req.DefaultBalance
	}
	if req.MaxBalance != nil {
		updates["max_balance"] = *req.MaxBalance
	}
	if req.ServiceTiers != nil {
		updates["service_tiers"] = req.ServiceTiers
	}
	if req.MaxCarryoverDays != nil {
		updates["max_carryover_days"] = *req.MaxCarryoverDays
	}

	if len(updates) == 0 {
		return fmt.Errorf("no updatable fields provided for leave type update")
	}
	updates["updated_at"] = time.Now()

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}

	sql := "UPDATE leave_types SET " +
		strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d", i)
	args = append(args, req.ID)

	var updatedID string
	if err := q.QueryRow(ctx, sql+" RETURNING id", args...).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return leave.ErrLeaveTypeNotFound
		}
		return fmt.Errorf("failed to update leave type with id %s: %w", req.ID, err)
	}
	return nil
}

// Delete implements leave.LeaveTypeRepository. Types referenced by balances
// or requests are protected by foreign keys and report ErrLeaveTypeInUse.
func (r *leaveTypeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	query := `DELETE FROM leave_types WHERE id = $1`

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return leave.ErrLeaveTypeInUse
		}
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveTypeNotFound
	}
	return nil
}
