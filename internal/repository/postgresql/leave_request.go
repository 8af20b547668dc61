package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/deskware/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	id, request_number, employee_id, leave_type_id,
	start_date, end_date, requested_days, approved_days,
	status, priority, reason, medical_certificate_url,
	submitted_by, submitted_at, actual_return_date,
	created_at, updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	err := row.Scan(
		&req.ID, &req.RequestNumber, &req.EmployeeID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.RequestedDays, &req.ApprovedDays,
		&req.Status, &req.Priority, &req.Reason, &req.MedicalCertificateURL,
		&req.SubmittedBy, &req.SubmittedAt, &req.ActualReturnDate,
		&req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_requests (
			id, request_number, employee_id, leave_type_id,
			start_date, end_date, requested_days, approved_days,
			status, priority, reason, medical_certificate_url,
			submitted_by, submitted_at, actual_return_date,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.RequestNumber, request.EmployeeID, request.LeaveTypeID,
		request.StartDate, request.EndDate, request.RequestedDays, request.ApprovedDays,
		request.Status, request.Priority, request.Reason, request.MedicalCertificateURL,
		request.SubmittedBy, request.SubmittedAt, request.ActualReturnDate,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return req, nil
}

// GetByEmployeeID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE employee_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, employeeID)
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByStatus(ctx context.Context, status leave.RequestStatus) ([]leave.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE status = $1
		ORDER BY submitted_at NULLS LAST, created_at`
	return r.list(ctx, query, status)
}

// ListStartable implements leave.LeaveRequestRepository. Feeds the job that
// moves approved requests to in_progress once their start date arrives.
func (r *leaveRequestRepositoryImpl) ListStartable(ctx context.Context, asOf time.Time) ([]leave.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE status = 'approved' AND start_date <= $1
		ORDER BY start_date`
	return r.list(ctx, query, asOf)
}

func (r *leaveRequestRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// CountByEmployeeTypeYear implements leave.LeaveRequestRepository. Drafts,
// rejections and cancellations do not count against max_requests_per_year.
func (r *leaveRequestRepositoryImpl) CountByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM leave_requests
		WHERE employee_id = $1 AND leave_type_id = $2
		AND EXTRACT(YEAR FROM start_date) = $3
		AND status IN ('submitted', 'approved', 'in_progress', 'completed')
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, leaveTypeID, year).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CheckOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CheckOverlapping(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			AND status IN ('submitted', 'approved', 'in_progress')
			AND start_date <= $3 AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, startDate, endDate).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, req leave.UpdateLeaveRequestRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})

	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.RequestNumber != nil {
		updates["request_number"] = *req.RequestNumber
	}
	if req.RequestedDays != nil {
		updates["requested_days"] = *req.RequestedDays
	}
	if req.ApprovedDays != nil {
		updates["approved_days"] = *req.ApprovedDays
	}
	if req.SubmittedBy != nil {
		updates["submitted_by"] = *req.SubmittedBy
	}
	if req.SubmittedAt != nil {
		updates["submitted_at"] = *req.SubmittedAt
	}
	if req.ActualReturnDate != nil {
		updates["actual_return_date"] = *req.ActualReturnDate
	}

	if len(updates) == 0 {
		return fmt.Errorf("no updatable fields provided for leave request update")
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

	sql := "UPDATE leave_requests SET " +
		strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d", i)
	args = append(args, req.ID)

	var updatedID string
	if err := q.QueryRow(ctx, sql+" RETURNING id", args...).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return leave.ErrLeaveRequestNotFound
		}
		return fmt.Errorf("failed to update leave request with id %s: %w", req.ID, err)
	}
	return nil
}

// NextRequestNumber implements leave.LeaveRequestRepository. The per-year
// counter row is upserted and incremented in one statement; run inside the
// submission transaction it hands out gapless, strictly increasing numbers.
func (r *leaveRequestRepositoryImpl) NextRequestNumber(ctx context.Context, year int) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_request_sequences (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year)
		DO UPDATE SET last_value = leave_request_sequences.last_value + 1
		RETURNING last_value
	`

	var seq int64
	if err := q.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to advance request number sequence for %d: %w", year, err)
	}

	return fmt.Sprintf("LR-%d-%05d", year, seq), nil
}
