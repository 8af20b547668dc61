package postgresql

import (
	"context"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/deskware/hr-backend-go/internal/pkg/database"
)

// leaveApprovalRepositoryImpl is append-only on purpose: the decision log is
// the audit trail, so no update or delete statement exists anywhere in this
// file.
type leaveApprovalRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApprovalRepository(db *database.DB) leave.LeaveApprovalRepository {
	return &leaveApprovalRepositoryImpl{db: db}
}

// Create implements leave.LeaveApprovalRepository.
func (r *leaveApprovalRepositoryImpl) Create(ctx context.Context, approval leave.LeaveApproval) (leave.LeaveApproval, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_approvals (
			id, leave_request_id, approver_id, approval_level,
			action, approved_days, comments, created_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, NOW()
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		approval.LeaveRequestID, approval.ApproverID, approval.ApprovalLevel,
		approval.Action, approval.ApprovedDays, approval.Comments,
	).Scan(&approval.ID, &approval.CreatedAt)

	if err != nil {
		return leave.LeaveApproval{}, err
	}

	return approval, nil
}

// GetByRequestID implements leave.LeaveApprovalRepository.
func (r *leaveApprovalRepositoryImpl) GetByRequestID(ctx context.Context, requestID string) ([]leave.LeaveApproval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, leave_request_id, approver_id, approval_level,
		       action, approved_days, comments, created_at
		FROM leave_approvals
		WHERE leave_request_id = $1
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := make([]leave.LeaveApproval, 0)
	for rows.Next() {
		var a leave.LeaveApproval
		if err := rows.Scan(
			&a.ID, &a.LeaveRequestID, &a.ApproverID, &a.ApprovalLevel,
			&a.Action, &a.ApprovedDays, &a.Comments, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}

	return approvals, rows.Err()
}
