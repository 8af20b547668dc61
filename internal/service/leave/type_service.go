package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
)

// TypeService manages leave type policy definitions.
type TypeService struct {
	leave.LeaveTypeRepository
}

func NewTypeService(typeRepository leave.LeaveTypeRepository) *TypeService {
	return &TypeService{LeaveTypeRepository: typeRepository}
}

func (s *TypeService) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveType, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveType{}, err
	}

	created, err := s.LeaveTypeRepository.Create(ctx, leave.LeaveType{
		Name:                       req.Name,
		Code:                       req.Code,
		Description:                req.Description,
		IsActive:                   true,
		IsPaid:                     req.IsPaid,
		RequiresApproval:           req.RequiresApproval,
		RequiresMedicalCertificate: req.RequiresMedicalCertificate,
		CalculationMethod:          leave.CalculationMethod(req.CalculationMethod),
		DefaultBalance:             req.DefaultBalance,
		MaxBalance:                 req.MaxBalance,
		ServiceTiers:               req.ServiceTiers,
		MinDaysPerRequest:          req.MinDaysPerRequest,
		MaxDaysPerRequest:          req.MaxDaysPerRequest,
		MaxRequestsPerYear:         req.MaxRequestsPerYear,
		MinAdvanceNoticeDays:       req.MinAdvanceNoticeDays,
		GenderRestriction:          leave.GenderRestriction(req.GenderRestriction),
		ExcludeWeekends:            req.ExcludeWeekends,
		ExcludeHolidays:            req.ExcludeHolidays,
		AllowCarryover:             req.AllowCarryover,
		MaxCarryoverDays:           req.MaxCarryoverDays,
		CarryoverExpiryMonths:      req.CarryoverExpiryMonths,
	})
	if err != nil {
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}

	slog.Info("Created leave type", "leave_type_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *TypeService) GetLeaveType(ctx context.Context, id string) (leave.LeaveType, error) {
	return s.LeaveTypeRepository.GetByID(ctx, id)
}

func (s *TypeService) GetLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	if activeOnly {
		return s.LeaveTypeRepository.GetActive(ctx)
	}
	return s.LeaveTypeRepository.GetAll(ctx)
}

func (s *TypeService) UpdateLeaveType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveType, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveType{}, err
	}

	if _, err := s.LeaveTypeRepository.GetByID(ctx, req.ID); err != nil {
		return leave.LeaveType{}, err
	}
	if err := s.LeaveTypeRepository.Update(ctx, req); err != nil {
		return leave.LeaveType{}, fmt.Errorf("failed to update leave type: %w", err)
	}

	return s.LeaveTypeRepository.GetByID(ctx, req.ID)
}

// DeleteLeaveType removes a leave type. Types referenced by balances or
// requests cannot be deleted; deactivate them instead.
func (s *TypeService) DeleteLeaveType(ctx context.Context, id string) error {
	if _, err := s.LeaveTypeRepository.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.LeaveTypeRepository.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Deleted leave type", "leave_type_id", id)
	return nil
}
