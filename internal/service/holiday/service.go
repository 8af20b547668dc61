package holiday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/pkg/validator"
)

// Service manages the holiday calendar consumed by leave-day calculation.
type Service struct {
	holiday.HolidayRepository
}

func NewService(holidayRepository holiday.HolidayRepository) *Service {
	return &Service{HolidayRepository: holidayRepository}
}

type CreateHolidayRequest struct {
	Name                    string  `json:"holiday_name"`
	Type                    string  `json:"holiday_type"`
	StartDate               string  `json:"start_date"`
	EndDate                 string  `json:"end_date"`
	IsRecurring             bool    `json:"is_recurring"`
	AffectsLeaveCalculation bool    `json:"affects_leave_calculation"`
	DepartmentID            *string `json:"department_id,omitempty"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "holiday_name",
			Message: "holiday_name is required",
		})
	}

	switch holiday.HolidayType(r.Type) {
	case holiday.TypePublic, holiday.TypeReligious, holiday.TypeCompany:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "holiday_type",
			Message: "holiday_type must be one of public, religious, company",
		})
	}

	startDate, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date (YYYY-MM-DD)",
		})
	}
	endDate, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date (YYYY-MM-DD)",
		})
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (s *Service) CreateHoliday(ctx context.Context, req CreateHolidayRequest) (holiday.Holiday, error) {
	if err := req.Validate(); err != nil {
		return holiday.Holiday{}, err
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)

	created, err := s.HolidayRepository.Create(ctx, holiday.Holiday{
		Name:                    req.Name,
		Type:                    holiday.HolidayType(req.Type),
		StartDate:               startDate,
		EndDate:                 endDate,
		IsRecurring:             req.IsRecurring,
		AffectsLeaveCalculation: req.AffectsLeaveCalculation,
		DepartmentID:            req.DepartmentID,
	})
	if err != nil {
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	slog.Info("Created holiday", "holiday_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) GetHoliday(ctx context.Context, id string) (holiday.Holiday, error) {
	return s.HolidayRepository.GetByID(ctx, id)
}

func (s *Service) GetHolidays(ctx context.Context) ([]holiday.Holiday, error) {
	return s.HolidayRepository.GetAll(ctx)
}

// GetHolidaysInRange returns holidays overlapping [from, to], including
// recurring ones that land in the range.
func (s *Service) GetHolidaysInRange(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	return s.HolidayRepository.GetByDateRange(ctx, from, to)
}

func (s *Service) DeleteHoliday(ctx context.Context, id string) error {
	if _, err := s.HolidayRepository.GetByID(ctx, id); err != nil {
		return err
	}
	return s.HolidayRepository.Delete(ctx, id)
}
