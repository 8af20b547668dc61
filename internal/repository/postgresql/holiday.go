package postgresql

import (
	"context"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `
	id, name, type, start_date, end_date, is_recurring,
	affects_leave_calculation, department_id, created_at, updated_at`

func scanHoliday(row pgx.Row) (holiday.Holiday, error) {
	var h holiday.Holiday
	err := row.Scan(
		&h.ID, &h.Name, &h.Type, &h.StartDate, &h.EndDate, &h.IsRecurring,
		&h.AffectsLeaveCalculation, &h.DepartmentID, &h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO holidays (
			id, name, type, start_date, end_date, is_recurring,
			affects_leave_calculation, department_id, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5,
			$6, $7, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		h.Name, h.Type, h.StartDate, h.EndDate, h.IsRecurring,
		h.AffectsLeaveCalculation, h.DepartmentID,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)

	if err != nil {
		return holiday.Holiday{}, err
	}

	return h, nil
}

// GetByID implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE id = $1`

	h, err := scanHoliday(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, err
	}
	return h, nil
}

// GetByDateRange implements holiday.HolidayRepository. Recurring holidays
// are returned regardless of their stored year; the entity's Covers method
// resolves recurrence against concrete dates.
func (r *holidayRepositoryImpl) GetByDateRange(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	query := `SELECT ` + holidayColumns + `
		FROM holidays
		WHERE is_recurring OR (start_date <= $2 AND end_date >= $1)
		ORDER BY start_date`
	return r.list(ctx, query, from, to)
}

// GetAll implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) GetAll(ctx context.Context) ([]holiday.Holiday, error) {
	return r.list(ctx, `SELECT `+holidayColumns+` FROM holidays ORDER BY start_date`)
}

func (r *holidayRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]holiday.Holiday, 0)
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

// Update implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Update(ctx context.Context, h holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE holidays
		SET name = $1, type = $2, start_date = $3, end_date = $4,
		    is_recurring = $5, affects_leave_calculation = $6, department_id = $7,
		    updated_at = NOW()
		WHERE id = $8
	`

	result, err := q.Exec(ctx, query,
		h.Name, h.Type, h.StartDate, h.EndDate,
		h.IsRecurring, h.AffectsLeaveCalculation, h.DepartmentID,
		h.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() != 1 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() != 1 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}
