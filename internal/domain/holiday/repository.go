package holiday

import (
	"context"
	"errors"
	"time"
)

var ErrHolidayNotFound = errors.New("Holiday not found")

// HolidayRepository - interface for holidays table
type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	GetByID(ctx context.Context, id string) (Holiday, error)
	// GetByDateRange returns holidays overlapping [from, to], recurring ones included.
	GetByDateRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
	GetAll(ctx context.Context) ([]Holiday, error)
	Update(ctx context.Context, h Holiday) error
	Delete(ctx context.Context, id string) error
}
