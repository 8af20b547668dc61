package employee

import (
	"context"
	"errors"
)

var ErrEmployeeNotFound = errors.New("Employee not found")

// EmployeeRepository - read-only interface for the employees table.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActive(ctx context.Context) ([]Employee, error)
}
