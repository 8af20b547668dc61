package employee

import "time"

// Employee is the read-only view of the external employee directory that
// the leave core needs: identity, hire date, department and gender feed
// accrual and restriction checks. Nothing here is mutated by this module.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	Gender       Gender
	DepartmentID string
	HireDate     time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// YearsOfService returns completed full years of service as of the given date.
func (e Employee) YearsOfService(asOf time.Time) int {
	years := asOf.Year() - e.HireDate.Year()
	anniversary := e.HireDate.AddDate(years, 0, 0)
	if anniversary.After(asOf) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
