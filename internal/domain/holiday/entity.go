package holiday

import "time"

type HolidayType string

const (
	TypePublic    HolidayType = "public"
	TypeReligious HolidayType = "religious"
	TypeCompany   HolidayType = "company"
)

// Holiday entity. Read-only input to leave-day calculation: the workflow
// never mutates holidays, it only asks which dates fall inside a range.
type Holiday struct {
	ID          string
	Name        string
	Type        HolidayType
	StartDate   time.Time
	EndDate     time.Time
	IsRecurring bool // observed every year on the same calendar dates

	// AffectsLeaveCalculation controls whether the holiday is excluded from
	// requested-day computation for leave types with ExcludeHolidays set.
	AffectsLeaveCalculation bool

	// DepartmentID restricts applicability; nil means company-wide.
	DepartmentID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether date falls inside the holiday, accounting for
// yearly recurrence.
func (h Holiday) Covers(date time.Time) bool {
	start, end := h.StartDate, h.EndDate
	if h.IsRecurring {
		start = time.Date(date.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		end = time.Date(date.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
		// Ranges like Dec 30 - Jan 2 wrap across the year boundary.
		if end.Before(start) {
			return !date.Before(start) || !date.After(end)
		}
	}
	return !date.Before(start) && !date.After(end)
}

// AppliesTo reports whether the holiday applies to the given department.
func (h Holiday) AppliesTo(departmentID string) bool {
	return h.DepartmentID == nil || *h.DepartmentID == departmentID
}
