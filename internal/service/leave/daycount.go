package leave

import (
	"time"

	holidaydom "github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// CountRequestedDays computes the deterministic day count for a date range
// under a leave type's exclusion flags. Weekends are skipped when the type
// excludes them; holidays are skipped when the type excludes them, the
// holiday affects leave calculation, and it applies to the employee's
// department. The result is what submit reserves; it is never hand-edited
// afterwards.
func CountRequestedDays(
	leaveType leave.LeaveType,
	departmentID string,
	startDate, endDate time.Time,
	holidays []holidaydom.Holiday,
) decimal.Decimal {
	days := decimal.Zero
	one := decimal.NewFromInt(1)

	for current := startDate; !current.After(endDate); current = current.AddDate(0, 0, 1) {
		if leaveType.ExcludeWeekends &&
			(current.Weekday() == time.Saturday || current.Weekday() == time.Sunday) {
			continue
		}
		if leaveType.ExcludeHolidays && isHoliday(current, departmentID, holidays) {
			continue
		}
		days = days.Add(one)
	}

	return days
}

func isHoliday(date time.Time, departmentID string, holidays []holidaydom.Holiday) bool {
	for _, h := range holidays {
		if !h.AffectsLeaveCalculation {
			continue
		}
		if !h.AppliesTo(departmentID) {
			continue
		}
		if h.Covers(date) {
			return true
		}
	}
	return false
}
