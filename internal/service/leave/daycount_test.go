package leave

import (
	"testing"
	"time"

	holidaydom "github.com/deskware/hr-backend-go/internal/domain/holiday"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCountRequestedDaysCalendarDays(t *testing.T) {
	leaveType := leave.LeaveType{}

	// Mon Mar 9 through Sun Mar 15: 7 calendar days when nothing is excluded.
	got := CountRequestedDays(leaveType, "", date(2026, time.March, 9), date(2026, time.March, 15), nil)
	assert.True(t, got.Equal(decimal.NewFromInt(7)), "got %s", got)
}

func TestCountRequestedDaysExcludesWeekends(t *testing.T) {
	leaveType := leave.LeaveType{ExcludeWeekends: true}

	// Mon Mar 9 through Sun Mar 15: 5 working days.
	got := CountRequestedDays(leaveType, "", date(2026, time.March, 9), date(2026, time.March, 15), nil)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}

func TestCountRequestedDaysExcludesHolidays(t *testing.T) {
	leaveType := leave.LeaveType{ExcludeWeekends: true, ExcludeHolidays: true}
	holidays := []holidaydom.Holiday{
		{
			Name:                    "Company day",
			StartDate:               date(2026, time.March, 11),
			EndDate:                 date(2026, time.March, 11),
			AffectsLeaveCalculation: true,
		},
	}

	got := CountRequestedDays(leaveType, "", date(2026, time.March, 9), date(2026, time.March, 13), holidays)
	assert.True(t, got.Equal(decimal.NewFromInt(4)), "got %s", got)
}

func TestCountRequestedDaysIgnoresNonAffectingHolidays(t *testing.T) {
	leaveType := leave.LeaveType{ExcludeWeekends: true, ExcludeHolidays: true}
	holidays := []holidaydom.Holiday{
		{
			StartDate:               date(2026, time.March, 11),
			EndDate:                 date(2026, time.March, 11),
			AffectsLeaveCalculation: false,
		},
	}

	got := CountRequestedDays(leaveType, "", date(2026, time.March, 9), date(2026, time.March, 13), holidays)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}

func TestCountRequestedDaysDepartmentScopedHoliday(t *testing.T) {
	leaveType := leave.LeaveType{ExcludeWeekends: true, ExcludeHolidays: true}
	engineering := "dept-eng"
	holidays := []holidaydom.Holiday{
		{
			StartDate:               date(2026, time.March, 11),
			EndDate:                 date(2026, time.March, 11),
			AffectsLeaveCalculation: true,
			DepartmentID:            &engineering,
		},
	}

	got := CountRequestedDays(leaveType, "dept-eng", date(2026, time.March, 9), date(2026, time.March, 13), holidays)
	assert.True(t, got.Equal(decimal.NewFromInt(4)), "scoped holiday applies to its department, got %s", got)

	got = CountRequestedDays(leaveType, "dept-sales", date(2026, time.March, 9), date(2026, time.March, 13), holidays)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "scoped holiday skips other departments, got %s", got)
}

func TestCountRequestedDaysRecurringHoliday(t *testing.T) {
	leaveType := leave.LeaveType{ExcludeWeekends: true, ExcludeHolidays: true}
	holidays := []holidaydom.Holiday{
		{
			// Defined years ago, observed every year.
			StartDate:               date(2020, time.March, 11),
			EndDate:                 date(2020, time.March, 11),
			IsRecurring:             true,
			AffectsLeaveCalculation: true,
		},
	}

	got := CountRequestedDays(leaveType, "", date(2026, time.March, 9), date(2026, time.March, 13), holidays)
	assert.True(t, got.Equal(decimal.NewFromInt(4)), "got %s", got)
}

func TestCountRequestedDaysWeekendOnlyRange(t *testing.T) {
	leaveType := leave.LeaveType{ExcludeWeekends: true}

	// Sat Mar 14 through Sun Mar 15: nothing to count.
	got := CountRequestedDays(leaveType, "", date(2026, time.March, 14), date(2026, time.March, 15), nil)
	assert.True(t, got.IsZero(), "got %s", got)
}
