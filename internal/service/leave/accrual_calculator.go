package leave

import (
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/employee"
	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// AccrualCalculator computes the initial yearly allocation for an
// (employee, leave type, year) balance. It is pure: repositories feed it,
// it never touches storage.
type AccrualCalculator struct {
	// defaultServiceTiers applies to service_based types that define no
	// tiers of their own. Policy configuration, not code.
	defaultServiceTiers leave.ServiceTiers
}

func NewAccrualCalculator(defaultServiceTiers leave.ServiceTiers) *AccrualCalculator {
	return &AccrualCalculator{defaultServiceTiers: defaultServiceTiers}
}

// InitialAllocation returns the allocated_days for a new balance row of the
// given year, pro-rated when the employee was hired mid-year.
func (c *AccrualCalculator) InitialAllocation(leaveType leave.LeaveType, emp employee.Employee, year int) decimal.Decimal {
	switch leaveType.CalculationMethod {
	case leave.CalculationFixed:
		return leaveType.DefaultBalance

	case leave.CalculationYearly:
		return c.yearlyAllocation(leaveType.DefaultBalance, emp.HireDate, year)

	case leave.CalculationMonthly:
		return c.monthlyAllocation(leaveType.DefaultBalance, emp.HireDate, year)

	case leave.CalculationServiceBased:
		return c.serviceBasedAllocation(leaveType, emp, year)
	}

	return leaveType.DefaultBalance
}

// yearlyAllocation pro-rates by remaining_days_in_year / days_in_year when
// the employee was hired during the allocation year, rounded to 2 decimal
// places.
func (c *AccrualCalculator) yearlyAllocation(defaultBalance decimal.Decimal, hireDate time.Time, year int) decimal.Decimal {
	if hireDate.Year() != year {
		return defaultBalance
	}

	daysInYear := 365
	if isLeapYear(year) {
		daysInYear = 366
	}

	yearEnd := time.Date(year, 12, 31, 0, 0, 0, 0, hireDate.Location())
	remaining := int(yearEnd.Sub(hireDate).Hours()/24) + 1 // hire day counts

	return defaultBalance.
		Mul(decimal.NewFromInt(int64(remaining))).
		Div(decimal.NewFromInt(int64(daysInYear))).
		Round(2)
}

// monthlyAllocation grants default_balance / 12 per month remaining in the
// year, the hire month included.
func (c *AccrualCalculator) monthlyAllocation(defaultBalance decimal.Decimal, hireDate time.Time, year int) decimal.Decimal {
	monthsRemaining := 12
	if hireDate.Year() == year {
		monthsRemaining = 12 - int(hireDate.Month()) + 1
	}
	if monthsRemaining >= 12 {
		return defaultBalance
	}

	return defaultBalance.
		Div(decimal.NewFromInt(12)).
		Mul(decimal.NewFromInt(int64(monthsRemaining))).
		Round(2)
}

// serviceBasedAllocation adds the tier bonus for completed years of service
// as of the start of the allocation year.
func (c *AccrualCalculator) serviceBasedAllocation(leaveType leave.LeaveType, emp employee.Employee, year int) decimal.Decimal {
	tiers := leaveType.ServiceTiers
	if len(tiers) == 0 {
		tiers = c.defaultServiceTiers
	}

	startOfYear := time.Date(year, 1, 1, 0, 0, 0, 0, emp.HireDate.Location())
	bonus := tiers.BonusFor(emp.YearsOfService(startOfYear))

	return leaveType.DefaultBalance.Add(bonus)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
