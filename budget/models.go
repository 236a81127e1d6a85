// Package budget defines the derived budget-metric entity: one per-day
// summary row recomputed from the cost ledger after every reconciliation.
package budget

import (
	"github.com/xraph/costwatch/types"
)

// MonthlyFactor converts a daily budget into the monthly figure stored on
// every metric row. It is a fixed approximation, not calendar-aware.
const MonthlyFactor = 30

// Metric is the derived daily budget summary for one date. Exactly one row
// exists per date that has at least one cost record. MonthToDate is a
// whole-month aggregate: every row of a given month carries the same value,
// recomputed fully on each reconciliation rather than accumulated.
type Metric struct {
	types.Entity

	Date          types.Date `json:"date"`
	DailyTotal    types.Cost `json:"daily_total"`
	DailyBudget   types.Cost `json:"daily_budget"`
	MonthlyBudget types.Cost `json:"monthly_budget"`
	MonthToDate   types.Cost `json:"month_to_date"`
}

// OverDailyBudget reports whether the day's total exceeds its budget.
func (m *Metric) OverDailyBudget() bool {
	return m.DailyTotal.GreaterThan(m.DailyBudget)
}

// OverMonthlyBudget reports whether the month-to-date total exceeds the
// monthly budget.
func (m *Metric) OverMonthlyBudget() bool {
	return m.MonthToDate.GreaterThan(m.MonthlyBudget)
}

// QueryOpts filters budget-metric listings. Zero values mean "no filter".
type QueryOpts struct {
	Start  types.Date
	End    types.Date
	Limit  int
	Offset int
}
