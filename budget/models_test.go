package budget

import (
	"testing"

	"github.com/xraph/costwatch/types"
)

func TestOverBudget(t *testing.T) {
	tests := []struct {
		name        string
		metric      Metric
		overDaily   bool
		overMonthly bool
	}{
		{
			"under both",
			Metric{
				DailyTotal:    types.MustCost("0.20"),
				DailyBudget:   types.MustCost("0.33"),
				MonthlyBudget: types.MustCost("9.90"),
				MonthToDate:   types.MustCost("4.00"),
			},
			false, false,
		},
		{
			"over daily only",
			Metric{
				DailyTotal:    types.MustCost("0.50"),
				DailyBudget:   types.MustCost("0.33"),
				MonthlyBudget: types.MustCost("9.90"),
				MonthToDate:   types.MustCost("4.00"),
			},
			true, false,
		},
		{
			"over monthly only",
			Metric{
				DailyTotal:    types.MustCost("0.20"),
				DailyBudget:   types.MustCost("0.33"),
				MonthlyBudget: types.MustCost("9.90"),
				MonthToDate:   types.MustCost("12.00"),
			},
			false, true,
		},
		{
			"exactly at budget is not over",
			Metric{
				DailyTotal:    types.MustCost("0.33"),
				DailyBudget:   types.MustCost("0.33"),
				MonthlyBudget: types.MustCost("9.90"),
				MonthToDate:   types.MustCost("9.90"),
			},
			false, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metric.OverDailyBudget(); got != tt.overDaily {
				t.Errorf("OverDailyBudget = %v, want %v", got, tt.overDaily)
			}
			if got := tt.metric.OverMonthlyBudget(); got != tt.overMonthly {
				t.Errorf("OverMonthlyBudget = %v, want %v", got, tt.overMonthly)
			}
		})
	}
}
