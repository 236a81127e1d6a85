package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/record"
	"github.com/xraph/costwatch/types"
)

// Cost amounts are stored as their canonical decimal strings. BSON doubles
// would round Cost Explorer's long fractional amounts.

// ==================== Cost record models ====================

type costRecordModel struct {
	grove.BaseModel `grove:"table:costwatch_cost_records"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Date      string    `grove:"date"       bson:"date"`
	Service   string    `grove:"service"    bson:"service"`
	Region    string    `grove:"region"     bson:"region"`
	Cost      string    `grove:"cost"       bson:"cost"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toCostRecordModel(r *record.CostRecord) *costRecordModel {
	return &costRecordModel{
		ID:        r.Key(),
		Date:      r.Date.String(),
		Service:   r.Service,
		Region:    r.Region,
		Cost:      r.Cost.String(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromCostRecordModel(m *costRecordModel) (*record.CostRecord, error) {
	date, err := types.ParseDate(m.Date)
	if err != nil {
		return nil, err
	}

	cost, err := types.ParseCost(m.Cost)
	if err != nil {
		return nil, err
	}

	return &record.CostRecord{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Date:    date,
		Service: m.Service,
		Region:  m.Region,
		Cost:    cost,
	}, nil
}

// ==================== Budget metric models ====================

type budgetMetricModel struct {
	grove.BaseModel `grove:"table:costwatch_budget_metrics"`

	Date          string    `grove:"date,pk"        bson:"_id"`
	DailyTotal    string    `grove:"daily_total"    bson:"daily_total"`
	DailyBudget   string    `grove:"daily_budget"   bson:"daily_budget"`
	MonthlyBudget string    `grove:"monthly_budget" bson:"monthly_budget"`
	MonthToDate   string    `grove:"month_to_date"  bson:"month_to_date"`
	CreatedAt     time.Time `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"     bson:"updated_at"`
}

func toBudgetMetricModel(m *budget.Metric) *budgetMetricModel {
	return &budgetMetricModel{
		Date:          m.Date.String(),
		DailyTotal:    m.DailyTotal.String(),
		DailyBudget:   m.DailyBudget.String(),
		MonthlyBudget: m.MonthlyBudget.String(),
		MonthToDate:   m.MonthToDate.String(),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromBudgetMetricModel(m *budgetMetricModel) (*budget.Metric, error) {
	date, err := types.ParseDate(m.Date)
	if err != nil {
		return nil, err
	}

	dailyTotal, err := types.ParseCost(m.DailyTotal)
	if err != nil {
		return nil, err
	}

	dailyBudget, err := types.ParseCost(m.DailyBudget)
	if err != nil {
		return nil, err
	}

	monthlyBudget, err := types.ParseCost(m.MonthlyBudget)
	if err != nil {
		return nil, err
	}

	monthToDate, err := types.ParseCost(m.MonthToDate)
	if err != nil {
		return nil, err
	}

	return &budget.Metric{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Date:          date,
		DailyTotal:    dailyTotal,
		DailyBudget:   dailyBudget,
		MonthlyBudget: monthlyBudget,
		MonthToDate:   monthToDate,
	}, nil
}
