// Package sqlite implements the Costwatch store on SQLite via Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	costwatch "github.com/xraph/costwatch"
	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/record"
	costwatchstore "github.com/xraph/costwatch/store"
	"github.com/xraph/costwatch/types"
)

// compile-time interface check
var _ costwatchstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("costwatch/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("costwatch/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Cost Record Store ====================

// ReplaceDays upserts the batch's rows first, then prunes rows for the
// affected dates that the batch no longer carries. The natural-key primary
// key means no intermediate state ever holds duplicate rows, and a
// previously populated date is never observed empty; a crash between the
// two statements is healed by re-running the same batch.
func (s *Store) ReplaceDays(ctx context.Context, days []types.Date, records []*record.CostRecord) error {
	if len(days) == 0 {
		return nil
	}

	if len(records) > 0 {
		models := make([]costRecordModel, len(records))
		for i, r := range records {
			models[i] = *toCostRecordModel(r)
		}
		_, err := s.sdb.NewInsert(&models).
			OnConflict("(id) DO UPDATE").
			Set("cost = EXCLUDED.cost").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	keep := make([]string, 0, len(records))
	for _, r := range records {
		keep = append(keep, r.Key())
	}

	for _, day := range days {
		q := s.sdb.NewDelete((*costRecordModel)(nil)).
			Where("date = ?", day.String())
		if len(keep) > 0 {
			q = q.Where("id NOT IN ("+placeholders(len(keep))+")", asArgs(keep)...)
		}
		if _, err := q.Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) ListRecords(ctx context.Context, opts record.QueryOpts) ([]*record.CostRecord, error) {
	var models []costRecordModel
	q := s.sdb.NewSelect(&models)

	if opts.Service != "" {
		q = q.Where("service = ?", opts.Service)
	}
	if opts.Region != "" {
		q = q.Where("region = ?", opts.Region)
	}
	if !opts.Start.IsZero() {
		q = q.Where("date >= ?", opts.Start.String())
	}
	if !opts.End.IsZero() {
		q = q.Where("date <= ?", opts.End.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("date ASC, service ASC, region ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return fromCostRecordModels(models)
}

func (s *Store) RecordsByDates(ctx context.Context, dates []types.Date) ([]*record.CostRecord, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(dates))
	for i, d := range dates {
		args[i] = d.String()
	}

	var models []costRecordModel
	err := s.sdb.NewSelect(&models).
		Where("date IN ("+placeholders(len(dates))+")", args...).
		OrderExpr("date ASC, service ASC, region ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return fromCostRecordModels(models)
}

func (s *Store) RecordsByMonth(ctx context.Context, month types.YearMonth) ([]*record.CostRecord, error) {
	var models []costRecordModel
	err := s.sdb.NewSelect(&models).
		Where("date >= ?", month.First().String()).
		Where("date <= ?", month.Last().String()).
		OrderExpr("date ASC, service ASC, region ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return fromCostRecordModels(models)
}

// ==================== Budget Metric Store ====================

func (s *Store) PutMetrics(ctx context.Context, metrics []*budget.Metric) error {
	if len(metrics) == 0 {
		return nil
	}

	models := make([]budgetMetricModel, len(metrics))
	for i, m := range metrics {
		models[i] = *toBudgetMetricModel(m)
	}

	_, err := s.sdb.NewInsert(&models).
		OnConflict("(date) DO UPDATE").
		Set("daily_total = EXCLUDED.daily_total").
		Set("daily_budget = EXCLUDED.daily_budget").
		Set("monthly_budget = EXCLUDED.monthly_budget").
		Set("month_to_date = EXCLUDED.month_to_date").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetMetric(ctx context.Context, day types.Date) (*budget.Metric, error) {
	m := new(budgetMetricModel)
	err := s.sdb.NewSelect(m).
		Where("date = ?", day.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, costwatch.ErrNotFound
		}
		return nil, err
	}
	return fromBudgetMetricModel(m)
}

func (s *Store) ListMetrics(ctx context.Context, opts budget.QueryOpts) ([]*budget.Metric, error) {
	var models []budgetMetricModel
	q := s.sdb.NewSelect(&models)

	if !opts.Start.IsZero() {
		q = q.Where("date >= ?", opts.Start.String())
	}
	if !opts.End.IsZero() {
		q = q.Where("date <= ?", opts.End.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("date ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return fromBudgetMetricModels(models)
}

func (s *Store) MetricsByMonth(ctx context.Context, month types.YearMonth) ([]*budget.Metric, error) {
	var models []budgetMetricModel
	err := s.sdb.NewSelect(&models).
		Where("date >= ?", month.First().String()).
		Where("date <= ?", month.Last().String()).
		OrderExpr("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return fromBudgetMetricModels(models)
}

// ==================== Helpers ====================

func fromCostRecordModels(models []costRecordModel) ([]*record.CostRecord, error) {
	result := make([]*record.CostRecord, len(models))
	for i := range models {
		r, err := fromCostRecordModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

func fromBudgetMetricModels(models []budgetMetricModel) ([]*budget.Metric, error) {
	result := make([]*budget.Metric, len(models))
	for i := range models {
		m, err := fromBudgetMetricModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = m
	}
	return result, nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func asArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
