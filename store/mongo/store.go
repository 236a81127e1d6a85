// Package mongo implements the Costwatch store on MongoDB via Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	costwatch "github.com/xraph/costwatch"
	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/record"
	costwatchstore "github.com/xraph/costwatch/store"
	"github.com/xraph/costwatch/types"
)

// Collection name constants.
const (
	colCostRecords   = "costwatch_cost_records"
	colBudgetMetrics = "costwatch_budget_metrics"
)

// compile-time interface check
var _ costwatchstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the costwatch collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("costwatch/mongo: migrate %s indexes: %w", col, err)
		}
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
// affected dates that the batch no longer carries. The _id is the natural
// key, so no intermediate state ever holds duplicate rows and a previously
// populated date is never observed empty.
func (s *Store) ReplaceDays(ctx context.Context, days []types.Date, records []*record.CostRecord) error {
	if len(days) == 0 {
		return nil
	}

	keep := make([]string, 0, len(records))
	for _, r := range records {
		m := toCostRecordModel(r)
		keep = append(keep, m.ID)

		_, err := s.mdb.NewUpdate((*costRecordModel)(nil)).
			Filter(bson.M{"_id": m.ID}).
			SetUpdate(bson.M{"$set": bson.M{
				"_id":        m.ID,
				"date":       m.Date,
				"service":    m.Service,
				"region":     m.Region,
				"cost":       m.Cost,
				"created_at": m.CreatedAt,
				"updated_at": m.UpdatedAt,
			}}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("costwatch/mongo: upsert record: %w", err)
		}
	}

	dayStrings := make([]string, len(days))
	for i, d := range days {
		dayStrings[i] = d.String()
	}

	_, err := s.mdb.NewDelete((*costRecordModel)(nil)).
		Filter(bson.M{
			"date": bson.M{"$in": dayStrings},
			"_id":  bson.M{"$nin": keep},
		}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("costwatch/mongo: prune stale records: %w", err)
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, opts record.QueryOpts) ([]*record.CostRecord, error) {
	filter := bson.M{}
	if opts.Service != "" {
		filter["service"] = opts.Service
	}
	if opts.Region != "" {
		filter["region"] = opts.Region
	}
	dateRange := bson.M{}
	if !opts.Start.IsZero() {
		dateRange["$gte"] = opts.Start.String()
	}
	if !opts.End.IsZero() {
		dateRange["$lte"] = opts.End.String()
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	var models []costRecordModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "date", Value: 1}, {Key: "service", Value: 1}, {Key: "region", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("costwatch/mongo: list records: %w", err)
	}

	return fromCostRecordModels(models)
}

func (s *Store) RecordsByDates(ctx context.Context, dates []types.Date) ([]*record.CostRecord, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	dayStrings := make([]string, len(dates))
	for i, d := range dates {
		dayStrings[i] = d.String()
	}

	var models []costRecordModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"date": bson.M{"$in": dayStrings}}).
		Sort(bson.D{{Key: "date", Value: 1}, {Key: "service", Value: 1}, {Key: "region", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("costwatch/mongo: records by dates: %w", err)
	}

	return fromCostRecordModels(models)
}

func (s *Store) RecordsByMonth(ctx context.Context, month types.YearMonth) ([]*record.CostRecord, error) {
	var models []costRecordModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"date": bson.M{
			"$gte": month.First().String(),
			"$lte": month.Last().String(),
		}}).
		Sort(bson.D{{Key: "date", Value: 1}, {Key: "service", Value: 1}, {Key: "region", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("costwatch/mongo: records by month: %w", err)
	}

	return fromCostRecordModels(models)
}

// ==================== Budget Metric Store ====================

func (s *Store) PutMetrics(ctx context.Context, metrics []*budget.Metric) error {
	for _, metric := range metrics {
		m := toBudgetMetricModel(metric)

		_, err := s.mdb.NewUpdate((*budgetMetricModel)(nil)).
			Filter(bson.M{"_id": m.Date}).
			SetUpdate(bson.M{"$set": bson.M{
				"_id":            m.Date,
				"daily_total":    m.DailyTotal,
				"daily_budget":   m.DailyBudget,
				"monthly_budget": m.MonthlyBudget,
				"month_to_date":  m.MonthToDate,
				"created_at":     m.CreatedAt,
				"updated_at":     m.UpdatedAt,
			}}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("costwatch/mongo: put metric: %w", err)
		}
	}
	return nil
}

func (s *Store) GetMetric(ctx context.Context, day types.Date) (*budget.Metric, error) {
	var m budgetMetricModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": day.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, costwatch.ErrNotFound
		}
		return nil, fmt.Errorf("costwatch/mongo: get metric: %w", err)
	}
	return fromBudgetMetricModel(&m)
}

func (s *Store) ListMetrics(ctx context.Context, opts budget.QueryOpts) ([]*budget.Metric, error) {
	filter := bson.M{}
	dateRange := bson.M{}
	if !opts.Start.IsZero() {
		dateRange["$gte"] = opts.Start.String()
	}
	if !opts.End.IsZero() {
		dateRange["$lte"] = opts.End.String()
	}
	if len(dateRange) > 0 {
		filter["_id"] = dateRange
	}

	var models []budgetMetricModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("costwatch/mongo: list metrics: %w", err)
	}

	return fromBudgetMetricModels(models)
}

func (s *Store) MetricsByMonth(ctx context.Context, month types.YearMonth) ([]*budget.Metric, error) {
	var models []budgetMetricModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{
			"$gte": month.First().String(),
			"$lte": month.Last().String(),
		}}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("costwatch/mongo: metrics by month: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the costwatch collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colCostRecords: {
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "service", Value: 1}, {Key: "date", Value: 1}}},
		},
		colBudgetMetrics: {},
	}
}
