// Package store defines the unified ledger storage interface.
package store

import (
	"context"

	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/record"
	"github.com/xraph/costwatch/types"
)

// Store is the unified storage interface for the cost ledger. It covers the
// cost-record and budget-metric tables plus store lifecycle. Instead of
// embedding the per-entity sub-interfaces, all methods are declared
// explicitly to avoid naming conflicts.
//
// Reads carry no ordering guarantee and drivers carry no aggregation logic;
// the engine reads rows and sums them with exact decimal arithmetic.
//
// ReplaceDays must behave as an atomic replace of the given key set where
// the backend allows it (memory driver: atomic swap under lock). Backends
// without multi-statement transactions must at minimum guarantee that a
// failure mid-replace never leaves duplicate rows for a key nor a
// previously-populated date with no rows at all.
type Store interface {
	// Cost record methods
	ReplaceDays(ctx context.Context, days []types.Date, records []*record.CostRecord) error
	ListRecords(ctx context.Context, opts record.QueryOpts) ([]*record.CostRecord, error)
	RecordsByDates(ctx context.Context, dates []types.Date) ([]*record.CostRecord, error)
	RecordsByMonth(ctx context.Context, month types.YearMonth) ([]*record.CostRecord, error)

	// Budget metric methods
	PutMetrics(ctx context.Context, metrics []*budget.Metric) error
	GetMetric(ctx context.Context, day types.Date) (*budget.Metric, error)
	ListMetrics(ctx context.Context, opts budget.QueryOpts) ([]*budget.Metric, error)
	MetricsByMonth(ctx context.Context, month types.YearMonth) ([]*budget.Metric, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
