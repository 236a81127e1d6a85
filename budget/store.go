package budget

import (
	"context"

	"github.com/xraph/costwatch/types"
)

// Store is the budget-metric portion of the ledger store.
type Store interface {
	// PutMetrics writes or replaces the metric row for each date in metrics.
	PutMetrics(ctx context.Context, metrics []*Metric) error

	// GetMetric returns the metric row for a date.
	GetMetric(ctx context.Context, day types.Date) (*Metric, error)

	// ListMetrics returns metrics matching opts, in no guaranteed order.
	ListMetrics(ctx context.Context, opts QueryOpts) ([]*Metric, error)

	// MetricsByMonth returns all metric rows whose date falls in month.
	MetricsByMonth(ctx context.Context, month types.YearMonth) ([]*Metric, error)
}
