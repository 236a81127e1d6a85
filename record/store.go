package record

import (
	"context"

	"github.com/xraph/costwatch/types"
)

// Store is the cost-record portion of the ledger store.
type Store interface {
	// ReplaceDays removes every existing record whose date falls in days and
	// inserts records, as one logical unit. The incoming rows are
	// authoritative and complete for each affected day; partial-day merges
	// are not supported.
	ReplaceDays(ctx context.Context, days []types.Date, records []*CostRecord) error

	// ListRecords returns records matching opts, in no guaranteed order.
	ListRecords(ctx context.Context, opts QueryOpts) ([]*CostRecord, error)

	// RecordsByDates returns all records whose date is in dates.
	RecordsByDates(ctx context.Context, dates []types.Date) ([]*CostRecord, error)

	// RecordsByMonth returns all records whose date falls in month.
	RecordsByMonth(ctx context.Context, month types.YearMonth) ([]*CostRecord, error)
}
