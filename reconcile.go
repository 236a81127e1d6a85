package costwatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/id"
	"github.com/xraph/costwatch/record"
	"github.com/xraph/costwatch/types"
)

// ReconcileResult summarizes one reconciliation cycle.
type ReconcileResult struct {
	CycleID        id.CycleID   `json:"cycle_id"`
	RecordsWritten int          `json:"records_written"`
	DatesAffected  []types.Date `json:"dates_affected"`
	MetricsWritten int          `json:"metrics_written"`
}

// Reconcile merges a batch of cost records into the ledger.
//
// The merge scope is the set of dates present in the batch: for each such
// date, the batch's rows replace everything previously stored for that
// date, so re-running the same batch converges to the same ledger state.
// Dates absent from the batch are never touched. Within the batch,
// duplicate (date, service, region) keys collapse to the last occurrence.
//
// After the merge commits, the budget metrics for every affected month are
// recomputed. A recomputation failure does not roll back the merge: the
// result is returned alongside an error matching ErrAggregationFailed, and
// the next cycle's recomputation self-heals the derived rows.
//
// An empty batch is a no-op: nothing is written and no metric changes.
func (e *Engine) Reconcile(ctx context.Context, batch []*record.CostRecord) (*ReconcileResult, error) {
	return e.reconcile(ctx, id.NewCycleID(), batch)
}

func (e *Engine) reconcile(ctx context.Context, cid id.CycleID, batch []*record.CostRecord) (*ReconcileResult, error) {
	result := &ReconcileResult{CycleID: cid}

	if len(batch) == 0 {
		e.logger.Debug("empty batch, nothing to reconcile", "cycle_id", cid)
		return result, nil
	}

	if err := validateBatch(batch); err != nil {
		return nil, err
	}

	merged := dedupeBatch(batch)
	dates := batchDates(merged)

	if err := e.store.ReplaceDays(ctx, dates, merged); err != nil {
		return nil, &StoreError{Op: "replace days", Err: err}
	}

	result.RecordsWritten = len(merged)
	result.DatesAffected = dates

	e.logger.Info("batch reconciled",
		"cycle_id", cid,
		"records", len(merged),
		"dates", len(dates),
	)
	e.plugins.EmitReconciled(ctx, result)

	written, err := e.recomputeBudget(ctx, cid, dates, e.dailyBudget)
	result.MetricsWritten = written
	if err != nil {
		return result, &AggregationError{Err: err}
	}

	return result, nil
}

// RecomputeBudget rebuilds the budget metrics derived from the given dates'
// months. It reads only committed ledger state, so it is idempotent and
// safe to re-run at any time. Cost records are never modified.
func (e *Engine) RecomputeBudget(ctx context.Context, dates []types.Date, dailyBudget types.Cost) error {
	_, err := e.recomputeBudget(ctx, id.NewCycleID(), dates, dailyBudget)
	return err
}

// recomputeBudget refreshes every record-bearing date of each month touched
// by dates, not just the dates themselves. month_to_date is a whole-month
// aggregate that must read the same on every row of a month, so a change to
// one date invalidates the metric of every other date in that month.
func (e *Engine) recomputeBudget(ctx context.Context, cid id.CycleID, dates []types.Date, dailyBudget types.Cost) (int, error) {
	months := affectedMonths(dates)
	monthlyBudget := dailyBudget.MulInt(budget.MonthlyFactor)

	written := 0
	for _, month := range months {
		rows, err := e.store.RecordsByMonth(ctx, month)
		if err != nil {
			return written, fmt.Errorf("read month %s: %w", month, err)
		}

		dailyTotals := make(map[types.Date]types.Cost)
		monthToDate := types.ZeroCost
		for _, r := range rows {
			dailyTotals[r.Date] = dailyTotals[r.Date].Add(r.Cost)
			monthToDate = monthToDate.Add(r.Cost)
		}

		metrics := make([]*budget.Metric, 0, len(dailyTotals))
		for day, total := range dailyTotals {
			metrics = append(metrics, &budget.Metric{
				Entity:        types.NewEntity(),
				Date:          day,
				DailyTotal:    total,
				DailyBudget:   dailyBudget,
				MonthlyBudget: monthlyBudget,
				MonthToDate:   monthToDate,
			})
		}
		sort.Slice(metrics, func(i, j int) bool {
			return metrics[i].Date.Before(metrics[j].Date)
		})

		if err := e.store.PutMetrics(ctx, metrics); err != nil {
			return written, fmt.Errorf("write metrics for %s: %w", month, err)
		}
		written += len(metrics)

		e.plugins.EmitBudgetRecomputed(ctx, cid.String(), asAny(metrics))

		for _, m := range metrics {
			if m.OverDailyBudget() || m.OverMonthlyBudget() {
				e.logger.Warn("budget exceeded",
					"cycle_id", cid,
					"date", m.Date,
					"daily_total", m.DailyTotal,
					"month_to_date", m.MonthToDate,
				)
				e.plugins.EmitBudgetExceeded(ctx, m)
			}
		}
	}

	return written, nil
}

// ──────────────────────────────────────────────────
// Batch helpers
// ──────────────────────────────────────────────────

func validateBatch(batch []*record.CostRecord) error {
	for i, r := range batch {
		switch {
		case r == nil:
			return fmt.Errorf("%w: nil record at index %d", ErrInvalidInput, i)
		case r.Date.IsZero():
			return fmt.Errorf("%w: record %d has no date", ErrInvalidInput, i)
		case r.Service == "":
			return fmt.Errorf("%w: record %d has no service", ErrInvalidInput, i)
		case r.Region == "":
			return fmt.Errorf("%w: record %d has no region", ErrInvalidInput, i)
		case r.Cost.IsNegative():
			return fmt.Errorf("%w: record %d has negative cost", ErrInvalidInput, i)
		}
	}
	return nil
}

// dedupeBatch collapses duplicate (date, service, region) keys, keeping the
// last occurrence. Order is preserved at each key's first position.
func dedupeBatch(batch []*record.CostRecord) []*record.CostRecord {
	seen := make(map[string]int, len(batch))
	out := make([]*record.CostRecord, 0, len(batch))

	for _, r := range batch {
		key := r.Key()
		if idx, ok := seen[key]; ok {
			out[idx] = r
			continue
		}
		seen[key] = len(out)
		out = append(out, r)
	}

	return out
}

// batchDates returns the sorted distinct dates present in the batch.
func batchDates(batch []*record.CostRecord) []types.Date {
	set := make(map[types.Date]struct{}, len(batch))
	for _, r := range batch {
		set[r.Date] = struct{}{}
	}

	dates := make([]types.Date, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return dates
}

// affectedMonths returns the sorted distinct months covering dates.
func affectedMonths(dates []types.Date) []types.YearMonth {
	set := make(map[types.YearMonth]struct{}, len(dates))
	for _, d := range dates {
		set[d.YearMonth()] = struct{}{}
	}

	months := make([]types.YearMonth, 0, len(set))
	for m := range set {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})

	return months
}
