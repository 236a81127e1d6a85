package costwatch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	costwatch "github.com/xraph/costwatch"
	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/record"
	"github.com/xraph/costwatch/store/memory"
	"github.com/xraph/costwatch/types"
)

func newTestEngine(t *testing.T, opts ...costwatch.Option) *costwatch.Engine {
	t.Helper()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]costwatch.Option{costwatch.WithLogger(quiet)}, opts...)

	return costwatch.New(memory.New(), opts...)
}

func rec(date, service, region, cost string) *record.CostRecord {
	return &record.CostRecord{
		Entity:  types.NewEntity(),
		Date:    types.MustDate(date),
		Service: service,
		Region:  region,
		Cost:    types.MustCost(cost),
	}
}

func allRecords(t *testing.T, e *costwatch.Engine) []*record.CostRecord {
	t.Helper()

	rows, err := e.Records(context.Background(), record.QueryOpts{})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	return rows
}

func TestReconcileIdempotent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	batch := []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "3.00"),
		rec("2024-05-01", "Amazon S3", "us-east-1", "0.25"),
		rec("2024-05-02", "Amazon EC2", "us-east-1", "2.00"),
	}

	if _, err := e.Reconcile(ctx, batch); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	first := allRecords(t, e)

	// Re-running the identical batch must converge to the same state.
	if _, err := e.Reconcile(ctx, batch); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	second := allRecords(t, e)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 records after each run, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key() != second[i].Key() || !first[i].Cost.Equal(second[i].Cost) {
			t.Errorf("state diverged at %d: %s=%s vs %s=%s",
				i, first[i].Key(), first[i].Cost, second[i].Key(), second[i].Cost)
		}
	}

	mtd, err := e.MonthToDate(ctx, types.MustDate("2024-05-01").YearMonth())
	if err != nil {
		t.Fatalf("month to date: %v", err)
	}
	if !mtd.Equal(types.MustCost("5.25")) {
		t.Errorf("month to date: got %s, want 5.25", mtd)
	}
}

func TestReconcileReplacesNotAccumulates(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "3.00"),
		rec("2024-05-01", "Amazon S3", "us-east-1", "0.25"),
	}); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}

	// Restated figures for the same date drop the S3 row entirely.
	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "3.10"),
	}); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	rows := allRecords(t, e)
	if len(rows) != 1 {
		t.Fatalf("expected 1 record after replacement, got %d", len(rows))
	}
	if !rows[0].Cost.Equal(types.MustCost("3.10")) {
		t.Errorf("cost not replaced: got %s", rows[0].Cost)
	}
	if rows[0].Service != "Amazon EC2" {
		t.Errorf("unexpected surviving record: %s", rows[0].Key())
	}
}

func TestReconcileOverlapConverges(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	day1 := []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "3.00"),
	}
	day2 := []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "3.00"),
		rec("2024-05-02", "Amazon EC2", "us-east-1", "2.00"),
	}

	if _, err := e.Reconcile(ctx, day1); err != nil {
		t.Fatalf("day1: %v", err)
	}
	if _, err := e.Reconcile(ctx, day2); err != nil {
		t.Fatalf("day2: %v", err)
	}

	rows := allRecords(t, e)
	if len(rows) != 2 {
		t.Fatalf("overlapping batches must not duplicate: got %d records", len(rows))
	}

	// Both metric rows carry the same whole-month aggregate.
	for _, day := range []string{"2024-05-01", "2024-05-02"} {
		m, err := e.Metric(ctx, types.MustDate(day))
		if err != nil {
			t.Fatalf("metric %s: %v", day, err)
		}
		if !m.MonthToDate.Equal(types.MustCost("5.00")) {
			t.Errorf("metric %s month_to_date: got %s, want 5.00", day, m.MonthToDate)
		}
	}
}

func TestReconcileDatesOutsideBatchUntouched(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "1.00"),
		rec("2024-05-02", "Amazon EC2", "us-east-1", "2.00"),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-02", "Amazon EC2", "us-east-1", "9.00"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, err := e.Records(ctx, record.QueryOpts{Start: types.MustDate("2024-05-01"), End: types.MustDate("2024-05-01")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || !rows[0].Cost.Equal(types.MustCost("1.00")) {
		t.Fatalf("2024-05-01 should be untouched, got %v", rows)
	}

	// The untouched date's metric still reflects the new whole-month total.
	m, err := e.Metric(ctx, types.MustDate("2024-05-01"))
	if err != nil {
		t.Fatalf("metric: %v", err)
	}
	if !m.MonthToDate.Equal(types.MustCost("10.00")) {
		t.Errorf("month_to_date not refreshed: got %s, want 10.00", m.MonthToDate)
	}
	if !m.DailyTotal.Equal(types.MustCost("1.00")) {
		t.Errorf("daily_total changed: got %s", m.DailyTotal)
	}
}

func TestReconcileBudgetMetrics(t *testing.T) {
	dailyBudget := types.MustCost("0.10")
	e := newTestEngine(t, costwatch.WithDailyBudget(dailyBudget))
	ctx := context.Background()

	result, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "1.00"),
		rec("2024-05-02", "Amazon EC2", "us-east-1", "2.00"),
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.RecordsWritten != 2 {
		t.Errorf("records written: got %d", result.RecordsWritten)
	}
	if result.MetricsWritten != 2 {
		t.Errorf("metrics written: got %d", result.MetricsWritten)
	}
	if len(result.DatesAffected) != 2 {
		t.Errorf("dates affected: got %d", len(result.DatesAffected))
	}
	if result.CycleID.IsNil() {
		t.Error("result should carry a cycle ID")
	}

	m, err := e.Metric(ctx, types.MustDate("2024-05-01"))
	if err != nil {
		t.Fatalf("metric: %v", err)
	}
	if !m.DailyTotal.Equal(types.MustCost("1.00")) {
		t.Errorf("daily_total: got %s", m.DailyTotal)
	}
	if !m.MonthToDate.Equal(types.MustCost("3.00")) {
		t.Errorf("month_to_date: got %s, want 3.00", m.MonthToDate)
	}
	if !m.DailyBudget.Equal(dailyBudget) {
		t.Errorf("daily_budget: got %s", m.DailyBudget)
	}
	if !m.MonthlyBudget.Equal(types.MustCost("3.00")) {
		t.Errorf("monthly_budget: got %s, want 3.00 (0.10 x 30)", m.MonthlyBudget)
	}
	if !m.OverDailyBudget() {
		t.Error("1.00 against a 0.10 budget should be over")
	}
}

func TestReconcileMultipleServicesPerDay(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "1.50"),
		rec("2024-05-01", "Amazon EC2", "eu-west-1", "0.75"),
		rec("2024-05-01", "Amazon S3", "us-east-1", "0.0000000344"),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	m, err := e.Metric(ctx, types.MustDate("2024-05-01"))
	if err != nil {
		t.Fatalf("metric: %v", err)
	}
	if !m.DailyTotal.Equal(types.MustCost("2.2500000344")) {
		t.Errorf("daily_total: got %s, want exact 2.2500000344", m.DailyTotal)
	}
}

func TestReconcileEmptyBatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "1.00"),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := e.Reconcile(ctx, nil)
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if result.RecordsWritten != 0 || result.MetricsWritten != 0 || len(result.DatesAffected) != 0 {
		t.Errorf("empty batch must write nothing: %+v", result)
	}

	if rows := allRecords(t, e); len(rows) != 1 {
		t.Errorf("ledger changed by empty batch: %d records", len(rows))
	}
}

func TestReconcileInvalidBatchLeavesLedgerUntouched(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "1.00"),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name  string
		batch []*record.CostRecord
	}{
		{"nil record", []*record.CostRecord{rec("2024-05-01", "svc", "r", "1"), nil}},
		{"zero date", []*record.CostRecord{{Entity: types.NewEntity(), Service: "svc", Region: "r", Cost: types.MustCost("1")}}},
		{"blank service", []*record.CostRecord{rec("2024-05-01", "", "r", "1")}},
		{"blank region", []*record.CostRecord{rec("2024-05-01", "svc", "", "1")}},
		{"negative cost", []*record.CostRecord{rec("2024-05-01", "svc", "r", "-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Reconcile(ctx, tt.batch)
			if !errors.Is(err, costwatch.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}

			rows := allRecords(t, e)
			if len(rows) != 1 || !rows[0].Cost.Equal(types.MustCost("1.00")) {
				t.Errorf("rejected batch must not touch the ledger: %v", rows)
			}
		})
	}
}

func TestReconcileInBatchDuplicateLastWins(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	result, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "1.00"),
		rec("2024-05-01", "Amazon EC2", "us-east-1", "2.00"),
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.RecordsWritten != 1 {
		t.Errorf("duplicates should collapse: wrote %d", result.RecordsWritten)
	}

	rows := allRecords(t, e)
	if len(rows) != 1 {
		t.Fatalf("expected 1 record, got %d", len(rows))
	}
	if !rows[0].Cost.Equal(types.MustCost("2.00")) {
		t.Errorf("last occurrence should win: got %s", rows[0].Cost)
	}
}

func TestReconcileAcrossMonths(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-04-30", "Amazon EC2", "us-east-1", "4.00"),
		rec("2024-05-01", "Amazon EC2", "us-east-1", "5.00"),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	april, err := e.Metric(ctx, types.MustDate("2024-04-30"))
	if err != nil {
		t.Fatalf("april metric: %v", err)
	}
	may, err := e.Metric(ctx, types.MustDate("2024-05-01"))
	if err != nil {
		t.Fatalf("may metric: %v", err)
	}

	if !april.MonthToDate.Equal(types.MustCost("4.00")) {
		t.Errorf("april month_to_date: got %s", april.MonthToDate)
	}
	if !may.MonthToDate.Equal(types.MustCost("5.00")) {
		t.Errorf("may month_to_date: got %s", may.MonthToDate)
	}
}

// metricFailStore wraps the memory store and fails metric writes, simulating
// a merge that commits while the derived recomputation does not.
type metricFailStore struct {
	*memory.Store
	fail bool
}

func (s *metricFailStore) PutMetrics(ctx context.Context, metrics []*budget.Metric) error {
	if s.fail {
		return errors.New("metrics table unavailable")
	}
	return s.Store.PutMetrics(ctx, metrics)
}

func TestReconcileAggregationFailureIsNonFatal(t *testing.T) {
	fs := &metricFailStore{Store: memory.New(), fail: true}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := costwatch.New(fs, costwatch.WithLogger(quiet))
	ctx := context.Background()

	result, err := e.Reconcile(ctx, []*record.CostRecord{
		rec("2024-05-01", "Amazon EC2", "us-east-1", "1.00"),
	})

	if err == nil {
		t.Fatal("expected aggregation error")
	}
	if !costwatch.IsAggregationFailure(err) {
		t.Fatalf("expected aggregation failure, got %v", err)
	}
	if result == nil {
		t.Fatal("merge result must be returned alongside the aggregation error")
	}
	if result.RecordsWritten != 1 {
		t.Errorf("records written: got %d", result.RecordsWritten)
	}

	// The cost records committed despite the failed recomputation.
	rows, listErr := e.Records(ctx, record.QueryOpts{})
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if len(rows) != 1 {
		t.Fatalf("merge should have committed, got %d records", len(rows))
	}

	// A later recomputation self-heals the derived rows.
	fs.fail = false
	if err := e.RecomputeBudget(ctx, []types.Date{types.MustDate("2024-05-01")}, costwatch.DefaultDailyBudget); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	m, err := e.Metric(ctx, types.MustDate("2024-05-01"))
	if err != nil {
		t.Fatalf("metric after heal: %v", err)
	}
	if !m.DailyTotal.Equal(types.MustCost("1.00")) {
		t.Errorf("healed daily_total: got %s", m.DailyTotal)
	}
}

func TestMonthToDateEmptyMonth(t *testing.T) {
	e := newTestEngine(t)

	total, err := e.MonthToDate(context.Background(), types.MustDate("2030-01-01").YearMonth())
	if err != nil {
		t.Fatalf("month to date: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("empty month should total zero, got %s", total)
	}
}
