package costwatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/id"
	"github.com/xraph/costwatch/plugin"
	"github.com/xraph/costwatch/provider"
	"github.com/xraph/costwatch/record"
	"github.com/xraph/costwatch/store"
	"github.com/xraph/costwatch/types"
)

// DefaultDailyBudget is the daily budget used when none is configured. It
// corresponds to a ten dollar monthly target spread across the fixed
// thirty-day month approximation.
var DefaultDailyBudget = types.NewCost(10, 0).DivInt(budget.MonthlyFactor)

// Engine is the main cost reconciliation engine. It merges batches of daily
// cost records into the ledger idempotently and keeps the derived budget
// metrics consistent with merged state.
type Engine struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	provider provider.Client

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	collectInterval time.Duration
	fetchWindowDays int
	dailyBudget     types.Cost
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:           s,
		plugins:         plugin.NewRegistry(),
		logger:          slog.Default(),
		stopChan:        make(chan struct{}),
		collectInterval: 5 * time.Minute,
		fetchWindowDays: 7,
		dailyBudget:     DefaultDailyBudget,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithProvider sets the billing provider client used by the collection
// worker. Without a provider the engine only serves explicit Reconcile
// calls.
func WithProvider(c provider.Client) Option {
	return func(e *Engine) {
		e.provider = c
	}
}

// WithDailyBudget sets the configured daily budget target.
func WithDailyBudget(b types.Cost) Option {
	return func(e *Engine) {
		e.dailyBudget = b
	}
}

// WithFetchWindow sets how many days back each collection cycle fetches.
func WithFetchWindow(days int) Option {
	return func(e *Engine) {
		e.fetchWindowDays = days
	}
}

// WithCollectInterval sets the interval between collection cycles.
func WithCollectInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.collectInterval = interval
	}
}

// Start migrates the store, initializes plugins, and begins the collection
// worker when a provider is configured.
func (e *Engine) Start(ctx context.Context) error {
	// Migrate database
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	// Start collection worker
	if e.provider != nil {
		e.wg.Add(1)
		go e.collectWorker(ctx)
	}

	e.logger.Info("costwatch started",
		"collect_interval", e.collectInterval,
		"fetch_window_days", e.fetchWindowDays,
		"daily_budget", e.dailyBudget,
		"collector", e.provider != nil,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Collection cycle
// ──────────────────────────────────────────────────

// Collect runs one collection cycle: fetch the configured window from the
// provider, normalize the response, and reconcile the batch into the
// ledger. Returns ErrProviderNotConfigured if no provider is set.
func (e *Engine) Collect(ctx context.Context) (*ReconcileResult, error) {
	if e.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	cid := id.NewCycleID()
	e.plugins.EmitCycleStarted(ctx, cid.String())

	today := types.Today()
	start := today.AddDays(-e.fetchWindowDays)
	end := today.AddDays(1)

	fetchStart := time.Now()
	resp, err := e.provider.FetchDailyCosts(ctx, start, end)
	elapsed := time.Since(fetchStart)

	buckets := 0
	if resp != nil {
		buckets = len(resp.Buckets)
	}
	e.plugins.EmitProviderFetch(ctx, cid.String(), buckets, elapsed, err)

	if err != nil {
		e.logger.Error("provider fetch failed",
			"cycle_id", cid,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrProviderFetch, err)
	}

	batch, err := Normalize(resp)
	if err != nil {
		e.logger.Error("batch normalization failed",
			"cycle_id", cid,
			"error", err,
		)
		return nil, err
	}

	e.plugins.EmitBatchNormalized(ctx, cid.String(), asAny(batch))

	return e.reconcile(ctx, cid, batch)
}

// collectWorker runs collection cycles on the configured interval.
func (e *Engine) collectWorker(ctx context.Context) {
	defer e.wg.Done()

	// First cycle immediately, then on the interval.
	e.runCycle(ctx)

	ticker := time.NewTicker(e.collectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runCycle(ctx)
		}
	}
}

func (e *Engine) runCycle(ctx context.Context) {
	result, err := e.Collect(ctx)
	if err != nil {
		if result != nil && IsAggregationFailure(err) {
			// Cost records are committed; the next cycle self-heals the
			// derived rows.
			e.logger.Warn("budget aggregation lagging",
				"cycle_id", result.CycleID,
				"error", err,
			)
			return
		}
		e.logger.Error("collection cycle failed", "error", err)
		return
	}

	e.logger.Debug("collection cycle complete",
		"cycle_id", result.CycleID,
		"records", result.RecordsWritten,
		"dates", len(result.DatesAffected),
	)
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Records lists cost records matching the query options.
func (e *Engine) Records(ctx context.Context, opts record.QueryOpts) ([]*record.CostRecord, error) {
	return e.store.ListRecords(ctx, opts)
}

// RecordsByMonth lists all cost records for a month.
func (e *Engine) RecordsByMonth(ctx context.Context, month types.YearMonth) ([]*record.CostRecord, error) {
	return e.store.RecordsByMonth(ctx, month)
}

// Metric returns the budget metric for a single day.
func (e *Engine) Metric(ctx context.Context, day types.Date) (*budget.Metric, error) {
	return e.store.GetMetric(ctx, day)
}

// Metrics lists budget metrics matching the query options.
func (e *Engine) Metrics(ctx context.Context, opts budget.QueryOpts) ([]*budget.Metric, error) {
	return e.store.ListMetrics(ctx, opts)
}

// MonthToDate returns the total cost recorded for a month, summed with
// exact decimal arithmetic from the ledger's cost records.
func (e *Engine) MonthToDate(ctx context.Context, month types.YearMonth) (types.Cost, error) {
	rows, err := e.store.RecordsByMonth(ctx, month)
	if err != nil {
		return types.ZeroCost, &StoreError{Op: "read month", Err: err}
	}

	total := types.ZeroCost
	for _, r := range rows {
		total = total.Add(r.Cost)
	}

	return total, nil
}

// Plugins returns the engine's plugin registry.
func (e *Engine) Plugins() *plugin.Registry {
	return e.plugins
}

func asAny[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
