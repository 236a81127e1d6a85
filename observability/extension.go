// Package observability provides a metrics extension for Costwatch that
// records reconciliation event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/costwatch/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnCycleStarted     = (*MetricsExtension)(nil)
	_ plugin.OnProviderFetch    = (*MetricsExtension)(nil)
	_ plugin.OnBatchNormalized  = (*MetricsExtension)(nil)
	_ plugin.OnReconciled       = (*MetricsExtension)(nil)
	_ plugin.OnBudgetRecomputed = (*MetricsExtension)(nil)
	_ plugin.OnBudgetExceeded   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide reconciliation metrics.
// Register it as a Costwatch plugin to automatically track cycle metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Cycle metrics
	CyclesStarted Counter

	// Provider metrics
	FetchSuccess Counter
	FetchFailure Counter
	FetchLatency Histogram

	// Batch metrics
	RecordsNormalized Counter
	BatchSize         Histogram

	// Reconciliation metrics
	BatchesReconciled Counter

	// Budget metrics
	BudgetRecomputed Counter
	BudgetExceeded   Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Cycle metrics
		CyclesStarted: factory.Counter("costwatch.cycle.started"),

		// Provider metrics
		FetchSuccess: factory.Counter("costwatch.fetch.success"),
		FetchFailure: factory.Counter("costwatch.fetch.failure"),
		FetchLatency: factory.Histogram("costwatch.fetch.latency_ms"),

		// Batch metrics
		RecordsNormalized: factory.Counter("costwatch.records.normalized"),
		BatchSize:         factory.Histogram("costwatch.batch.size"),

		// Reconciliation metrics
		BatchesReconciled: factory.Counter("costwatch.batches.reconciled"),

		// Budget metrics
		BudgetRecomputed: factory.Counter("costwatch.budget.recomputed"),
		BudgetExceeded:   factory.Counter("costwatch.budget.exceeded"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// OnCycleStarted implements plugin.OnCycleStarted.
func (m *MetricsExtension) OnCycleStarted(_ context.Context, _ string) error {
	m.CyclesStarted.Inc()
	return nil
}

// OnProviderFetch implements plugin.OnProviderFetch.
func (m *MetricsExtension) OnProviderFetch(_ context.Context, _ string, _ int, elapsed time.Duration, err error) error {
	if err != nil {
		m.FetchFailure.Inc()
	} else {
		m.FetchSuccess.Inc()
	}
	m.FetchLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// OnBatchNormalized implements plugin.OnBatchNormalized.
func (m *MetricsExtension) OnBatchNormalized(_ context.Context, _ string, records []interface{}) error {
	count := float64(len(records))
	m.RecordsNormalized.Add(count)
	m.BatchSize.Observe(count)
	return nil
}

// OnReconciled implements plugin.OnReconciled.
func (m *MetricsExtension) OnReconciled(_ context.Context, _ interface{}) error {
	m.BatchesReconciled.Inc()
	return nil
}

// OnBudgetRecomputed implements plugin.OnBudgetRecomputed.
func (m *MetricsExtension) OnBudgetRecomputed(_ context.Context, _ string, _ []interface{}) error {
	m.BudgetRecomputed.Inc()
	return nil
}

// OnBudgetExceeded implements plugin.OnBudgetExceeded.
func (m *MetricsExtension) OnBudgetExceeded(_ context.Context, _ interface{}) error {
	m.BudgetExceeded.Inc()
	return nil
}
