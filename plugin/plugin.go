// Package plugin provides an extensible plugin system for Costwatch.
// Plugins can hook into lifecycle and reconciliation events to extend
// functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Collection cycle hooks
// ──────────────────────────────────────────────────

// OnCycleStarted is called when a collection cycle begins.
type OnCycleStarted interface {
	Plugin
	OnCycleStarted(ctx context.Context, cycleID string) error
}

// OnProviderFetch is called after the provider fetch completes, whether it
// succeeded or failed.
type OnProviderFetch interface {
	Plugin
	OnProviderFetch(ctx context.Context, cycleID string, buckets int, elapsed time.Duration, err error) error
}

// OnBatchNormalized is called after a provider response is normalized into
// cost records.
type OnBatchNormalized interface {
	Plugin
	OnBatchNormalized(ctx context.Context, cycleID string, records []interface{}) error
}

// ──────────────────────────────────────────────────
// Reconciliation hooks
// ──────────────────────────────────────────────────

// OnReconciled is called after a batch is merged into the ledger.
type OnReconciled interface {
	Plugin
	OnReconciled(ctx context.Context, result interface{}) error
}

// OnBudgetRecomputed is called after budget metrics are recomputed.
type OnBudgetRecomputed interface {
	Plugin
	OnBudgetRecomputed(ctx context.Context, cycleID string, metrics []interface{}) error
}

// OnBudgetExceeded is called for each day whose total exceeds the daily
// budget or whose month-to-date exceeds the monthly budget.
type OnBudgetExceeded interface {
	Plugin
	OnBudgetExceeded(ctx context.Context, metric interface{}) error
}
