// Package audithook bridges Costwatch lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import any
// audit system directly. Callers inject a RecorderFunc adapter that bridges
// to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/costwatch/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnCycleStarted     = (*Extension)(nil)
	_ plugin.OnProviderFetch    = (*Extension)(nil)
	_ plugin.OnReconciled       = (*Extension)(nil)
	_ plugin.OnBudgetRecomputed = (*Extension)(nil)
	_ plugin.OnBudgetExceeded   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement. It is
// defined locally so this package carries no backend dependency; callers
// inject the concrete recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Costwatch lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Cycle lifecycle hooks
// ──────────────────────────────────────────────────

// OnCycleStarted implements plugin.OnCycleStarted.
func (e *Extension) OnCycleStarted(ctx context.Context, cycleID string) error {
	return e.record(ctx, ActionCycleStarted, SeverityInfo, OutcomeSuccess,
		ResourceCycle, cycleID, CategoryCollection, nil,
		"cycle_id", cycleID,
	)
}

// OnProviderFetch implements plugin.OnProviderFetch.
func (e *Extension) OnProviderFetch(ctx context.Context, cycleID string, buckets int, elapsed time.Duration, fetchErr error) error {
	severity := SeverityInfo
	outcome := OutcomeSuccess
	if fetchErr != nil {
		severity = SeverityError
		outcome = OutcomeFailure
	}

	return e.record(ctx, ActionProviderFetch, severity, outcome,
		ResourceProvider, cycleID, CategoryCollection, fetchErr,
		"cycle_id", cycleID,
		"buckets", buckets,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Ledger lifecycle hooks
// ──────────────────────────────────────────────────

// OnReconciled implements plugin.OnReconciled.
func (e *Extension) OnReconciled(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBatchReconciled, SeverityInfo, OutcomeSuccess,
		ResourceLedger, "", CategoryLedger, nil,
		"event", "batch_reconciled",
	)
}

// ──────────────────────────────────────────────────
// Budget lifecycle hooks
// ──────────────────────────────────────────────────

// OnBudgetRecomputed implements plugin.OnBudgetRecomputed.
func (e *Extension) OnBudgetRecomputed(ctx context.Context, cycleID string, metrics []interface{}) error {
	return e.record(ctx, ActionBudgetRecomputed, SeverityInfo, OutcomeSuccess,
		ResourceBudget, cycleID, CategoryBudget, nil,
		"cycle_id", cycleID,
		"metrics", len(metrics),
	)
}

// OnBudgetExceeded implements plugin.OnBudgetExceeded.
func (e *Extension) OnBudgetExceeded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBudgetExceeded, SeverityWarning, OutcomeFailure,
		ResourceBudget, "", CategoryBudget, nil,
		"event", "budget_exceeded",
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
