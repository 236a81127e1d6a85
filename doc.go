// Package costwatch provides a cloud cost reconciliation ledger for Go
// applications.
//
// Costwatch is designed as a library, not a service. Import it directly into
// your Go application and feed it daily cost data from your billing provider.
// It provides:
//
//   - Idempotent reconciliation of possibly-overlapping daily cost batches
//   - Exact decimal cost arithmetic end to end, never floating point
//   - Derived daily and month-to-date budget metrics kept consistent with
//     merged ledger state
//   - A background collection worker polling a pluggable provider client
//   - Memory, SQLite, PostgreSQL, and MongoDB storage backends
//   - Lifecycle plugins for metrics and audit trails
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/costwatch"
//	    "github.com/xraph/costwatch/store/memory"
//	)
//
//	// Initialize store
//	store := memory.New()
//
//	// Create engine
//	cw := costwatch.New(store,
//	    costwatch.WithDailyBudget(costwatch.MustCost("0.50")),
//	)
//
//	// Start the engine (migrates the store, begins background workers)
//	if err := cw.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer cw.Stop()
//
// # Core Concepts
//
// Cost records are daily observations keyed by (date, service, region):
//
//	batch := []*record.CostRecord{
//	    {Date: costwatch.MustDate("2024-05-01"), Service: "Amazon EC2", Region: "us-east-1", Cost: costwatch.MustCost("3.00")},
//	}
//
// Reconcile merges a batch into the ledger. For every date present in the
// batch, the batch's rows replace whatever was stored for that date, so
// re-running the same batch converges to the same state:
//
//	result, err := cw.Reconcile(ctx, batch)
//
// Budget metrics are a derived view, recomputed from merged ledger state
// after every reconciliation:
//
//	metric, err := cw.Metric(ctx, costwatch.MustDate("2024-05-01"))
//	if metric.OverDailyBudget() {
//	    // alert
//	}
//
// # Collection
//
// Configure a provider client and the engine polls it on an interval,
// normalizing each response and reconciling it automatically:
//
//	cw := costwatch.New(store,
//	    costwatch.WithProvider(myClient),
//	    costwatch.WithCollectInterval(5*time.Minute),
//	    costwatch.WithFetchWindow(7),
//	)
//
// All cost amounts use exact decimal arithmetic. The Cost type preserves
// provider amounts such as "0.0000000344" without rounding.
//
// # TypeID
//
// Reconciliation cycles use TypeID for globally unique, sortable
// identifiers:
//
//	cyc_01h2xcejqtf2nbrexx3vqjhp41  // Cycle ID
//
// Cycle IDs tie together log lines, plugin events, and audit records
// belonging to one collection cycle.
package costwatch
