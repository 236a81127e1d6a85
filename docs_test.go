package costwatch_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	costwatch "github.com/xraph/costwatch"
	"github.com/xraph/costwatch/provider"
	"github.com/xraph/costwatch/record"
	"github.com/xraph/costwatch/store/memory"
	"github.com/xraph/costwatch/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Test Quick Start example from the package docs
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Create engine
		cw := costwatch.New(store,
			costwatch.WithLogger(quiet),
			costwatch.WithDailyBudget(costwatch.MustCost("0.50")),
		)

		// Start the engine
		ctx := context.Background()
		if err := cw.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer cw.Stop()

		// Merge a batch of daily cost observations
		batch := []*record.CostRecord{
			{
				Entity:  costwatch.NewEntity(),
				Date:    costwatch.MustDate("2024-05-01"),
				Service: "Amazon EC2",
				Region:  "us-east-1",
				Cost:    costwatch.MustCost("3.00"),
			},
			{
				Entity:  costwatch.NewEntity(),
				Date:    costwatch.MustDate("2024-05-01"),
				Service: "Amazon S3",
				Region:  "us-east-1",
				Cost:    costwatch.MustCost("0.25"),
			},
		}

		result, err := cw.Reconcile(ctx, batch)
		if err != nil {
			t.Fatal(err)
		}
		if result.RecordsWritten != 2 {
			t.Fatalf("expected 2 records written, got %d", result.RecordsWritten)
		}

		// Read the derived budget metric back
		metric, err := cw.Metric(ctx, costwatch.MustDate("2024-05-01"))
		if err != nil {
			t.Fatal(err)
		}
		if !metric.OverDailyBudget() {
			t.Error("3.25 against a 0.50 daily budget should be over")
		}

		// Month-to-date from merged ledger state
		mtd, err := cw.MonthToDate(ctx, costwatch.MustDate("2024-05-01").YearMonth())
		if err != nil {
			t.Fatal(err)
		}
		if !mtd.Equal(costwatch.MustCost("3.25")) {
			t.Fatalf("month to date: got %s", mtd)
		}
	})

	// Test the Collection example with an injected provider client
	t.Run("CollectionExample", func(t *testing.T) {
		client := provider.ClientFunc(func(_ context.Context, start, end types.Date) (*provider.Response, error) {
			return &provider.Response{
				Buckets: []provider.TimeBucket{
					{
						Start: start.String(),
						End:   end.String(),
						Groups: []provider.Group{
							{Keys: []string{"Amazon EC2", "us-east-1"}, Amount: "1.25"},
						},
					},
				},
			}, nil
		})

		cw := costwatch.New(memory.New(),
			costwatch.WithLogger(quiet),
			costwatch.WithProvider(client),
			costwatch.WithCollectInterval(5*time.Minute),
			costwatch.WithFetchWindow(7),
		)

		ctx := context.Background()
		if err := cw.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer cw.Stop()

		result, err := cw.Collect(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if result.RecordsWritten != 1 {
			t.Fatalf("expected 1 record written, got %d", result.RecordsWritten)
		}
	})
}
