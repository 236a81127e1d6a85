package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Costwatch store (PostgreSQL).
var Migrations = migrate.NewGroup("costwatch")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_costwatch_cost_records",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS costwatch_cost_records (
    id         TEXT PRIMARY KEY,
    date       TEXT NOT NULL DEFAULT '',
    service    TEXT NOT NULL DEFAULT '',
    region     TEXT NOT NULL DEFAULT '',
    cost       NUMERIC(38, 18) NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_costwatch_records_date ON costwatch_cost_records (date);
CREATE INDEX IF NOT EXISTS idx_costwatch_records_service ON costwatch_cost_records (service, date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS costwatch_cost_records`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_costwatch_budget_metrics",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS costwatch_budget_metrics (
    date           TEXT PRIMARY KEY,
    daily_total    NUMERIC(38, 18) NOT NULL DEFAULT 0,
    daily_budget   NUMERIC(38, 18) NOT NULL DEFAULT 0,
    monthly_budget NUMERIC(38, 18) NOT NULL DEFAULT 0,
    month_to_date  NUMERIC(38, 18) NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS costwatch_budget_metrics`)
				return err
			},
		},
	)
}
