package extension

import (
	"time"

	costwatch "github.com/xraph/costwatch"
	"github.com/xraph/costwatch/plugin"
	"github.com/xraph/costwatch/provider"
	"github.com/xraph/costwatch/store"
)

// Option configures the Costwatch Forge extension.
type Option func(*Extension)

// WithStore sets the store for the reconciliation engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a costwatch.Option through to the underlying engine.
func WithEngineOption(opt costwatch.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a costwatch plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, costwatch.WithPlugin(p))
	}
}

// WithProvider sets the billing provider client for the collection worker.
func WithProvider(c provider.Client) Option {
	return func(e *Extension) {
		e.provider = c
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithDisableCollector prevents the background collection worker from starting.
func WithDisableCollector() Option {
	return func(e *Extension) { e.config.DisableCollector = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithCollectInterval sets how frequently collection cycles run.
func WithCollectInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.CollectInterval = d }
}

// WithFetchWindowDays sets how many days back each cycle fetches.
func WithFetchWindowDays(days int) Option {
	return func(e *Extension) { e.config.FetchWindowDays = days }
}

// WithDailyBudget sets the daily budget target as a decimal string.
func WithDailyBudget(amount string) Option {
	return func(e *Extension) { e.config.DailyBudget = amount }
}

// WithGroveDatabase sets the name of the grove.DB to resolve from the DI container.
// The extension will auto-construct the appropriate store backend (postgres/sqlite/mongo)
// based on the grove driver type. Pass an empty string to use the default (unnamed) grove.DB.
func WithGroveDatabase(name string) Option {
	return func(e *Extension) {
		e.config.GroveDatabase = name
		e.useGrove = true
	}
}
