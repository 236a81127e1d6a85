package extension

import "time"

// Config holds the Costwatch extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.costwatch" or "costwatch" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DisableCollector prevents the background collection worker from
	// starting even when a provider client is configured.
	DisableCollector bool `json:"disable_collector" mapstructure:"disable_collector" yaml:"disable_collector"`

	// CollectInterval is how frequently the collection worker runs a
	// fetch-and-reconcile cycle (default: 5m).
	CollectInterval time.Duration `json:"collect_interval" mapstructure:"collect_interval" yaml:"collect_interval"`

	// FetchWindowDays is how many days back each collection cycle fetches
	// from the provider (default: 7).
	FetchWindowDays int `json:"fetch_window_days" mapstructure:"fetch_window_days" yaml:"fetch_window_days"`

	// DailyBudget is the daily budget target as a decimal string, e.g.
	// "0.50". When empty the engine's default applies.
	DailyBudget string `json:"daily_budget" mapstructure:"daily_budget" yaml:"daily_budget"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the appropriate store based on the driver type (pg/sqlite/mongo).
	// When empty and WithGroveDatabase was called, the default (unnamed) DB is used.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CollectInterval: 5 * time.Minute,
		FetchWindowDays: 7,
	}
}
