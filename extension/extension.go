// Package extension provides the Forge extension adapter for Costwatch.
//
// It implements the forge.Extension interface to integrate Costwatch
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.costwatch" or
// "costwatch" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	costwatch "github.com/xraph/costwatch"
	"github.com/xraph/costwatch/provider"
	"github.com/xraph/costwatch/store"
	"github.com/xraph/costwatch/store/memory"
	"github.com/xraph/costwatch/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "costwatch"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Cloud cost reconciliation ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Costwatch as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *costwatch.Engine
	store      store.Store
	provider   provider.Client
	engineOpts []costwatch.Option
	useGrove   bool
}

// New creates a new Costwatch Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Costwatch instance.
// This is nil until Register is called.
func (e *Extension) Engine() *costwatch.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the reconciliation engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		if e.useGrove {
			e.Logger().Warn("costwatch: grove database configured but no store constructed; falling back to memory store",
				forge.F("grove_database", e.config.GroveDatabase),
			)
		}
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts, err := e.buildEngineOpts()
	if err != nil {
		return err
	}

	eng := costwatch.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*costwatch.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("costwatch: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("costwatch: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs costwatch.Option values from the resolved config.
func (e *Extension) buildEngineOpts() ([]costwatch.Option, error) {
	opts := make([]costwatch.Option, 0, len(e.engineOpts)+4)

	if e.config.CollectInterval > 0 {
		opts = append(opts, costwatch.WithCollectInterval(e.config.CollectInterval))
	}
	if e.config.FetchWindowDays > 0 {
		opts = append(opts, costwatch.WithFetchWindow(e.config.FetchWindowDays))
	}
	if e.config.DailyBudget != "" {
		budget, err := types.ParseCost(e.config.DailyBudget)
		if err != nil {
			return nil, err
		}
		opts = append(opts, costwatch.WithDailyBudget(budget))
	}
	if e.provider != nil && !e.config.DisableCollector {
		opts = append(opts, costwatch.WithProvider(e.provider))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("costwatch: configuration is required but not found in config files; " +
				"ensure 'extensions.costwatch' or 'costwatch' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("costwatch: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("disable_collector", e.config.DisableCollector),
		forge.F("collect_interval", e.config.CollectInterval),
		forge.F("fetch_window_days", e.config.FetchWindowDays),
		forge.F("daily_budget", e.config.DailyBudget),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.costwatch" first (namespaced pattern).
	if cm.IsSet("extensions.costwatch") {
		if err := cm.Bind("extensions.costwatch", &cfg); err == nil {
			e.Logger().Debug("costwatch: loaded config from file",
				forge.F("key", "extensions.costwatch"),
			)
			return cfg, true
		}
		e.Logger().Warn("costwatch: failed to bind extensions.costwatch config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "costwatch" key.
	if cm.IsSet("costwatch") {
		if err := cm.Bind("costwatch", &cfg); err == nil {
			e.Logger().Debug("costwatch: loaded config from file",
				forge.F("key", "costwatch"),
			)
			return cfg, true
		}
		e.Logger().Warn("costwatch: failed to bind costwatch config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.CollectInterval == 0 {
		cfg.CollectInterval = defaults.CollectInterval
	}
	if cfg.FetchWindowDays == 0 {
		cfg.FetchWindowDays = defaults.FetchWindowDays
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.DisableCollector {
		yamlConfig.DisableCollector = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.DailyBudget == "" && programmaticConfig.DailyBudget != "" {
		yamlConfig.DailyBudget = programmaticConfig.DailyBudget
	}
	if yamlConfig.GroveDatabase == "" && programmaticConfig.GroveDatabase != "" {
		yamlConfig.GroveDatabase = programmaticConfig.GroveDatabase
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.CollectInterval == 0 && programmaticConfig.CollectInterval != 0 {
		yamlConfig.CollectInterval = programmaticConfig.CollectInterval
	}
	if yamlConfig.FetchWindowDays == 0 && programmaticConfig.FetchWindowDays != 0 {
		yamlConfig.FetchWindowDays = programmaticConfig.FetchWindowDays
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
