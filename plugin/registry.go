package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onCycleStarted     []OnCycleStarted
	onProviderFetch    []OnProviderFetch
	onBatchNormalized  []OnBatchNormalized
	onReconciled       []OnReconciled
	onBudgetRecomputed []OnBudgetRecomputed
	onBudgetExceeded   []OnBudgetExceeded
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCycleStarted); ok {
		r.onCycleStarted = append(r.onCycleStarted, v)
	}
	if v, ok := p.(OnProviderFetch); ok {
		r.onProviderFetch = append(r.onProviderFetch, v)
	}
	if v, ok := p.(OnBatchNormalized); ok {
		r.onBatchNormalized = append(r.onBatchNormalized, v)
	}
	if v, ok := p.(OnReconciled); ok {
		r.onReconciled = append(r.onReconciled, v)
	}
	if v, ok := p.(OnBudgetRecomputed); ok {
		r.onBudgetRecomputed = append(r.onBudgetRecomputed, v)
	}
	if v, ok := p.(OnBudgetExceeded); ok {
		r.onBudgetExceeded = append(r.onBudgetExceeded, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnCycleStarted)(nil)).Elem(), "OnCycleStarted")
	checkInterface(reflect.TypeOf((*OnProviderFetch)(nil)).Elem(), "OnProviderFetch")
	checkInterface(reflect.TypeOf((*OnBatchNormalized)(nil)).Elem(), "OnBatchNormalized")
	checkInterface(reflect.TypeOf((*OnReconciled)(nil)).Elem(), "OnReconciled")
	checkInterface(reflect.TypeOf((*OnBudgetRecomputed)(nil)).Elem(), "OnBudgetRecomputed")
	checkInterface(reflect.TypeOf((*OnBudgetExceeded)(nil)).Elem(), "OnBudgetExceeded")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCycleStarted emits a cycle started event.
func (r *Registry) EmitCycleStarted(ctx context.Context, cycleID string) {
	r.mu.RLock()
	plugins := r.onCycleStarted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCycleStarted(ctx, cycleID)
		}); err != nil {
			r.logger.Warn("plugin OnCycleStarted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProviderFetch emits a provider fetch completed event.
func (r *Registry) EmitProviderFetch(ctx context.Context, cycleID string, buckets int, elapsed time.Duration, fetchErr error) {
	r.mu.RLock()
	plugins := r.onProviderFetch
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProviderFetch(ctx, cycleID, buckets, elapsed, fetchErr)
		}); err != nil {
			r.logger.Warn("plugin OnProviderFetch failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBatchNormalized emits a batch normalized event.
func (r *Registry) EmitBatchNormalized(ctx context.Context, cycleID string, records []interface{}) {
	r.mu.RLock()
	plugins := r.onBatchNormalized
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBatchNormalized(ctx, cycleID, records)
		}); err != nil {
			r.logger.Warn("plugin OnBatchNormalized failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitReconciled emits a batch reconciled event.
func (r *Registry) EmitReconciled(ctx context.Context, result interface{}) {
	r.mu.RLock()
	plugins := r.onReconciled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnReconciled(ctx, result)
		}); err != nil {
			r.logger.Warn("plugin OnReconciled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBudgetRecomputed emits a budget recomputed event.
func (r *Registry) EmitBudgetRecomputed(ctx context.Context, cycleID string, metrics []interface{}) {
	r.mu.RLock()
	plugins := r.onBudgetRecomputed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBudgetRecomputed(ctx, cycleID, metrics)
		}); err != nil {
			r.logger.Warn("plugin OnBudgetRecomputed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBudgetExceeded emits a budget exceeded event.
func (r *Registry) EmitBudgetExceeded(ctx context.Context, metric interface{}) {
	r.mu.RLock()
	plugins := r.onBudgetExceeded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBudgetExceeded(ctx, metric)
		}); err != nil {
			r.logger.Warn("plugin OnBudgetExceeded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the reconciliation pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
