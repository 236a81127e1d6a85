package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/costwatch/plugin"
)

// recordingPlugin implements every hook and records which ones fired.
type recordingPlugin struct {
	mu     sync.Mutex
	name   string
	events []string
	err    error
}

func (p *recordingPlugin) record(event string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPlugin) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) OnInit(context.Context, interface{}) error { return p.record("init") }
func (p *recordingPlugin) OnShutdown(context.Context) error          { return p.record("shutdown") }
func (p *recordingPlugin) OnCycleStarted(context.Context, string) error {
	return p.record("cycle_started")
}
func (p *recordingPlugin) OnProviderFetch(context.Context, string, int, time.Duration, error) error {
	return p.record("provider_fetch")
}
func (p *recordingPlugin) OnBatchNormalized(context.Context, string, []interface{}) error {
	return p.record("batch_normalized")
}
func (p *recordingPlugin) OnReconciled(context.Context, interface{}) error {
	return p.record("reconciled")
}
func (p *recordingPlugin) OnBudgetRecomputed(context.Context, string, []interface{}) error {
	return p.record("budget_recomputed")
}
func (p *recordingPlugin) OnBudgetExceeded(context.Context, interface{}) error {
	return p.record("budget_exceeded")
}

// initOnlyPlugin implements just the base interface plus OnInit.
type initOnlyPlugin struct {
	inits int
}

func (p *initOnlyPlugin) Name() string { return "init-only" }
func (p *initOnlyPlugin) OnInit(context.Context, interface{}) error {
	p.inits++
	return nil
}

func newTestRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	r.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r
}

func TestRegister(t *testing.T) {
	r := newTestRegistry()

	if err := r.Register(&recordingPlugin{name: "a"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(&recordingPlugin{name: "b"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if r.Count() != 2 {
		t.Errorf("count: got %d, want 2", r.Count())
	}
	if r.Get("a") == nil {
		t.Error("Get should find plugin a")
	}
	if r.Get("missing") != nil {
		t.Error("Get should return nil for unknown name")
	}
	if len(r.List()) != 2 {
		t.Errorf("list: got %d plugins", len(r.List()))
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()

	if err := r.Register(&recordingPlugin{name: "dup"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(&recordingPlugin{name: "dup"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestEmitDispatchesAllHooks(t *testing.T) {
	r := newTestRegistry()
	p := &recordingPlugin{name: "full"}
	if err := r.Register(p); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx := context.Background()
	r.EmitInit(ctx, nil)
	r.EmitCycleStarted(ctx, "cyc_test")
	r.EmitProviderFetch(ctx, "cyc_test", 3, time.Second, nil)
	r.EmitBatchNormalized(ctx, "cyc_test", nil)
	r.EmitReconciled(ctx, nil)
	r.EmitBudgetRecomputed(ctx, "cyc_test", nil)
	r.EmitBudgetExceeded(ctx, nil)
	r.EmitShutdown(ctx)

	want := []string{
		"init", "cycle_started", "provider_fetch", "batch_normalized",
		"reconciled", "budget_recomputed", "budget_exceeded", "shutdown",
	}
	got := p.seen()
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestEmitSkipsUnimplementedHooks(t *testing.T) {
	r := newTestRegistry()
	p := &initOnlyPlugin{}
	if err := r.Register(p); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx := context.Background()
	r.EmitInit(ctx, nil)
	r.EmitCycleStarted(ctx, "cyc_test")
	r.EmitShutdown(ctx)

	if p.inits != 1 {
		t.Errorf("OnInit calls: got %d, want 1", p.inits)
	}
}

func TestEmitToleratesPluginErrors(t *testing.T) {
	r := newTestRegistry()
	failing := &recordingPlugin{name: "failing", err: errors.New("boom")}
	healthy := &recordingPlugin{name: "healthy"}
	if err := r.Register(failing); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(healthy); err != nil {
		t.Fatalf("register: %v", err)
	}

	// A failing plugin must not block the others.
	r.EmitReconciled(context.Background(), nil)

	if len(healthy.seen()) != 1 {
		t.Errorf("healthy plugin should still receive the event, got %v", healthy.seen())
	}
}
