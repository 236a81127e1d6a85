// Package memory implements an in-memory Costwatch store. It is intended
// for tests and for wiring up an engine without external infrastructure.
package memory

import (
	"context"
	"sort"
	"sync"

	costwatch "github.com/xraph/costwatch"
	"github.com/xraph/costwatch/budget"
	"github.com/xraph/costwatch/record"
	costwatchstore "github.com/xraph/costwatch/store"
	"github.com/xraph/costwatch/types"
)

// compile-time interface check
var _ costwatchstore.Store = (*Store)(nil)

// Store is a thread-safe in-memory store. ReplaceDays is fully atomic
// under the store lock. All reads and writes copy rows, so callers can
// never mutate stored state through returned pointers.
type Store struct {
	mu sync.RWMutex

	// Cost records keyed by "date|service|region"
	records map[string]*record.CostRecord

	// Budget metrics keyed by date
	metrics map[types.Date]*budget.Metric

	closed bool
}

// New creates a new empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]*record.CostRecord),
		metrics: make(map[types.Date]*budget.Metric),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return costwatch.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Data is retained so late reads in tests
// still see final state.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// ==================== Cost Record Store ====================

func (s *Store) ReplaceDays(_ context.Context, days []types.Date, records []*record.CostRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return costwatch.ErrStoreClosed
	}

	replace := make(map[types.Date]struct{}, len(days))
	for _, d := range days {
		replace[d] = struct{}{}
	}

	for key, r := range s.records {
		if _, ok := replace[r.Date]; ok {
			delete(s.records, key)
		}
	}

	for _, r := range records {
		cp := *r
		s.records[cp.Key()] = &cp
	}

	return nil
}

func (s *Store) ListRecords(_ context.Context, opts record.QueryOpts) ([]*record.CostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*record.CostRecord, 0)
	for _, r := range s.records {
		if opts.Service != "" && r.Service != opts.Service {
			continue
		}
		if opts.Region != "" && r.Region != opts.Region {
			continue
		}
		if !opts.Start.IsZero() && r.Date.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && opts.End.Before(r.Date) {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key() < result[j].Key()
	})

	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) RecordsByDates(_ context.Context, dates []types.Date) ([]*record.CostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[types.Date]struct{}, len(dates))
	for _, d := range dates {
		want[d] = struct{}{}
	}

	result := make([]*record.CostRecord, 0)
	for _, r := range s.records {
		if _, ok := want[r.Date]; ok {
			cp := *r
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key() < result[j].Key()
	})

	return result, nil
}

func (s *Store) RecordsByMonth(_ context.Context, month types.YearMonth) ([]*record.CostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*record.CostRecord, 0)
	for _, r := range s.records {
		if month.Contains(r.Date) {
			cp := *r
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key() < result[j].Key()
	})

	return result, nil
}

// ==================== Budget Metric Store ====================

func (s *Store) PutMetrics(_ context.Context, metrics []*budget.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return costwatch.ErrStoreClosed
	}

	for _, m := range metrics {
		cp := *m
		s.metrics[cp.Date] = &cp
	}
	return nil
}

func (s *Store) GetMetric(_ context.Context, day types.Date) (*budget.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.metrics[day]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, costwatch.ErrNotFound
}

func (s *Store) ListMetrics(_ context.Context, opts budget.QueryOpts) ([]*budget.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*budget.Metric, 0)
	for _, m := range s.metrics {
		if !opts.Start.IsZero() && m.Date.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && opts.End.Before(m.Date) {
			continue
		}
		cp := *m
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) MetricsByMonth(_ context.Context, month types.YearMonth) ([]*budget.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*budget.Metric, 0)
	for _, m := range s.metrics {
		if month.Contains(m.Date) {
			cp := *m
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// page applies offset/limit to a sorted result slice.
func page[T any](result []T, offset, limit int) []T {
	start := offset
	if start > len(result) {
		start = len(result)
	}
	end := start + limit
	if limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end]
}
