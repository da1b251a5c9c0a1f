// Package service provides the stats export core for statmesh.
package service

import (
	"math"
	"sync"

	"github.com/yndnr/statmesh/internal/core/domain"
)

type mockCounter struct {
	name  string
	value uint64
	used  bool
}

func (c *mockCounter) Name() string  { return c.name }
func (c *mockCounter) Used() bool    { return c.used }
func (c *mockCounter) Value() uint64 { return c.value }
func (c *mockCounter) Reset()        { c.value = 0 }

type mockGauge struct {
	name  string
	value uint64
	used  bool
	mode  domain.ImportMode
}

func (g *mockGauge) Name() string                  { return g.name }
func (g *mockGauge) Used() bool                    { return g.used }
func (g *mockGauge) Value() uint64                 { return g.value }
func (g *mockGauge) ImportMode() domain.ImportMode { return g.mode }

type mockTextReadout struct {
	name  string
	value string
	used  bool
}

func (t *mockTextReadout) Name() string  { return t.name }
func (t *mockTextReadout) Used() bool    { return t.used }
func (t *mockTextReadout) Value() string { return t.value }

type mockStats struct {
	supported []float64
	computed  []float64
}

func (s mockStats) SupportedQuantiles() []float64 { return s.supported }
func (s mockStats) ComputedQuantiles() []float64  { return s.computed }
func (s mockStats) SampleCount() uint64           { return 0 }
func (s mockStats) SampleSum() float64            { return 0 }

type mockHistogram struct {
	name       string
	used       bool
	interval   mockStats
	cumulative mockStats
}

func (h *mockHistogram) Name() string { return h.name }
func (h *mockHistogram) Used() bool   { return h.used }
func (h *mockHistogram) IntervalStatistics() domain.HistogramStatistics {
	return h.interval
}
func (h *mockHistogram) CumulativeStatistics() domain.HistogramStatistics {
	return h.cumulative
}
func (h *mockHistogram) QuantileSummary() string {
	return domain.QuantileSummary(h.interval, h.cumulative)
}

// newMockHistogram builds a used histogram over levels; a nil slice of
// values stands for a window without samples.
func newMockHistogram(name string, levels, interval, cumulative []float64) *mockHistogram {
	return &mockHistogram{
		name:       name,
		used:       true,
		interval:   mockStats{supported: levels, computed: windowValues(levels, interval)},
		cumulative: mockStats{supported: levels, computed: windowValues(levels, cumulative)},
	}
}

func windowValues(levels, values []float64) []float64 {
	if values != nil {
		return values
	}
	out := make([]float64, len(levels))
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

type mockSource struct {
	counters     []domain.Counter
	gauges       []domain.Gauge
	textReadouts []domain.TextReadout
	histograms   []domain.ParentHistogram
}

func (s *mockSource) Counters() []domain.Counter           { return s.counters }
func (s *mockSource) Gauges() []domain.Gauge               { return s.gauges }
func (s *mockSource) TextReadouts() []domain.TextReadout   { return s.textReadouts }
func (s *mockSource) Histograms() []domain.ParentHistogram { return s.histograms }

type lookupEntry struct {
	name  string
	count uint64
}

// mockTracker keeps insertion order and evicts the oldest name once full.
type mockTracker struct {
	mu       sync.Mutex
	capacity uint64
	entries  []lookupEntry
	total    uint64
}

func (t *mockTracker) lookup(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.capacity == 0 {
		return
	}
	t.total++
	for i := range t.entries {
		if t.entries[i].name == name {
			t.entries[i].count++
			return
		}
	}
	if uint64(len(t.entries)) == t.capacity {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, lookupEntry{name: name, count: 1})
}

func (t *mockTracker) RecentLookups(fn func(name string, count uint64)) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		fn(e.name, e.count)
	}
	return t.total
}

func (t *mockTracker) ClearRecentLookups() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.total = 0
}

func (t *mockTracker) SetRecentLookupCapacity(capacity uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.capacity = capacity
	if capacity == 0 {
		t.entries = nil
		return
	}
	for uint64(len(t.entries)) > capacity {
		t.entries = t.entries[1:]
	}
}

func (t *mockTracker) RecentLookupCapacity() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.capacity
}
