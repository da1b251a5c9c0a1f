package memory

import (
	"sync"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/pkg/cmap"
)

// Store is an in-memory stats registry. It implements domain.Source.
type Store struct {
	counters     *cmap.Map[*Counter]
	gauges       *cmap.Map[*Gauge]
	textReadouts *cmap.Map[*TextReadout]
	histograms   *cmap.Map[*Histogram]

	// Creation order per kind, guarded by mu.
	mu              sync.RWMutex
	counterList     []*Counter
	gaugeList       []*Gauge
	textReadoutList []*TextReadout
	histogramList   []*Histogram

	lookups   *Lookups
	quantiles []float64
	buckets   []float64
}

// Option configures the Store.
type Option func(*Store)

// WithSupportedQuantiles sets the quantile levels histograms are
// summarized at.
func WithSupportedQuantiles(levels []float64) Option {
	return func(s *Store) {
		s.quantiles = levels
	}
}

// WithHistogramBuckets sets the bucket upper bounds of new histograms.
func WithHistogramBuckets(buckets []float64) Option {
	return func(s *Store) {
		s.buckets = buckets
	}
}

// WithShardCount sets the shard count of the name indexes.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.counters = cmap.NewWithShards[*Counter](n)
		s.gauges = cmap.NewWithShards[*Gauge](n)
		s.textReadouts = cmap.NewWithShards[*TextReadout](n)
		s.histograms = cmap.NewWithShards[*Histogram](n)
	}
}

// New creates an empty store with recent-lookup tracking disabled.
func New(opts ...Option) *Store {
	s := &Store{
		counters:     cmap.New[*Counter](),
		gauges:       cmap.New[*Gauge](),
		textReadouts: cmap.New[*TextReadout](),
		histograms:   cmap.New[*Histogram](),
		lookups:      NewLookups(),
		quantiles:    domain.DefaultSupportedQuantiles,
		buckets:      DefaultHistogramBuckets,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Lookups returns the recent-lookups table fed by every access by name.
func (s *Store) Lookups() *Lookups {
	return s.lookups
}

// Counter returns the counter called name, creating it on first use.
func (s *Store) Counter(name string) *Counter {
	s.lookups.Record(name)
	c, _ := s.counters.GetOrCreate(name, func() *Counter {
		c := &Counter{name: name}
		s.mu.Lock()
		s.counterList = append(s.counterList, c)
		s.mu.Unlock()
		return c
	})
	return c
}

// Gauge returns the gauge called name, creating it with mode on first use.
// A later call with a different mode gets the existing gauge unchanged.
func (s *Store) Gauge(name string, mode domain.ImportMode) *Gauge {
	s.lookups.Record(name)
	g, _ := s.gauges.GetOrCreate(name, func() *Gauge {
		g := &Gauge{name: name, mode: mode}
		s.mu.Lock()
		s.gaugeList = append(s.gaugeList, g)
		s.mu.Unlock()
		return g
	})
	return g
}

// TextReadout returns the text readout called name, creating it on first use.
func (s *Store) TextReadout(name string) *TextReadout {
	s.lookups.Record(name)
	t, _ := s.textReadouts.GetOrCreate(name, func() *TextReadout {
		t := &TextReadout{name: name}
		s.mu.Lock()
		s.textReadoutList = append(s.textReadoutList, t)
		s.mu.Unlock()
		return t
	})
	return t
}

// Histogram returns the histogram called name, creating it on first use.
func (s *Store) Histogram(name string) *Histogram {
	s.lookups.Record(name)
	h, _ := s.histograms.GetOrCreate(name, func() *Histogram {
		h := newHistogram(name, s.quantiles, s.buckets)
		s.mu.Lock()
		s.histogramList = append(s.histogramList, h)
		s.mu.Unlock()
		return h
	})
	return h
}

// MergeHistograms closes the interval window of every histogram.
func (s *Store) MergeHistograms() {
	s.mu.RLock()
	histograms := make([]*Histogram, len(s.histogramList))
	copy(histograms, s.histogramList)
	s.mu.RUnlock()

	for _, h := range histograms {
		h.merge()
	}
}

// Counters implements domain.Source.
func (s *Store) Counters() []domain.Counter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Counter, len(s.counterList))
	for i, c := range s.counterList {
		out[i] = c
	}
	return out
}

// Gauges implements domain.Source.
func (s *Store) Gauges() []domain.Gauge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Gauge, len(s.gaugeList))
	for i, g := range s.gaugeList {
		out[i] = g
	}
	return out
}

// TextReadouts implements domain.Source.
func (s *Store) TextReadouts() []domain.TextReadout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TextReadout, len(s.textReadoutList))
	for i, t := range s.textReadoutList {
		out[i] = t
	}
	return out
}

// Histograms implements domain.Source.
func (s *Store) Histograms() []domain.ParentHistogram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ParentHistogram, len(s.histogramList))
	for i, h := range s.histogramList {
		out[i] = h
	}
	return out
}

// Len returns the number of stats of every kind.
func (s *Store) Len() int {
	return s.counters.Len() + s.gauges.Len() + s.textReadouts.Len() + s.histograms.Len()
}
