package memory

import (
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/yndnr/statmesh/internal/core/domain"
)

// DefaultHistogramBuckets covers 0.1 to 10 million in the unit the caller
// records, typically milliseconds or bytes.
var DefaultHistogramBuckets = prometheus.ExponentialBucketsRange(0.1, 1e7, 64)

// noRecordedValues is the summary of a histogram that was never merged
// with samples.
const noRecordedValues = "No recorded values"

// statistics is a computed view of one histogram window.
type statistics struct {
	supported []float64
	computed  []float64
	count     uint64
	sum       float64
}

func (s *statistics) SupportedQuantiles() []float64 { return s.supported }
func (s *statistics) ComputedQuantiles() []float64  { return s.computed }
func (s *statistics) SampleCount() uint64           { return s.count }
func (s *statistics) SampleSum() float64            { return s.sum }

// window accumulates samples into bucketed counts and tracks the extremes,
// which the buckets alone cannot reproduce.
type window struct {
	hist prometheus.Histogram
	min  float64
	max  float64
}

func newWindow(name string, buckets []float64) *window {
	return &window{
		hist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "window",
			Help:    "Samples recorded into " + name + ".",
			Buckets: buckets,
		}),
		min: math.Inf(1),
		max: math.Inf(-1),
	}
}

func (w *window) observe(v float64) {
	w.hist.Observe(v)
	w.min = math.Min(w.min, v)
	w.max = math.Max(w.max, v)
}

func (w *window) statistics(levels []float64) *statistics {
	var m dto.Metric
	if err := w.hist.Write(&m); err != nil {
		return emptyStatistics(levels)
	}
	h := m.GetHistogram()

	s := &statistics{
		supported: levels,
		computed:  make([]float64, len(levels)),
		count:     h.GetSampleCount(),
		sum:       h.GetSampleSum(),
	}
	for i, q := range levels {
		s.computed[i] = valueAtQuantile(h, q, w.min, w.max)
	}
	return s
}

func emptyStatistics(levels []float64) *statistics {
	s := &statistics{supported: levels, computed: make([]float64, len(levels))}
	for i := range s.computed {
		s.computed[i] = math.NaN()
	}
	return s
}

// valueAtQuantile linearly interpolates the q-th quantile inside the
// bucket holding that rank, clamped to the observed extremes. It returns
// NaN for a histogram without samples.
func valueAtQuantile(h *dto.Histogram, q, lo, hi float64) float64 {
	total := h.GetSampleCount()
	if total == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return lo
	}
	if q >= 1 {
		return hi
	}

	rank := q * float64(total)
	lower := lo
	var prev uint64
	for _, b := range h.GetBucket() {
		count := b.GetCumulativeCount()
		upper := b.GetUpperBound()
		if count > prev && float64(count) >= rank {
			from := math.Max(lower, lo)
			to := math.Min(upper, hi)
			v := from + (to-from)*(rank-float64(prev))/float64(count-prev)
			return math.Max(lo, math.Min(hi, v))
		}
		prev = count
		lower = upper
	}
	return hi
}

// Histogram records samples and summarizes them over the last closed
// interval and over the whole process lifetime.
type Histogram struct {
	name    string
	levels  []float64
	buckets []float64

	mu         sync.Mutex
	current    *window
	cumulative *window
	used       bool

	intervalStats   *statistics
	cumulativeStats *statistics
}

func newHistogram(name string, levels, buckets []float64) *Histogram {
	return &Histogram{
		name:            name,
		levels:          levels,
		buckets:         buckets,
		current:         newWindow(name, buckets),
		cumulative:      newWindow(name, buckets),
		intervalStats:   emptyStatistics(levels),
		cumulativeStats: emptyStatistics(levels),
	}
}

// Name implements domain.Metric.
func (h *Histogram) Name() string { return h.name }

// Used reports whether a merge has ever published samples.
func (h *Histogram) Used() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.used
}

// RecordValue adds one sample. It becomes visible at the next merge.
// NaN and infinite samples are dropped.
func (h *Histogram) RecordValue(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current.observe(v)
	h.cumulative.observe(v)
}

// merge closes the interval window and republishes both statistics.
func (h *Histogram) merge() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.intervalStats = h.current.statistics(h.levels)
	h.cumulativeStats = h.cumulative.statistics(h.levels)
	if h.cumulativeStats.count > 0 {
		h.used = true
	}
	h.current = newWindow(h.name, h.buckets)
}

// IntervalStatistics implements domain.ParentHistogram.
func (h *Histogram) IntervalStatistics() domain.HistogramStatistics {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.intervalStats
}

// CumulativeStatistics implements domain.ParentHistogram.
func (h *Histogram) CumulativeStatistics() domain.HistogramStatistics {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cumulativeStats
}

// QuantileSummary implements domain.ParentHistogram.
func (h *Histogram) QuantileSummary() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.used {
		return noRecordedValues
	}
	return domain.QuantileSummary(h.intervalStats, h.cumulativeStats)
}
