package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/core/service"
	"github.com/yndnr/statmesh/internal/storage/memory"
	"github.com/yndnr/statmesh/internal/telemetry/metric"
)

// StatCounts defines the registry sizes for benchmarking. Real proxies
// carry tens of thousands of stats per cluster-heavy configuration.
var StatCounts = []int{1000, 10000, 50000, 100000}

// SmallStatCounts for quick benchmarks.
var SmallStatCounts = []int{1000, 10000}

// histogramShare is one histogram per this many counters.
const histogramShare = 20

// statName returns a dotted name spread over a few hundred clusters.
func statName(kind string, i int) string {
	return fmt.Sprintf("cluster.service_%d.%s_%d", i%500, kind, i)
}

// prefillStore creates count counters, count/2 gauges, count/20
// histograms and one text readout. Every other counter stays unused.
func prefillStore(count int) *memory.Store {
	store := memory.New()
	for i := 0; i < count; i++ {
		c := store.Counter(statName("upstream_rq", i))
		if i%2 == 0 {
			c.Add(uint64(i))
		}
	}
	for i := 0; i < count/2; i++ {
		store.Gauge(statName("membership", i), domain.ImportModeNeverImport).Set(uint64(i))
	}
	for i := 0; i < count/histogramShare; i++ {
		h := store.Histogram(statName("upstream_rq_time", i))
		for v := 1; v <= 50; v++ {
			h.RecordValue(float64(v * (i%7 + 1)))
		}
	}
	store.MergeHistograms()
	store.TextReadout("server.version").Set("bench")
	return store
}

// newStatsService wires a StatsService over store the way the server does.
func newStatsService(store *memory.Store) *service.StatsService {
	return service.NewStatsService(store, store.Lookups(), metric.NewPrometheusSink("bench"))
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithStatCounts runs a benchmark function with various registry sizes.
func runWithStatCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("stats_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
