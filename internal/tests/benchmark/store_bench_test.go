package benchmark

import (
	"testing"

	"github.com/yndnr/statmesh/internal/storage/memory"
)

// BenchmarkStoreCounterLookup benchmarks resolving an existing counter by
// name with lookup tracking disabled.
func BenchmarkStoreCounterLookup(b *testing.B) {
	runWithStatCounts(b, SmallStatCounts, func(b *testing.B, count int) {
		store := prefillStore(count)
		names := make([]string, count)
		for i := range names {
			names[i] = statName("upstream_rq", i)
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			store.Counter(names[i%count]).Inc()
		}
	})
}

// BenchmarkStoreCounterLookupTracked is BenchmarkStoreCounterLookup with
// recent lookups armed.
func BenchmarkStoreCounterLookupTracked(b *testing.B) {
	runWithStatCounts(b, SmallStatCounts, func(b *testing.B, count int) {
		store := prefillStore(count)
		store.Lookups().SetRecentLookupCapacity(100)
		names := make([]string, count)
		for i := range names {
			names[i] = statName("upstream_rq", i)
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			store.Counter(names[i%count]).Inc()
		}
	})
}

// BenchmarkStoreCounterLookupParallel benchmarks concurrent lookups
// across the sharded maps.
func BenchmarkStoreCounterLookupParallel(b *testing.B) {
	const count = 10000
	store := prefillStore(count)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			store.Counter(statName("upstream_rq", i%count)).Inc()
			i++
		}
	})
}

// BenchmarkHistogramRecord benchmarks a single observation.
func BenchmarkHistogramRecord(b *testing.B) {
	store := memory.New()
	h := store.Histogram("cluster.service_0.upstream_rq_time")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		h.RecordValue(float64(i % 1000))
	}
}

// BenchmarkMergeHistograms benchmarks closing every interval window.
func BenchmarkMergeHistograms(b *testing.B) {
	runWithStatCounts(b, SmallStatCounts, func(b *testing.B, count int) {
		store := prefillStore(count)

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			store.MergeHistograms()
		}
	})
}
