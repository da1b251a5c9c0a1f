// Package memory provides the in-memory stats store for statmesh.
//
// The store is the registry behind domain.Source. Stats are created on
// first access by name and live for the lifetime of the process:
//
//   - Counters and gauges are plain atomics.
//   - Text readouts hold a string under a mutex.
//   - Histograms keep an interval window and a cumulative window, both
//     backed by client_golang histograms, and publish quantile statistics
//     each time MergeHistograms closes the interval.
//
// Every access by name is recorded in the store's recent-lookups table,
// which is disabled until a capacity is set.
//
// Thread Safety:
//
// All operations are thread-safe. The name index is a sharded cmap.Map;
// listings return stats in creation order.
package memory
