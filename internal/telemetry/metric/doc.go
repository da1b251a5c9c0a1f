// Package metric bridges statmesh stats to external consumers.
//
//   - prometheus.go: renders counters, gauges and histograms in the
//     Prometheus text exposition format
//   - collector.go: samples Go runtime figures into gauges of the store
//
// Histograms are exposed as summaries: their cumulative quantiles become
// quantile samples and the cumulative count and sum become _count and _sum.
package metric
