// Package domain defines the core domain models for statmesh.
//
// The models describe a point-in-time view of a stats registry without
// any IO dependencies or framework coupling. This package contains:
//
//   - Metric kinds: Counter, Gauge, TextReadout, ParentHistogram
//   - HistogramStatistics: quantile levels paired with computed values
//   - Source: the read-only snapshot the export core consumes
//   - LookupTracker: the bounded recent-lookups record of a symbol table
//   - Errors: Domain-specific error definitions
package domain
