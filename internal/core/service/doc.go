// Package service provides the stats export core for statmesh.
//
// Services contain pure logic over a domain.Source snapshot and a
// domain.LookupTracker. They never reach into a concrete registry,
// so they can be exercised with synthetic in-memory snapshots.
//
// This package contains:
//
//   - Filter: used-only and name-regex selection of metrics
//   - AggregateQuantiles: interval/cumulative quantile alignment
//   - RenderText and RenderJSON: the plain and JSON renderers
//   - StatsService: the export dispatcher and counter reset
//   - LookupService: the recent-lookups toggle and query
//
// Rendering is sequential and read-only. Reset and clear operations are
// applied metric by metric and are not atomic as a whole.
package service
