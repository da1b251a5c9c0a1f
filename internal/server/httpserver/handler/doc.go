// Package handler provides the HTTP endpoints of the statmesh admin API.
//
// This package contains handlers for:
//
//   - stats.go: snapshot export in plain, JSON and Prometheus formats
//   - lookups.go: recent-lookup tracking controls
//   - admin.go: counter reset
//   - health.go: health and readiness checks
//
// Export and lookup endpoints answer in text/plain except where the
// requested format says otherwise. Failures outside the export path are
// written as the JSON envelope from types.go.
package handler
