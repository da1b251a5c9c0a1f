// Package command defines the statmesh-cli commands using urfave/cli/v2:
//
//   - root.go: application, global flags and client construction
//   - stats.go: stats snapshot export
//   - lookups.go: recent-lookup tracking
//   - admin.go: counter reset
//   - health.go: health and readiness probes
//
// Every command writes to the application's Writer so tests can capture
// it.
package command
