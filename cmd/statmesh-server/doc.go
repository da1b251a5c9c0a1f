// Package main provides the entry point for statmesh-server.
//
// The server keeps an in-memory stats registry and exposes it over the
// admin HTTP API: snapshot export in plain text, JSON and Prometheus
// formats, recent-lookup tracking and counter resets.
//
// Usage:
//
//	statmesh-server [flags]
//	statmesh-server --config /path/to/config.yaml --set log.level=debug
//
// Settings are read from defaults, then the config file, then
// STATMESH_* environment variables, then --set flags.
package main
