// Package main provides the entry point for statmesh-cli.
//
// Usage:
//
//	statmesh-cli [--server host:port] [--output raw|table|json|yaml] <command>
//
// Commands: stats, lookups {show,enable,disable,clear}, reset-counters,
// health.
package main
