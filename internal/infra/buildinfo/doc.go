// Package buildinfo exposes build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/statmesh/internal/infra/buildinfo.Version=v1.0.0"
//
// The server publishes Version as the server.version text readout.
package buildinfo
