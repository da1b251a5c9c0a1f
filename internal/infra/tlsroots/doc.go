// Package tlsroots provides the TLS material used by statmesh.
//
//   - roots.go: trust pools for the CLI (system roots plus a custom CA)
//   - reloader.go: the server certificate, reloaded when its files change
package tlsroots
