// Package shutdown coordinates graceful termination of statmesh-server.
//
// Hooks registered with OnShutdown run in reverse registration order once
// SIGINT or SIGTERM arrives or the context passed to Wait is cancelled,
// all under a shared timeout.
package shutdown
