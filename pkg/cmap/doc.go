// Package cmap provides a concurrent map keyed by stat name.
//
// The map is split into shards, each guarded by its own RWMutex, and keys
// are assigned to shards with murmur3. It backs the name index of the
// in-memory stats store, where lookups by name vastly outnumber inserts.
//
// Usage:
//
//	m := cmap.New[*counter]()
//	c, created := m.GetOrCreate("http.requests_total", newCounter)
//
// Thread Safety:
//
// All operations are thread-safe. Get uses RLock; GetOrCreate upgrades to
// Lock only when the key is missing.
package cmap
