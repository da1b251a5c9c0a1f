package memory

import (
	"sync"
	"sync/atomic"

	"github.com/yndnr/statmesh/internal/core/domain"
)

// Counter is a monotonically increasing stat.
type Counter struct {
	name  string
	value atomic.Uint64
	used  atomic.Bool
}

// Name implements domain.Metric.
func (c *Counter) Name() string { return c.name }

// Used implements domain.Metric.
func (c *Counter) Used() bool { return c.used.Load() }

// Value returns the current count.
func (c *Counter) Value() uint64 { return c.value.Load() }

// Inc adds one.
func (c *Counter) Inc() { c.Add(1) }

// Add adds n.
func (c *Counter) Add(n uint64) {
	c.value.Add(n)
	c.used.Store(true)
}

// Reset sets the count back to zero. The counter stays used.
func (c *Counter) Reset() { c.value.Store(0) }

// Gauge is a stat that can go up and down.
type Gauge struct {
	name  string
	mode  domain.ImportMode
	value atomic.Uint64
	used  atomic.Bool
}

// Name implements domain.Metric.
func (g *Gauge) Name() string { return g.name }

// Used implements domain.Metric.
func (g *Gauge) Used() bool { return g.used.Load() }

// Value returns the current value.
func (g *Gauge) Value() uint64 { return g.value.Load() }

// ImportMode returns the mode the gauge was created with.
func (g *Gauge) ImportMode() domain.ImportMode { return g.mode }

// Set replaces the value.
func (g *Gauge) Set(v uint64) {
	g.value.Store(v)
	g.used.Store(true)
}

// Add increases the value by n.
func (g *Gauge) Add(n uint64) {
	g.value.Add(n)
	g.used.Store(true)
}

// Sub decreases the value by n, stopping at zero.
func (g *Gauge) Sub(n uint64) {
	for {
		old := g.value.Load()
		next := uint64(0)
		if old > n {
			next = old - n
		}
		if g.value.CompareAndSwap(old, next) {
			break
		}
	}
	g.used.Store(true)
}

// Inc adds one.
func (g *Gauge) Inc() { g.Add(1) }

// Dec subtracts one.
func (g *Gauge) Dec() { g.Sub(1) }

// TextReadout is a stat holding a string.
type TextReadout struct {
	name  string
	mu    sync.RWMutex
	value string
	used  atomic.Bool
}

// Name implements domain.Metric.
func (t *TextReadout) Name() string { return t.name }

// Used implements domain.Metric.
func (t *TextReadout) Used() bool { return t.used.Load() }

// Value returns the current string.
func (t *TextReadout) Value() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set replaces the string.
func (t *TextReadout) Set(v string) {
	t.mu.Lock()
	t.value = v
	t.mu.Unlock()
	t.used.Store(true)
}
