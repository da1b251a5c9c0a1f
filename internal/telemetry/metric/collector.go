package metric

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/storage/memory"
)

// DefaultRuntimeInterval is how often runtime figures are sampled.
const DefaultRuntimeInterval = 10 * time.Second

// Gauge names written by the runtime collector.
const (
	GaugeGoroutines     = "runtime.goroutines"
	GaugeHeapAllocBytes = "runtime.heap_alloc_bytes"
	GaugeGCCycles       = "runtime.gc_cycles"
	GaugeUptimeSeconds  = "server.uptime_seconds"
)

// Collector samples Go runtime figures into gauges of a store.
type Collector struct {
	interval time.Duration
	started  time.Time
	logger   *slog.Logger

	goroutines *memory.Gauge
	heapAlloc  *memory.Gauge
	gcCycles   *memory.Gauge
	uptime     *memory.Gauge

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewCollector creates a collector writing into store. The gauges are
// created immediately; they stay unused until the first Collect.
func NewCollector(store *memory.Store, interval time.Duration, logger *slog.Logger) *Collector {
	if interval <= 0 {
		interval = DefaultRuntimeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		interval:   interval,
		started:    time.Now(),
		logger:     logger,
		goroutines: store.Gauge(GaugeGoroutines, domain.ImportModeNeverImport),
		heapAlloc:  store.Gauge(GaugeHeapAllocBytes, domain.ImportModeNeverImport),
		gcCycles:   store.Gauge(GaugeGCCycles, domain.ImportModeNeverImport),
		uptime:     store.Gauge(GaugeUptimeSeconds, domain.ImportModeNeverImport),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Collect samples every figure once.
func (c *Collector) Collect() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	c.goroutines.Set(uint64(runtime.NumGoroutine()))
	c.heapAlloc.Set(ms.HeapAlloc)
	c.gcCycles.Set(uint64(ms.NumGC))
	c.uptime.Set(uint64(time.Since(c.started).Seconds()))
}

// Start samples once and then on every interval until Stop.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.stopped {
		return
	}
	c.running = true
	c.Collect()
	go c.loop()
	c.logger.Info("runtime collector started", "interval", c.interval)
}

func (c *Collector) loop() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Collect()
		case <-c.stopCh:
			return
		}
	}
}

// Stop ends the sampling loop and waits for it to exit.
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.stopped = true
	close(c.stopCh)
	<-c.doneCh
	c.logger.Info("runtime collector stopped")
}
