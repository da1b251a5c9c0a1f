package memory

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultFlushInterval is how often histogram interval windows are closed.
const DefaultFlushInterval = 5 * time.Second

// Flusher periodically merges the histograms of a Store.
type Flusher struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger

	// OnFlush, when set, runs after every merge.
	OnFlush func()

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFlusher creates a Flusher. A non-positive interval selects
// DefaultFlushInterval.
func NewFlusher(store *Store, interval time.Duration, logger *slog.Logger) *Flusher {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Flusher{
		store:    store,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the flush loop. Calling Start more than once has no effect.
func (f *Flusher) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running || f.stopped {
		return
	}
	f.running = true
	f.logger.Info("histogram flusher started", "interval", f.interval)
	go f.loop()
}

func (f *Flusher) loop() {
	defer close(f.doneCh)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.Flush()
		case <-f.stopCh:
			return
		}
	}
}

// Flush merges every histogram now.
func (f *Flusher) Flush() {
	f.store.MergeHistograms()
	if f.OnFlush != nil {
		f.OnFlush()
	}
}

// Stop ends the flush loop and waits for it to exit. A final merge is run
// so samples recorded since the last tick are published.
func (f *Flusher) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	running := f.running
	f.mu.Unlock()

	close(f.stopCh)
	if running {
		<-f.doneCh
	}
	f.Flush()
	f.logger.Info("histogram flusher stopped")
}
