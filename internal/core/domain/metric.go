// Package domain defines the core domain models for statmesh.
package domain

// Metric is the part every stat kind shares: a name and whether anything
// has ever been recorded into it.
type Metric interface {
	// Name returns the fully-qualified stat name.
	Name() string
	// Used reports whether the stat was incremented, set or observed
	// at least once since creation.
	Used() bool
}

// Counter is a monotonically increasing value that can be reset to zero.
type Counter interface {
	Metric
	Value() uint64
	Reset()
}

// ImportMode describes how a gauge value is carried across a hot restart.
type ImportMode int

const (
	// ImportModeUninitialized means the registry never assigned a mode.
	// Such a gauge must never reach a renderer.
	ImportModeUninitialized ImportMode = iota
	// ImportModeNeverImport means the value starts fresh on every restart.
	ImportModeNeverImport
	// ImportModeAccumulate means the value is summed across restarts.
	ImportModeAccumulate
)

// String returns the import mode name.
func (m ImportMode) String() string {
	switch m {
	case ImportModeNeverImport:
		return "never_import"
	case ImportModeAccumulate:
		return "accumulate"
	default:
		return "uninitialized"
	}
}

// Gauge is a value that can go up and down.
type Gauge interface {
	Metric
	Value() uint64
	ImportMode() ImportMode
}

// TextReadout holds a string value.
type TextReadout interface {
	Metric
	Value() string
}

// ParentHistogram is a histogram summarized over two windows: the most
// recent flush interval and the lifetime of the process.
type ParentHistogram interface {
	Metric
	IntervalStatistics() HistogramStatistics
	CumulativeStatistics() HistogramStatistics
	// QuantileSummary is a pre-formatted one-line summary of both windows.
	QuantileSummary() string
}

// Source is a read-only, point-in-time view of a stats registry.
//
// Each list is ordered the way the registry iterates it. The view is not
// required to be consistent across metrics.
type Source interface {
	Counters() []Counter
	Gauges() []Gauge
	TextReadouts() []TextReadout
	Histograms() []ParentHistogram
}

// LookupTracker records recent stat-name lookups made against a symbol table.
//
// A capacity of zero disables tracking and discards the recorded history.
type LookupTracker interface {
	// RecentLookups calls fn for every tracked name and returns the total
	// number of lookups since the last clear.
	RecentLookups(fn func(name string, count uint64)) uint64
	ClearRecentLookups()
	SetRecentLookupCapacity(capacity uint64)
	RecentLookupCapacity() uint64
}
