// Package service provides the stats export core for statmesh.
package service

import "github.com/yndnr/statmesh/internal/core/domain"

// DefaultRecentLookupsCapacity is the tracker capacity Enable arms.
const DefaultRecentLookupsCapacity uint64 = 100

// LookupRow is one tracked name and how often it was looked up.
type LookupRow struct {
	Name  string `json:"name" yaml:"name"`
	Count uint64 `json:"count" yaml:"count"`
}

// LookupReport is the result of querying recent lookups.
type LookupReport struct {
	// Rows are in the tracker's own iteration order.
	Rows []LookupRow `json:"rows" yaml:"rows"`
	// Total counts every lookup since the last clear, including names
	// that were evicted from Rows.
	Total uint64 `json:"total" yaml:"total"`
	// NotEnabled is set when tracking is off and nothing was recorded,
	// as opposed to tracking being on with no lookups yet.
	NotEnabled bool `json:"not_enabled" yaml:"not_enabled"`
}

// LookupService toggles and queries recent-lookup tracking.
//
// Tracking starts disabled and only changes through Enable, Disable,
// Clear and StatsService.ResetCounters.
type LookupService struct {
	tracker  domain.LookupTracker
	capacity uint64
}

// NewLookupService creates a LookupService. A zero capacity selects
// DefaultRecentLookupsCapacity.
func NewLookupService(tracker domain.LookupTracker, capacity uint64) *LookupService {
	if capacity == 0 {
		capacity = DefaultRecentLookupsCapacity
	}
	return &LookupService{tracker: tracker, capacity: capacity}
}

// Enable arms tracking at the configured capacity. Enabling twice re-arms
// at the same capacity.
func (s *LookupService) Enable() {
	s.tracker.SetRecentLookupCapacity(s.capacity)
}

// Disable turns tracking off; the tracker discards its history.
func (s *LookupService) Disable() {
	s.tracker.SetRecentLookupCapacity(0)
}

// Clear zeroes the recorded lookups without changing the enabled state.
func (s *LookupService) Clear() {
	s.tracker.ClearRecentLookups()
}

// Enabled reports whether tracking is on.
func (s *LookupService) Enabled() bool {
	return s.tracker.RecentLookupCapacity() > 0
}

// Capacity returns the capacity Enable arms.
func (s *LookupService) Capacity() uint64 {
	return s.capacity
}

// Query returns the tracked names and the lookup total.
func (s *LookupService) Query() LookupReport {
	var rows []LookupRow
	total := s.tracker.RecentLookups(func(name string, count uint64) {
		rows = append(rows, LookupRow{Name: name, Count: count})
	})
	return LookupReport{
		Rows:       rows,
		Total:      total,
		NotEnabled: len(rows) == 0 && s.tracker.RecentLookupCapacity() == 0,
	}
}
