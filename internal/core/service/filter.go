// Package service provides the stats export core for statmesh.
package service

import (
	"regexp"

	"github.com/yndnr/statmesh/internal/core/domain"
)

// Filter selects metrics by usage state and name pattern.
//
// The zero value passes every metric.
type Filter struct {
	// UsedOnly drops metrics that have never recorded anything.
	UsedOnly bool
	// Pattern, when set, must match somewhere in the metric name.
	Pattern *regexp.Regexp
}

// CompileFilter builds a Filter from the raw query values.
// An empty pattern disables name filtering.
func CompileFilter(usedOnly bool, pattern string) (Filter, error) {
	f := Filter{UsedOnly: usedOnly}
	if pattern == "" {
		return f, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Filter{}, domain.ErrInvalidFilter.WithDetails(err.Error()).WithCause(err)
	}
	f.Pattern = re
	return f, nil
}

// Passes reports whether m survives both criteria.
func (f Filter) Passes(m domain.Metric) bool {
	if f.UsedOnly && !m.Used() {
		return false
	}
	if f.Pattern != nil && !f.Pattern.MatchString(m.Name()) {
		return false
	}
	return true
}

// Filtered is the subset of a snapshot that survived a Filter, split by kind.
// Slices keep the snapshot's iteration order.
type Filtered struct {
	Counters     []domain.Counter
	Gauges       []domain.Gauge
	TextReadouts []domain.TextReadout
	Histograms   []domain.ParentHistogram
}

// Apply runs every metric of src through the filter.
func (f Filter) Apply(src domain.Source) Filtered {
	var out Filtered
	for _, c := range src.Counters() {
		if f.Passes(c) {
			out.Counters = append(out.Counters, c)
		}
	}
	for _, g := range src.Gauges() {
		if f.Passes(g) {
			out.Gauges = append(out.Gauges, g)
		}
	}
	for _, t := range src.TextReadouts() {
		if f.Passes(t) {
			out.TextReadouts = append(out.TextReadouts, t)
		}
	}
	for _, h := range src.Histograms() {
		if f.Passes(h) {
			out.Histograms = append(out.Histograms, h)
		}
	}
	return out
}

// Empty reports whether nothing survived.
func (f Filtered) Empty() bool {
	return len(f.Counters) == 0 && len(f.Gauges) == 0 &&
		len(f.TextReadouts) == 0 && len(f.Histograms) == 0
}
