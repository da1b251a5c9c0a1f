// Package service provides the stats export core for statmesh.
package service

import (
	"io"
	"regexp"

	"github.com/yndnr/statmesh/internal/core/domain"
)

// FormatKind enumerates the encodings the export endpoint understands.
type FormatKind int

const (
	// FormatPlain is the line-oriented text encoding, used when no format is given.
	FormatPlain FormatKind = iota
	// FormatJSON is the {"stats": [...]} document.
	FormatJSON
	// FormatPrometheus is the Prometheus text exposition format.
	FormatPrometheus
	// FormatUnknown is any other explicit value; Raw holds it.
	FormatUnknown
)

// Format is the format selector decided once at the request boundary.
type Format struct {
	Kind FormatKind
	Raw  string
}

// ParseFormat maps the raw "format" query value onto a Format.
// present is false when the parameter was not supplied at all.
func ParseFormat(raw string, present bool) Format {
	if !present {
		return Format{Kind: FormatPlain}
	}
	switch raw {
	case "json":
		return Format{Kind: FormatJSON, Raw: raw}
	case "prometheus":
		return Format{Kind: FormatPrometheus, Raw: raw}
	default:
		return Format{Kind: FormatUnknown, Raw: raw}
	}
}

// String returns the selector as it would appear in a query string.
func (f Format) String() string {
	switch f.Kind {
	case FormatPlain:
		return "plain"
	case FormatJSON:
		return "json"
	case FormatPrometheus:
		return "prometheus"
	default:
		return f.Raw
	}
}

// PrometheusSink renders stats in the Prometheus exposition format.
//
// It receives the already-filtered metrics together with the filter that
// selected them and writes straight to w.
type PrometheusSink interface {
	Render(w io.Writer, counters []domain.Counter, gauges []domain.Gauge,
		histograms []domain.ParentHistogram, usedOnly bool, pattern *regexp.Regexp) error
}

// ExportQuery is one parsed request against the export endpoint.
type ExportQuery struct {
	Format   Format
	UsedOnly bool
	Filter   string
	Pretty   bool
}

// StatsService exports a stats snapshot and performs bulk counter resets.
type StatsService struct {
	source  domain.Source
	tracker domain.LookupTracker
	prom    PrometheusSink
}

// NewStatsService creates a StatsService. prom may be nil, in which case
// Prometheus requests render nothing.
func NewStatsService(source domain.Source, tracker domain.LookupTracker, prom PrometheusSink) *StatsService {
	return &StatsService{
		source:  source,
		tracker: tracker,
		prom:    prom,
	}
}

// Export filters the snapshot and writes it to w in the requested format.
//
// Client errors (domain.ErrInvalidFilter, domain.ErrUnknownFormat) are
// returned before anything is written to w.
func (s *StatsService) Export(w io.Writer, q ExportQuery) error {
	filter, err := CompileFilter(q.UsedOnly, q.Filter)
	if err != nil {
		return err
	}
	if q.Format.Kind == FormatUnknown {
		return domain.ErrUnknownFormat.WithDetails(q.Format.Raw)
	}

	filtered := filter.Apply(s.source)

	switch q.Format.Kind {
	case FormatJSON:
		return RenderJSON(w, filtered, q.Pretty)
	case FormatPrometheus:
		if s.prom == nil {
			return nil
		}
		return s.prom.Render(w, filtered.Counters, filtered.Gauges, filtered.Histograms,
			filter.UsedOnly, filter.Pattern)
	default:
		return RenderText(w, filtered)
	}
}

// ResetCounters zeroes every counter and clears the recent lookups.
// Counters are reset one at a time; a concurrent export may observe a
// partially reset set.
func (s *StatsService) ResetCounters() {
	for _, c := range s.source.Counters() {
		c.Reset()
	}
	if s.tracker != nil {
		s.tracker.ClearRecentLookups()
	}
}

// StatCounts is the number of stats of each kind in the snapshot.
type StatCounts struct {
	Counters     int `json:"counters"`
	Gauges       int `json:"gauges"`
	TextReadouts int `json:"text_readouts"`
	Histograms   int `json:"histograms"`
}

// Counts sizes the current snapshot without filtering it.
func (s *StatsService) Counts() StatCounts {
	return StatCounts{
		Counters:     len(s.source.Counters()),
		Gauges:       len(s.source.Gauges()),
		TextReadouts: len(s.source.TextReadouts()),
		Histograms:   len(s.source.Histograms()),
	}
}
