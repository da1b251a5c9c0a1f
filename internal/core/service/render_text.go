// Package service provides the stats export core for statmesh.
package service

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/yndnr/statmesh/internal/core/domain"
)

// NamedValue is a counter or gauge reduced to its name and value.
type NamedValue struct {
	Name  string
	Value uint64
}

// NamedText is a text readout reduced to its name and value.
type NamedText struct {
	Name  string
	Value string
}

// NumericStats merges counters and gauges into one list sorted by name.
// When a counter and a gauge share a name, the counter wins.
//
// It panics on a gauge whose import mode was never initialized: that is a
// registry bug and must not be rendered around.
func NumericStats(f Filtered) []NamedValue {
	seen := make(map[string]struct{}, len(f.Counters)+len(f.Gauges))
	out := make([]NamedValue, 0, len(f.Counters)+len(f.Gauges))

	for _, c := range f.Counters {
		if _, dup := seen[c.Name()]; dup {
			continue
		}
		seen[c.Name()] = struct{}{}
		out = append(out, NamedValue{Name: c.Name(), Value: c.Value()})
	}
	for _, g := range f.Gauges {
		if g.ImportMode() == domain.ImportModeUninitialized {
			panic(fmt.Sprintf("stats: gauge %q reached the renderer with an uninitialized import mode", g.Name()))
		}
		if _, dup := seen[g.Name()]; dup {
			continue
		}
		seen[g.Name()] = struct{}{}
		out = append(out, NamedValue{Name: g.Name(), Value: g.Value()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TextStats returns the text readouts sorted by name, first one wins on a
// duplicate name.
func TextStats(f Filtered) []NamedText {
	seen := make(map[string]struct{}, len(f.TextReadouts))
	out := make([]NamedText, 0, len(f.TextReadouts))
	for _, t := range f.TextReadouts {
		if _, dup := seen[t.Name()]; dup {
			continue
		}
		seen[t.Name()] = struct{}{}
		out = append(out, NamedText{Name: t.Name(), Value: t.Value()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RenderText writes f as "name: value" lines: text readouts first, then
// counters and gauges, then histogram summaries.
//
// Histograms may share a name; all of them are written, sorted by name and
// otherwise in snapshot order.
func RenderText(w io.Writer, f Filtered) error {
	bw := bufio.NewWriter(w)

	for _, t := range TextStats(f) {
		fmt.Fprintf(bw, "%s: \"%s\"\n", t.Name, html.EscapeString(t.Value))
	}
	for _, s := range NumericStats(f) {
		fmt.Fprintf(bw, "%s: %d\n", s.Name, s.Value)
	}

	histograms := make([]domain.ParentHistogram, len(f.Histograms))
	copy(histograms, f.Histograms)
	sort.SliceStable(histograms, func(i, j int) bool {
		return histograms[i].Name() < histograms[j].Name()
	})
	for _, h := range histograms {
		fmt.Fprintf(bw, "%s: %s\n", h.Name(), h.QuantileSummary())
	}

	return bw.Flush()
}
