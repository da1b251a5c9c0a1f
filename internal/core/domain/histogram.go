// Package domain defines the core domain models for statmesh.
package domain

import (
	"math"
	"strconv"
	"strings"
)

// DefaultSupportedQuantiles is the process-wide list of quantile levels
// every histogram is summarized at. It is fixed at startup.
var DefaultSupportedQuantiles = []float64{0, 0.25, 0.5, 0.75, 0.90, 0.95, 0.99, 0.995, 0.999, 1}

// HistogramStatistics pairs an ordered list of quantile levels with the
// values computed at those levels for one window.
//
// A computed value of NaN means the window holds no samples.
type HistogramStatistics interface {
	SupportedQuantiles() []float64
	ComputedQuantiles() []float64
	SampleCount() uint64
	SampleSum() float64
}

// QuantileSummary formats both windows of a histogram as
// "P0(interval,cumulative) P25(interval,cumulative) ...".
//
// Windows without samples print "none" at every level.
func QuantileSummary(interval, cumulative HistogramStatistics) string {
	levels := interval.SupportedQuantiles()
	iv := interval.ComputedQuantiles()
	cv := cumulative.ComputedQuantiles()

	parts := make([]string, 0, len(levels))
	for i, q := range levels {
		parts = append(parts, "P"+formatFloat(q*100)+"("+summaryValue(iv, i)+","+summaryValue(cv, i)+")")
	}
	return strings.Join(parts, " ")
}

func summaryValue(values []float64, i int) string {
	if i >= len(values) || math.IsNaN(values[i]) {
		return "none"
	}
	return formatFloat(values[i])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
