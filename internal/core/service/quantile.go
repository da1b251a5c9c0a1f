// Package service provides the stats export core for statmesh.
package service

import (
	"math"

	"github.com/yndnr/statmesh/internal/core/domain"
)

// Reading is a quantile value that may be absent.
// Absent means the window observed no samples; it is never zero.
type Reading struct {
	Value float64
	Valid bool
}

// Absent is the Reading for a window without samples.
var Absent = Reading{}

// NewReading converts a computed quantile into a Reading. NaN and
// infinities have no JSON number form and map to Absent.
func NewReading(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Absent
	}
	return Reading{Value: v, Valid: true}
}

// QuantilePoint is one quantile level with its interval and cumulative values.
type QuantilePoint struct {
	Level      float64
	Interval   Reading
	Cumulative Reading
}

// AggregateQuantiles aligns the interval and cumulative statistics of h
// position by position over the shared quantile-level list.
//
// It does not mutate h and returns the same result for the same snapshot.
func AggregateQuantiles(h domain.ParentHistogram) []QuantilePoint {
	interval := h.IntervalStatistics()
	cumulative := h.CumulativeStatistics()

	levels := interval.SupportedQuantiles()
	iv := interval.ComputedQuantiles()
	cv := cumulative.ComputedQuantiles()

	points := make([]QuantilePoint, len(levels))
	for i, level := range levels {
		points[i] = QuantilePoint{
			Level:      level,
			Interval:   readingAt(iv, i),
			Cumulative: readingAt(cv, i),
		}
	}
	return points
}

func readingAt(values []float64, i int) Reading {
	if i >= len(values) {
		return Absent
	}
	return NewReading(values[i])
}
