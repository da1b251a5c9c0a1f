// Package service provides the stats export core for statmesh.
package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReading(t *testing.T) {
	assert.Equal(t, Absent, NewReading(math.NaN()))
	assert.Equal(t, Absent, NewReading(math.Inf(1)))
	assert.Equal(t, Absent, NewReading(math.Inf(-1)))
	assert.Equal(t, Reading{Value: 0, Valid: true}, NewReading(0))
	assert.Equal(t, Reading{Value: 12.5, Valid: true}, NewReading(12.5))
}

func TestAggregateQuantiles(t *testing.T) {
	levels := []float64{0, 0.5, 1}

	t.Run("both windows populated", func(t *testing.T) {
		h := newMockHistogram("h", levels, []float64{1, 2, 3}, []float64{4, 5, 6})
		points := AggregateQuantiles(h)

		require.Len(t, points, 3)
		for i, p := range points {
			assert.Equal(t, levels[i], p.Level)
			assert.True(t, p.Interval.Valid)
			assert.True(t, p.Cumulative.Valid)
		}
		assert.Equal(t, 2.0, points[1].Interval.Value)
		assert.Equal(t, 5.0, points[1].Cumulative.Value)
	})

	t.Run("empty interval window", func(t *testing.T) {
		h := newMockHistogram("h", levels, nil, []float64{4, 5, 6})
		points := AggregateQuantiles(h)

		require.Len(t, points, 3)
		for _, p := range points {
			assert.False(t, p.Interval.Valid)
			assert.True(t, p.Cumulative.Valid)
		}
	})

	t.Run("short computed list reads as absent", func(t *testing.T) {
		h := newMockHistogram("h", levels, []float64{1}, []float64{4, 5, 6})
		points := AggregateQuantiles(h)

		require.Len(t, points, 3)
		assert.True(t, points[0].Interval.Valid)
		assert.False(t, points[1].Interval.Valid)
		assert.False(t, points[2].Interval.Valid)
	})

	t.Run("repeatable", func(t *testing.T) {
		h := newMockHistogram("h", levels, []float64{1, 2, 3}, nil)
		assert.Equal(t, AggregateQuantiles(h), AggregateQuantiles(h))
	})
}
