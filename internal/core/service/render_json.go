// Package service provides the stats export core for statmesh.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// JSONDocument builds the {"stats": [...]} document for f.
//
// Text readouts come first, then counters and gauges, both sorted by name.
// A single trailing "histograms" object is appended only when at least one
// histogram survived; its computed_quantiles keep snapshot order.
func JSONDocument(f Filtered) *structpb.Struct {
	stats := make([]*structpb.Value, 0, len(f.TextReadouts)+len(f.Counters)+len(f.Gauges)+1)

	for _, t := range TextStats(f) {
		stats = append(stats, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"name":  structpb.NewStringValue(t.Name),
				"value": structpb.NewStringValue(t.Value),
			},
		}))
	}
	for _, s := range NumericStats(f) {
		stats = append(stats, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"name":  structpb.NewStringValue(s.Name),
				"value": structpb.NewNumberValue(float64(s.Value)),
			},
		}))
	}

	if len(f.Histograms) > 0 {
		stats = append(stats, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"histograms": structpb.NewStructValue(histogramsObject(f)),
			},
		}))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"stats": structpb.NewListValue(&structpb.ListValue{Values: stats}),
		},
	}
}

func histogramsObject(f Filtered) *structpb.Struct {
	// Every histogram shares the same quantile levels, so they are sent once.
	levels := f.Histograms[0].IntervalStatistics().SupportedQuantiles()
	supported := make([]*structpb.Value, len(levels))
	for i, q := range levels {
		supported[i] = structpb.NewNumberValue(q * 100)
	}

	computed := make([]*structpb.Value, 0, len(f.Histograms))
	for _, h := range f.Histograms {
		points := AggregateQuantiles(h)
		values := make([]*structpb.Value, len(points))
		for i, p := range points {
			values[i] = structpb.NewStructValue(&structpb.Struct{
				Fields: map[string]*structpb.Value{
					"interval":   readingValue(p.Interval),
					"cumulative": readingValue(p.Cumulative),
				},
			})
		}
		computed = append(computed, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"name":   structpb.NewStringValue(h.Name()),
				"values": structpb.NewListValue(&structpb.ListValue{Values: values}),
			},
		}))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"supported_quantiles": structpb.NewListValue(&structpb.ListValue{Values: supported}),
			"computed_quantiles":  structpb.NewListValue(&structpb.ListValue{Values: computed}),
		},
	}
}

func readingValue(r Reading) *structpb.Value {
	if !r.Valid {
		return structpb.NewNullValue()
	}
	return structpb.NewNumberValue(r.Value)
}

// RenderJSON writes the JSON document for f. Keys are emitted in sorted
// order; pretty selects two-space indentation over compact output.
func RenderJSON(w io.Writer, f Filtered, pretty bool) error {
	raw, err := protojson.Marshal(JSONDocument(f))
	if err != nil {
		return fmt.Errorf("marshal stats document: %w", err)
	}

	// protojson randomizes insignificant whitespace.
	var buf bytes.Buffer
	if pretty {
		err = json.Indent(&buf, raw, "", "  ")
	} else {
		err = json.Compact(&buf, raw)
	}
	if err != nil {
		return fmt.Errorf("format stats document: %w", err)
	}

	_, err = w.Write(buf.Bytes())
	return err
}
