package metric

import (
	"io"
	"regexp"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/yndnr/statmesh/internal/core/domain"
)

// PrometheusSink renders stats in the Prometheus text exposition format.
// It implements service.PrometheusSink.
type PrometheusSink struct {
	namespace string
}

// NewPrometheusSink creates a sink that prefixes every metric name with
// namespace and an underscore. An empty namespace adds no prefix.
func NewPrometheusSink(namespace string) *PrometheusSink {
	return &PrometheusSink{namespace: namespace}
}

// Render writes one metric family per stat, sorted by metric name.
//
// The stats passed in have already been filtered; usedOnly and pattern are
// the criteria that selected them and do not filter again. Stats whose
// names collide after sanitizing keep the first one seen; counters are
// seen before gauges, gauges before histograms.
func (s *PrometheusSink) Render(w io.Writer, counters []domain.Counter, gauges []domain.Gauge,
	histograms []domain.ParentHistogram, _ bool, _ *regexp.Regexp) error {
	families := make(map[string]*dto.MetricFamily, len(counters)+len(gauges)+len(histograms))
	add := func(name string, mf func(string) *dto.MetricFamily) {
		name = s.MetricName(name)
		if _, dup := families[name]; dup {
			return
		}
		families[name] = mf(name)
	}

	for _, c := range counters {
		v := float64(c.Value())
		add(c.Name(), func(name string) *dto.MetricFamily {
			return &dto.MetricFamily{
				Name:   proto.String(name),
				Type:   dto.MetricType_COUNTER.Enum(),
				Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(v)}}},
			}
		})
	}
	for _, g := range gauges {
		v := float64(g.Value())
		add(g.Name(), func(name string) *dto.MetricFamily {
			return &dto.MetricFamily{
				Name:   proto.String(name),
				Type:   dto.MetricType_GAUGE.Enum(),
				Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
			}
		})
	}
	for _, h := range histograms {
		summary := toSummary(h.CumulativeStatistics())
		add(h.Name(), func(name string) *dto.MetricFamily {
			return &dto.MetricFamily{
				Name:   proto.String(name),
				Type:   dto.MetricType_SUMMARY.Enum(),
				Metric: []*dto.Metric{{Summary: summary}},
			}
		})
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := expfmt.MetricFamilyToText(w, families[name]); err != nil {
			return err
		}
	}
	return nil
}

func toSummary(stats domain.HistogramStatistics) *dto.Summary {
	levels := stats.SupportedQuantiles()
	values := stats.ComputedQuantiles()

	quantiles := make([]*dto.Quantile, 0, len(levels))
	for i, q := range levels {
		if i >= len(values) {
			break
		}
		quantiles = append(quantiles, &dto.Quantile{
			Quantile: proto.Float64(q),
			Value:    proto.Float64(values[i]),
		})
	}
	return &dto.Summary{
		SampleCount: proto.Uint64(stats.SampleCount()),
		SampleSum:   proto.Float64(stats.SampleSum()),
		Quantile:    quantiles,
	}
}

// MetricName maps a stat name onto a valid Prometheus metric name: every
// character outside [a-zA-Z0-9_] becomes an underscore and the namespace
// is prepended.
func (s *PrometheusSink) MetricName(stat string) string {
	var b strings.Builder
	b.Grow(len(s.namespace) + 1 + len(stat))
	if s.namespace != "" {
		b.WriteString(s.namespace)
		b.WriteByte('_')
	} else if stat != "" && stat[0] >= '0' && stat[0] <= '9' {
		b.WriteByte('_')
	}
	for i := 0; i < len(stat); i++ {
		c := stat[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
