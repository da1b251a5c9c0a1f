package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/statmesh/internal/cli/output"
)

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print a stats snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Only stats whose name contains a match for this regular expression",
			},
			&cli.BoolFlag{
				Name:    "used-only",
				Aliases: []string{"u"},
				Usage:   "Only stats that have recorded something",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Server-side format for raw output: plain, json, prometheus",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent server-side JSON",
			},
		},
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	format := c.String("format")
	switch format {
	case "", "plain", "json", "prometheus":
	default:
		return usageError("unknown --format %q (want plain, json or prometheus)", format)
	}
	if flags.Output != output.FormatRaw && format != "" && format != "json" {
		return usageError("--format %s only applies to raw output", format)
	}

	query := url.Values{}
	if c.Bool("used-only") {
		query.Set("usedonly", "")
	}
	if f := c.String("filter"); f != "" {
		query.Set("filter", f)
	}
	switch {
	case flags.Output != output.FormatRaw:
		query.Set("format", "json")
	case format == "json" || format == "prometheus":
		query.Set("format", format)
	}
	if c.Bool("pretty") {
		query.Set("pretty", "")
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := client.Get(ctx, "/stats", query)
	if err != nil {
		return err
	}
	return render(c, body, func() (any, error) {
		return DecodeStats(body)
	})
}

// StatsReport is the decoded JSON stats document.
type StatsReport struct {
	Stats      []Stat      `json:"stats" yaml:"stats"`
	Histograms []Histogram `json:"histograms,omitempty" yaml:"histograms,omitempty"`
}

// Stat is one counter, gauge or text readout. Value is a uint64, a
// float64 or a string.
type Stat struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Histogram is one histogram with a reading per supported quantile.
type Histogram struct {
	Name      string     `json:"name" yaml:"name"`
	Quantiles []Quantile `json:"quantiles" yaml:"quantiles"`
}

// Quantile holds both windows at one level. A nil reading means the
// window had no samples.
type Quantile struct {
	Level      float64  `json:"quantile" yaml:"quantile"`
	Interval   *float64 `json:"interval" yaml:"interval"`
	Cumulative *float64 `json:"cumulative" yaml:"cumulative"`
}

// Table implements output.Tabler.
func (r *StatsReport) Table() *output.Table {
	t := output.NewTable("NAME", "VALUE")
	for _, s := range r.Stats {
		t.AddRow(s.Name, fmt.Sprint(s.Value))
	}
	for _, h := range r.Histograms {
		parts := make([]string, len(h.Quantiles))
		for i, q := range h.Quantiles {
			parts[i] = "P" + formatFloat(q.Level) + "(" + reading(q.Interval) + "," + reading(q.Cumulative) + ")"
		}
		t.AddRow(h.Name, strings.Join(parts, " "))
	}
	return t
}

type statsEntry struct {
	Name       *string         `json:"name"`
	Value      json.RawMessage `json:"value"`
	Histograms *struct {
		SupportedQuantiles []float64 `json:"supported_quantiles"`
		ComputedQuantiles  []struct {
			Name   string `json:"name"`
			Values []struct {
				Interval   *float64 `json:"interval"`
				Cumulative *float64 `json:"cumulative"`
			} `json:"values"`
		} `json:"computed_quantiles"`
	} `json:"histograms"`
}

// DecodeStats parses the server's {"stats": [...]} document.
func DecodeStats(body []byte) (*StatsReport, error) {
	var doc struct {
		Stats []statsEntry `json:"stats"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}

	report := &StatsReport{Stats: []Stat{}}
	for _, e := range doc.Stats {
		switch {
		case e.Histograms != nil:
			levels := e.Histograms.SupportedQuantiles
			for _, cq := range e.Histograms.ComputedQuantiles {
				h := Histogram{Name: cq.Name, Quantiles: make([]Quantile, 0, len(cq.Values))}
				for i, v := range cq.Values {
					var level float64
					if i < len(levels) {
						level = levels[i]
					}
					h.Quantiles = append(h.Quantiles, Quantile{Level: level, Interval: v.Interval, Cumulative: v.Cumulative})
				}
				report.Histograms = append(report.Histograms, h)
			}
		case e.Name != nil:
			value, err := decodeValue(e.Value)
			if err != nil {
				return nil, fmt.Errorf("decode stat %q: %w", *e.Name, err)
			}
			report.Stats = append(report.Stats, Stat{Name: *e.Name, Value: value})
		}
	}
	return report, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	if u, err := strconv.ParseUint(string(raw), 10, 64); err == nil {
		return u, nil
	}
	return strconv.ParseFloat(string(raw), 64)
}

func reading(v *float64) string {
	if v == nil {
		return "none"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
