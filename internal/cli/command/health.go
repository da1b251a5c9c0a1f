package command

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/statmesh/internal/cli/output"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ready",
				Usage: "Query readiness instead of liveness",
			},
		},
		Action: healthAction,
	}
}

// HealthStatus is the data of a health or readiness reply.
type HealthStatus struct {
	Status        string      `json:"status" yaml:"status"`
	Time          string      `json:"time" yaml:"time"`
	Version       string      `json:"version,omitempty" yaml:"version,omitempty"`
	Stats         *StatCounts `json:"stats,omitempty" yaml:"stats,omitempty"`
	RecentLookups string      `json:"recent_lookups,omitempty" yaml:"recent_lookups,omitempty"`
}

// StatCounts is the registry size reported by /health.
type StatCounts struct {
	Counters     int `json:"counters" yaml:"counters"`
	Gauges       int `json:"gauges" yaml:"gauges"`
	TextReadouts int `json:"text_readouts" yaml:"text_readouts"`
	Histograms   int `json:"histograms" yaml:"histograms"`
}

// Table implements output.Tabler.
func (h *HealthStatus) Table() *output.Table {
	if h.Stats == nil {
		t := output.NewTable("STATUS", "VERSION", "TIME")
		t.AddRow(h.Status, orDash(h.Version), h.Time)
		return t
	}
	t := output.NewTable("STATUS", "VERSION", "COUNTERS", "GAUGES", "TEXT", "HISTOGRAMS", "LOOKUPS", "TIME")
	t.AddRow(h.Status, orDash(h.Version),
		strconv.Itoa(h.Stats.Counters), strconv.Itoa(h.Stats.Gauges),
		strconv.Itoa(h.Stats.TextReadouts), strconv.Itoa(h.Stats.Histograms),
		orDash(h.RecentLookups), h.Time)
	return t
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func healthAction(c *cli.Context) error {
	path := "/health"
	if c.Bool("ready") {
		path = "/ready"
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := client.Get(ctx, path, nil)
	if err != nil {
		return err
	}
	return render(c, body, func() (any, error) {
		var envelope struct {
			Data HealthStatus `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("decode health: %w", err)
		}
		return &envelope.Data, nil
	})
}
