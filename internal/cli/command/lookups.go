package command

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/statmesh/internal/cli/output"
)

// LookupsCommand returns the lookups subcommand group.
func LookupsCommand() *cli.Command {
	return &cli.Command{
		Name:    "lookups",
		Aliases: []string{"recentlookups"},
		Usage:   "Recent stat-name lookup tracking",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show tracked lookups and the lookup total",
				Action: lookupsShow,
			},
			{
				Name:  "enable",
				Usage: "Start tracking lookups",
				Action: func(c *cli.Context) error {
					return post(c, "/stats/recentlookups/enable")
				},
			},
			{
				Name:  "disable",
				Usage: "Stop tracking lookups and discard the history",
				Action: func(c *cli.Context) error {
					return post(c, "/stats/recentlookups/disable")
				},
			},
			{
				Name:  "clear",
				Usage: "Zero the tracked lookups and the total",
				Action: func(c *cli.Context) error {
					return post(c, "/stats/recentlookups/clear")
				},
			},
		},
	}
}

func lookupsShow(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := client.Get(ctx, "/stats/recentlookups", nil)
	if err != nil {
		return err
	}
	return render(c, body, func() (any, error) {
		return ParseLookups(body)
	})
}

// LookupsReport is the decoded recent-lookups table.
type LookupsReport struct {
	Enabled bool         `json:"enabled" yaml:"enabled"`
	Lookups []LookupStat `json:"lookups" yaml:"lookups"`
	Total   uint64       `json:"total" yaml:"total"`
}

// LookupStat is one tracked name.
type LookupStat struct {
	Name  string `json:"name" yaml:"name"`
	Count uint64 `json:"count" yaml:"count"`
}

// Table implements output.Tabler.
func (r *LookupsReport) Table() *output.Table {
	t := output.NewTable("COUNT", "LOOKUP")
	for _, l := range r.Lookups {
		t.AddRow(strconv.FormatUint(l.Count, 10), l.Name)
	}
	if !r.Enabled {
		t.AddFooter("tracking: disabled")
	}
	t.AddFooter("total: " + strconv.FormatUint(r.Total, 10))
	return t
}

const (
	lookupsHeader     = "   Count Lookup"
	lookupsNotEnabled = "Lookup tracking is not enabled."
	lookupsTotal      = "total: "
)

// ParseLookups parses the text reply of GET /stats/recentlookups.
func ParseLookups(body []byte) (*LookupsReport, error) {
	report := &LookupsReport{Lookups: []LookupStat{}}
	inTable := false

	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			inTable = false
		case line == lookupsHeader:
			report.Enabled = true
			inTable = true
		case strings.HasPrefix(line, lookupsNotEnabled):
			report.Enabled = false
		case strings.HasPrefix(line, lookupsTotal):
			total, err := strconv.ParseUint(strings.TrimPrefix(line, lookupsTotal), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse lookups total: %w", err)
			}
			report.Total = total
		case inTable:
			count, name, ok := strings.Cut(strings.TrimLeft(line, " "), " ")
			if !ok {
				return nil, fmt.Errorf("parse lookups row %q", line)
			}
			n, err := strconv.ParseUint(count, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse lookups row %q: %w", line, err)
			}
			report.Lookups = append(report.Lookups, LookupStat{Name: name, Count: n})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return report, nil
}
