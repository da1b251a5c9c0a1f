package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/statmesh/internal/cli/connection"
	"github.com/yndnr/statmesh/internal/cli/output"
	"github.com/yndnr/statmesh/internal/infra/buildinfo"
)

// DefaultServer is the admin address statmesh-server listens on by default.
const DefaultServer = "127.0.0.1:9901"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "statmesh-cli",
		Usage:   "Inspect and control a statmesh-server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			StatsCommand(),
			LookupsCommand(),
			ResetCountersCommand(),
			HealthCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "statmesh-server admin address (host:port, URL or unix:///path)",
			EnvVars: []string{"STATMESH_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: raw, table, json, yaml",
			Value:   string(output.FormatRaw),
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM CA bundle used to verify an https server",
			EnvVars: []string{"STATMESH_CA_FILE"},
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "Skip TLS certificate verification",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server   string
	Output   output.Format
	CAFile   string
	Insecure bool
	Timeout  time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:   c.String("server"),
		Output:   output.Format(c.String("output")),
		CAFile:   c.String("ca-file"),
		Insecure: c.Bool("insecure"),
		Timeout:  c.Duration("timeout"),
	}
}

// newClient builds the HTTP client for the global flags.
func newClient(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server, connection.Options{
		CAFile:   flags.CAFile,
		Insecure: flags.Insecure,
		Timeout:  flags.Timeout,
	})
}

// requestContext bounds a command's requests by --timeout.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, ParseGlobalFlags(c).Timeout)
}

// render writes raw unchanged for raw output and decoded otherwise.
func render(c *cli.Context, raw []byte, decoded func() (any, error)) error {
	format := ParseGlobalFlags(c).Output
	if format == output.FormatRaw || format == "" {
		return output.NewFormatter(output.FormatRaw).Format(c.App.Writer, raw)
	}

	data, err := decoded()
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// post sends a bodiless POST and prints the reply.
func post(c *cli.Context, path string) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	body, err := client.Post(ctx, path)
	if err != nil {
		return err
	}
	return render(c, body, func() (any, error) {
		return Result{Result: strings.TrimSpace(string(body))}, nil
	})
}

// Result is the decoded reply of an admin action.
type Result struct {
	Result string `json:"result" yaml:"result"`
}

// Table implements output.Tabler.
func (r Result) Table() *output.Table {
	t := output.NewTable("RESULT")
	t.AddRow(r.Result)
	return t
}

func usageError(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), 2)
}
