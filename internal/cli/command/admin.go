package command

import "github.com/urfave/cli/v2"

// ResetCountersCommand returns the reset-counters command.
func ResetCountersCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-counters",
		Usage: "Zero every counter and clear the recent lookups",
		Action: func(c *cli.Context) error {
			return post(c, "/reset_counters")
		},
	}
}
