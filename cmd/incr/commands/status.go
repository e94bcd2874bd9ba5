package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/incr/internal/engine/scheduler"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [targets...]",
		Short: "Explain which tasks would run and why",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{scheduler.AllTasks}
			}
			return c.app.Status(cmd.Context(), args)
		},
	}
}
