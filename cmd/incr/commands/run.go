package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/incr/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run the specified tasks and their dependencies",
		Long: "Run the specified tasks and their dependencies. Tasks whose inputs, outputs and\n" +
			"implementation did not change since their last successful execution are skipped.\n" +
			"Use 'all' to select every task.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}
			force, _ := cmd.Flags().GetBool("force")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")

			if ci {
				outputMode = "plain"
			}

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Force:      force,
				OutputMode: outputMode,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Execute every selected task regardless of its recorded state")
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, color, or plain")
	cmd.Flags().Bool("ci", false, "Use plain output (shorthand for --output-mode=plain)")
	return cmd
}
