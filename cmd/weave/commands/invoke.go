package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newInvokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <kind> [args...]",
		Short: "Run a compiler, archiver or linker on behalf of a build edge",
		Long: "Run a compiler, archiver or linker on behalf of a build edge.\n\n" +
			"Generated build files call this command; its arguments are positional\n" +
			"and passed through unparsed.",
		Hidden:             true,
		DisableFlagParsing: true,
		Args:               cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Invoke(cmd.Context(), args[0], args[1:], cmd.OutOrStdout())
		},
	}
}
