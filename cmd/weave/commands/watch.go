package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/weave/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var projects []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the build file whenever its configuration changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context(), app.GenerateOptions{
				Dir:      c.dir,
				Projects: projects,
			})
		},
	}
	cmd.Flags().StringArrayVarP(&projects, "project", "p", nil, "Only generate the targets of this project (repeatable)")
	return cmd
}
