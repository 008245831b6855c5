package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/weave/internal/app"
)

func (c *CLI) newGenerateCmd() *cobra.Command {
	var projects []string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the workspace's Ninja build file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := c.app.Generate(cmd.Context(), app.GenerateOptions{
				Dir:      c.dir,
				Projects: projects,
			})
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&projects, "project", "p", nil, "Only generate the targets of this project (repeatable)")
	return cmd
}
