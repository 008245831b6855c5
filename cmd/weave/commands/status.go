package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.trai.ch/weave/internal/app"
	"go.trai.ch/weave/internal/ui/output"
	"go.trai.ch/weave/internal/ui/style"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show when the build file was last generated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := c.app.Status(cmd.Context(), c.dir)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func printStatus(w io.Writer, s *app.Status) {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(output.ColorProfile(w)))
	heading := r.NewStyle().Inherit(style.Heading)
	ok := r.NewStyle().Foreground(style.Green)
	warn := r.NewStyle().Foreground(style.Yellow)
	bad := r.NewStyle().Foreground(style.Red)
	dim := r.NewStyle().Foreground(style.Slate)

	_, _ = fmt.Fprintln(w, heading.Render(s.BuildFile))

	rec := s.Record
	if rec == nil {
		_, _ = fmt.Fprintln(w, bad.Render(style.Cross+" never generated"))
		return
	}

	_, _ = fmt.Fprintf(w, "%s generated %s\n", ok.Render(style.Check), rec.GeneratedAt.Format(time.RFC3339))
	if s.Modified {
		_, _ = fmt.Fprintln(w, warn.Render(style.Warning+" modified since it was generated"))
	}
	_, _ = fmt.Fprintf(w, "  %s %d\n", dim.Render("projects:"), len(rec.Projects))
	_, _ = fmt.Fprintf(w, "  %s %d\n", dim.Render("edges:   "), rec.Edges)
	_, _ = fmt.Fprintf(w, "  %s %d\n", dim.Render("inputs:  "), len(rec.Inputs))
	for _, v := range rec.Variants {
		_, _ = fmt.Fprintf(w, "  %s %s\n", dim.Render("variant: "), v)
	}
}
