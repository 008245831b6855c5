// Package commands implements the CLI commands for weave.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/weave/internal/app"
	"go.trai.ch/weave/internal/build"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for weave.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command

	dir     string
	json    bool
	verbose bool
}

// Application represents the application logic interface.
type Application interface {
	Generate(ctx context.Context, opts app.GenerateOptions) (*domain.Record, error)
	Invoke(ctx context.Context, kind string, args []string, stdout io.Writer) error
	Watch(ctx context.Context, opts app.GenerateOptions) error
	Status(ctx context.Context, dir string) (*app.Status, error)
}

// New creates a new CLI instance with the given app.
func New(a Application, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "weave",
		Short:         "Generate Ninja build files for variant-matrix C and C++ workspaces",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.dir, "dir", "C", ".", "Run as if weave was started in this directory")
	flags.BoolVar(&c.json, "json", false, "Log as JSON")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Show debug output")
	rootCmd.PersistentPreRunE = c.setup

	rootCmd.AddCommand(c.newGenerateCmd())
	rootCmd.AddCommand(c.newInvokeCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) setup(_ *cobra.Command, _ []string) error {
	if c.logger != nil {
		c.logger.SetJSON(c.json)
		c.logger.SetVerbose(c.verbose)
	}
	dir, err := filepath.Abs(c.dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "invalid directory"), "dir", c.dir)
	}
	c.dir = dir
	return nil
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
