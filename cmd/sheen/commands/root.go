// Package commands implements the CLI commands for sheen.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"go.trai.ch/sheen/internal/app"
	"go.trai.ch/sheen/internal/build"
)

// Verbosity switches debug output on and off.
type Verbosity interface {
	SetVerbose(verbose bool)
}

// CLI represents the command line interface for sheen.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App, verbosity Verbosity) *CLI {
	rootCmd := &cobra.Command{
		Use:           "sheen",
		Short:         "A stylesheet compiler for multi-page mini-program projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			verbosity.SetVerbose(verbose)
		},
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default sheen.yaml)")
	rootCmd.PersistentFlags().BoolP("no-cache", "n", false, "Bypass the unit cache and compile every style unit")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug output")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
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

func buildOptions(cmd *cobra.Command) app.BuildOptions {
	file, _ := cmd.Flags().GetString("config")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	return app.BuildOptions{ConfigFile: file, NoCache: noCache}
}
