// Package commands implements the CLI commands for the corepm package manager.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/corepm/internal/app"
	"go.trai.ch/corepm/internal/build"
	"go.trai.ch/corepm/internal/core/domain"
)

// CLI represents the command line interface for corepm.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, opts app.RunOptions) (*app.RunResult, error)
	ListCores(ctx context.Context, opts app.Options) ([]*domain.Core, error)
	ShowCore(ctx context.Context, opts app.Options, name string) (*domain.Core, error)
	ListGenerators(ctx context.Context, opts app.Options) ([]app.GeneratorInfo, error)
	ShowGenerator(ctx context.Context, opts app.Options, name string) ([]app.GeneratorInfo, error)
	Libraries(opts app.Options) (*domain.Config, error)
	ConfigureLogging(verbose, json bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "corepm",
		Short:         "A package manager and build manifest generator for HDL cores",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	// Persistent flags first so -v stays with --verbose.
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file (default: search for "+domain.ConfigFileName+")")
	flags.StringArray("cores-root", nil, "Additional directory to search for cores (repeatable)")
	flags.BoolP("verbose", "v", false, "Enable debug output")
	flags.Bool("json", false, "Write logs as JSON")

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
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		json, _ := cmd.Flags().GetBool("json")
		c.app.ConfigureLogging(verbose, json)
	}

	rootCmd.AddCommand(c.newRunCmd("run", "Resolve a core and write its build manifest", ""))
	rootCmd.AddCommand(c.newRunCmd("build", "Write the build manifest for the synth target", "synth"))
	rootCmd.AddCommand(c.newRunCmd("sim", "Write the build manifest for the sim target", "sim"))
	rootCmd.AddCommand(c.newCoreCmd())
	rootCmd.AddCommand(c.newGenCmd())
	rootCmd.AddCommand(c.newLibraryCmd())
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

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// options collects the persistent flags shared by every command.
func options(cmd *cobra.Command) app.Options {
	config, _ := cmd.Flags().GetString("config")
	roots, _ := cmd.Flags().GetStringArray("cores-root")
	return app.Options{ConfigPath: config, CoresRoots: roots}
}
