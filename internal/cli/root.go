package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tabula/tabula/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string // "text" | "json" | "yaml"
	ConfigPath string

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the tabula CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tabula",
		Short: "Ask questions about tabular data in plain language",
		Long: `tabula turns plain-language questions into structured query intents,
runs them against an in-memory sales table and shows the equivalent query.
It also validates and explains simple SQL statements.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error and picks the exit code
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg, err := config.LoadFile(cmp.Or(opts.ConfigPath, os.Getenv(config.ConfigEnvVar)))
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			opts.Config = cfg

			setupLogging(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (YAML or JSON); defaults to $"+config.ConfigEnvVar)

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewAskCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))

	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
