package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// RootOptions holds the global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// envDefaults seeds the global flags from the environment, so CI and
// scripts can export MAO_FORMAT=json once instead of threading
// --format through every call. Explicit flags still win.
type envDefaults struct {
	Verbose bool   `env:"MAO_VERBOSE" envDefault:"false"`
	Format  string `env:"MAO_FORMAT" envDefault:"text"`
}

// NewRootCommand creates the root command for the mao CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	defaults := envDefaults{}
	envErr := env.Parse(&defaults)
	if envErr != nil {
		defaults = envDefaults{Format: "text"}
	}

	cmd := &cobra.Command{
		Use:   "mao",
		Short: "mao - an extensible card table",
		Long: `A Mao table in software: Lua rule modules, TOML card effects,
CUE table setups, and an append-only SQLite match journal.

Use deal to open a table from a setup file, rules to vet rule modules,
simulate to run scenario suites, and journal to read match history.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("environment defaults: %w", envErr)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", defaults.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", defaults.Format, "output format (json|text)")

	cmd.AddCommand(NewDealCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
