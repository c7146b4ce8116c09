package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/rule"
)

// ModuleReport is one rule module's line in the rules listing.
type ModuleReport struct {
	Name        string `json:"name"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Paths       int    `json:"paths"`
	CardEffects int    `json:"card_effects"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules <rules-dir>",
		Short: "Load and verify rule modules",
		Long: `Load every Lua rule module in a directory and verify it.

Loading checks each module's identity, version, and declarations;
verification then probes every on_event handler at a throwaway table.
All broken modules are reported together, so one bad script does not
mask the rest.

Exit codes:
  0 - Every module loaded and verified
  1 - One or more modules rejected
  2 - Command error (directory not found)

Examples:
  mao rules ./rules
  mao rules ./rules --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRules(opts *RootOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("rules directory %s", dir), err)
	}

	rules, err := rule.LoadDir(dir)
	if err != nil {
		return reportRuleFailure(opts, "modules rejected", err, cmd)
	}

	// Seat a throwaway table so every module answers a probe before
	// anyone sits down at a real one.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := engine.NewGame([]string{"probe-0", "probe-1"}, rules, engine.WithLogger(quiet)); err != nil {
		return reportRuleFailure(opts, "modules failed verification", err, cmd)
	}

	reports := make([]ModuleReport, len(rules))
	for i, r := range rules {
		data := r.Data()
		reports[i] = ModuleReport{
			Name:        data.Name,
			Author:      data.Author,
			Description: data.Description,
			Paths:       len(data.Paths),
			CardEffects: len(data.CardEffects),
		}
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), "ok", reports, nil)
	}

	w := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintf(w, "No rule modules in %s\n", dir)
		return nil
	}
	for _, m := range reports {
		fmt.Fprintf(w, "✓ %s", m.Name)
		if m.Author != "" {
			fmt.Fprintf(w, " by %s", m.Author)
		}
		fmt.Fprintln(w)
		if m.Description != "" {
			fmt.Fprintf(w, "    %s\n", m.Description)
		}
		fmt.Fprintf(w, "    %d interaction path(s), %d card effect key(s)\n", m.Paths, m.CardEffects)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✓ %d module(s) loaded and verified\n", len(reports))
	return nil
}

// reportRuleFailure renders an aggregated module failure. The error
// message carries one line per broken module.
func reportRuleFailure(opts *RootOptions, context string, err error, cmd *cobra.Command) error {
	lines := strings.Split(err.Error(), "\n")

	if opts.Format == "json" {
		if werr := writeJSON(cmd.OutOrStdout(), "error", nil, lines); werr != nil {
			return werr
		}
		return NewExitError(ExitFailure, context)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✗ %s\n", context)
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return NewExitError(ExitFailure, context)
}
