package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mao/internal/harness"
)

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario>...",
		Short: "Run scenario files against live tables",
		Long: `Run YAML scenario files, each against its own freshly dealt table.

Arguments may be scenario files or directories of them. Every scenario
deals a table per its setup block, executes the flow, and checks the
assertions; failures are collected across the whole batch instead of
stopping at the first.

Exit codes:
  0 - Every scenario passed
  1 - One or more scenarios failed
  2 - Command error (missing paths, empty directories)

Examples:
  mao simulate ./scenarios
  mao simulate ./scenarios/opening.yaml ./scenarios/penalties
  mao simulate ./scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runSimulate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	total := &harness.SuiteResult{}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario path %s", arg), err)
		}

		var suite *harness.SuiteResult
		if info.IsDir() {
			suite, err = harness.RunDir(arg)
		} else {
			suite, err = harness.RunFiles([]string{arg})
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("running %s", arg), err)
		}

		total.Scenarios += suite.Scenarios
		total.Passed += suite.Passed
		total.Failed += suite.Failed
		total.Failures = append(total.Failures, suite.Failures...)
	}

	if opts.Format == "json" {
		status := "ok"
		if total.Failed > 0 {
			status = "error"
		}
		if err := writeJSON(cmd.OutOrStdout(), status, total, nil); err != nil {
			return err
		}
		if total.Failed > 0 {
			return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", total.Failed))
		}
		return nil
	}

	w := cmd.OutOrStdout()
	for _, f := range total.Failures {
		fmt.Fprintf(w, "✗ %s (%s)\n", f.Scenario, f.Path)
		for _, e := range f.Errors {
			for _, line := range strings.Split(e, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	if total.Failed > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Simulated %d scenario(s): %d passed, %d failed\n",
			total.Scenarios, total.Passed, total.Failed)
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", total.Failed))
	}
	fmt.Fprintf(w, "✓ Simulated %d scenario(s), all passed\n", total.Scenarios)
	return nil
}
