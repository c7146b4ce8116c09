package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/setup"
)

// DealOptions holds flags for the deal command.
type DealOptions struct {
	*RootOptions
	Seed  int64
	Hands bool
}

// SeatReport is one player's line in a deal report.
type SeatReport struct {
	Seat   int      `json:"seat"`
	Pseudo string   `json:"pseudo"`
	Cards  int      `json:"cards"`
	Hand   []string `json:"hand,omitempty"`
	Dealer bool     `json:"dealer,omitempty"`
	ToAct  bool     `json:"to_act,omitempty"`
}

// StackReport is one table pile's line in a deal report.
type StackReport struct {
	Index   int      `json:"index"`
	Kinds   []string `json:"kinds"`
	Cards   int      `json:"cards"`
	Visible bool     `json:"visible"`
	Top     string   `json:"top,omitempty"`
}

// DealReport is the dealt table as the deal command prints it.
type DealReport struct {
	Match             string        `json:"match"`
	Players           []SeatReport  `json:"players"`
	Stacks            []StackReport `json:"stacks"`
	Direction         int           `json:"direction"`
	Rules             []string      `json:"rules,omitempty"`
	PhysicalActions   []string      `json:"physical_actions,omitempty"`
	CanPlayOnNewStack bool          `json:"can_play_on_new_stack"`
}

// NewDealCommand creates the deal command.
func NewDealCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DealOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deal <setup>",
		Short: "Deal a table from a setup file",
		Long: `Deal a table from a CUE setup file or directory.

Loads the setup, builds the table with its rule modules and card
effects, deals every seat its opening hand, and prints the result.

Exit codes:
  0 - Table dealt
  1 - Setup rejected or table could not be built
  2 - Command error (setup not found)

Examples:
  mao deal ./table.cue
  mao deal ./tables/friday --hands
  mao deal ./table.cue --seed 42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeal(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "override the setup's shuffle seed")
	cmd.Flags().BoolVar(&opts.Hands, "hands", false, "show every hand face up")

	return cmd
}

func runDeal(opts *DealOptions, path string, cmd *cobra.Command) error {
	s, errs := setup.Load(path)
	if len(errs) > 0 {
		return reportSetupErrors(opts.RootOptions, errs, cmd)
	}
	if cmd.Flags().Changed("seed") {
		s.Seed = opts.Seed
	}

	logger := newLogger(opts.Verbose)
	g, err := setup.Build(s, engine.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitFailure, "build table", err)
	}
	if err := g.InitNewGame(s.HandSize); err != nil {
		return WrapExitError(ExitFailure, "deal hands", err)
	}

	report := buildDealReport(g, opts.Hands)
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), "ok", report, nil)
	}
	printDeal(cmd.OutOrStdout(), report)
	return nil
}

// reportSetupErrors prints every setup problem. A missing path is a
// command error; everything else is the setup failing validation.
func reportSetupErrors(opts *RootOptions, errs []error, cmd *cobra.Command) error {
	code := ExitFailure
	var se *setup.SetupError
	if errors.As(errs[0], &se) && se.Field == "path" {
		code = ExitCommandError
	}

	if opts.Format == "json" {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		if err := writeJSON(cmd.OutOrStdout(), "error", nil, msgs); err != nil {
			return err
		}
		return NewExitError(code, fmt.Sprintf("setup rejected with %d problem(s)", len(errs)))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "✗ Setup rejected")
	for _, err := range errs {
		fmt.Fprintf(w, "  %s\n", err)
	}
	return NewExitError(code, fmt.Sprintf("setup rejected with %d problem(s)", len(errs)))
}

func buildDealReport(g *engine.Game, hands bool) DealReport {
	report := DealReport{
		Match:             g.MatchToken(),
		Direction:         g.Direction(),
		Rules:             g.RuleNames(),
		PhysicalActions:   g.PhysicalActions(),
		CanPlayOnNewStack: g.CanPlayOnNewStack(),
	}

	for i, p := range g.Players() {
		seat := SeatReport{
			Seat:   i,
			Pseudo: p.Pseudo(),
			Cards:  p.HandLen(),
			Dealer: i == g.Dealer(),
			ToAct:  i == g.CurrentPlayer(),
		}
		if hands {
			for _, c := range p.Hand() {
				seat.Hand = append(seat.Hand, c.String())
			}
		}
		report.Players = append(report.Players, seat)
	}

	for i, s := range g.Stacks() {
		stack := StackReport{Index: i, Cards: s.Len(), Visible: s.Visible()}
		for _, k := range s.Kinds() {
			stack.Kinds = append(stack.Kinds, k.String())
		}
		if top, ok := s.Top(); ok && s.Visible() {
			stack.Top = top.String()
		}
		report.Stacks = append(report.Stacks, stack)
	}
	return report
}

func printDeal(w io.Writer, r DealReport) {
	fmt.Fprintf(w, "Match: %s\n", r.Match)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Seats:")
	for _, seat := range r.Players {
		marks := ""
		if seat.Dealer {
			marks += "  (dealer)"
		}
		if seat.ToAct {
			marks += "  (to act)"
		}
		fmt.Fprintf(w, "  [%d] %-12s %2d cards%s\n", seat.Seat, seat.Pseudo, seat.Cards, marks)
		if len(seat.Hand) > 0 {
			fmt.Fprintf(w, "      %s\n", strings.Join(seat.Hand, " "))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Stacks:")
	for _, stack := range r.Stacks {
		line := fmt.Sprintf("  [%d] %-20s %2d cards", stack.Index, strings.Join(stack.Kinds, "+"), stack.Cards)
		if stack.Top != "" {
			line += ", top " + stack.Top
		}
		if !stack.Visible {
			line += ", face down"
		}
		fmt.Fprintln(w, line)
	}

	if len(r.Rules) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Rules available: %s\n", strings.Join(r.Rules, ", "))
	}
	if len(r.PhysicalActions) > 0 {
		fmt.Fprintf(w, "Physical actions: %s\n", strings.Join(r.PhysicalActions, ", "))
	}
	if r.CanPlayOnNewStack {
		fmt.Fprintln(w, "Plays may open a new stack.")
	}
}
