package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mao/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	Match    string
	Kind     string
	Rule     string
	Player   int
	Since    int64
	Limit    int
}

// MatchReport is one match's line in the journal listing.
type MatchReport struct {
	Match   string `json:"match"`
	LastSeq int64  `json:"last_seq"`
}

// JournalEntry is one timeline row as the journal command prints it.
// Payload is set for occurrences, Rule and Message for violations.
type JournalEntry struct {
	Seq     int64  `json:"seq"`
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Player  int    `json:"player"`
	Payload string `json:"payload,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Read a match journal",
		Long: `Read match history out of a journal database.

Without --match, lists every match in the journal. With --match, dumps
that match's timeline: occurrences and violations interleaved in the
order the table resolved them, narrowed by the filter flags.

--kind keeps only occurrences of that kind and --rule only violations
from that rule; setting one of them drops the other side of the
timeline unless both are set.

Exit codes:
  0 - Journal read
  2 - Command error (journal not found, unreadable database)

Examples:
  mao journal --db ./mao.db
  mao journal --db ./mao.db --match 0198c4f2-...
  mao journal --db ./mao.db --match 0198c4f2-... --kind played_card
  mao journal --db ./mao.db --match 0198c4f2-... --player 0 --limit 20`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Match, "match", "", "match token to dump")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "keep only occurrences of this kind")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "keep only violations from this rule")
	cmd.Flags().IntVar(&opts.Player, "player", -1, "keep only entries for this seat")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "start at this sequence number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many entries")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Opening would create an empty database, so a read guards the path
	// first: a typo must not leave files behind.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("journal %s", opts.Database), err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer st.Close()

	if opts.Match == "" {
		return listMatches(ctx, opts, st, cmd)
	}
	return dumpMatch(ctx, opts, st, cmd)
}

func listMatches(ctx context.Context, opts *JournalOptions, st *store.Store, cmd *cobra.Command) error {
	matches, err := st.Matches(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "list matches", err)
	}

	reports := make([]MatchReport, len(matches))
	for i, m := range matches {
		last, err := st.LastSeq(ctx, m)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("match %s", m), err)
		}
		reports[i] = MatchReport{Match: m, LastSeq: last}
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), "ok", reports, nil)
	}

	w := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(w, "No matches in the journal.")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(w, "%s  (last seq %d)\n", r.Match, r.LastSeq)
	}
	return nil
}

func dumpMatch(ctx context.Context, opts *JournalOptions, st *store.Store, cmd *cobra.Command) error {
	f := store.Filter{
		Kind:     opts.Kind,
		Rule:     opts.Rule,
		SinceSeq: opts.Since,
		Limit:    opts.Limit,
	}
	if opts.Player >= 0 {
		f.Player = store.Seat(opts.Player)
	}

	entries, err := st.Timeline(ctx, opts.Match, f)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("read match %s", opts.Match), err)
	}

	lines := make([]JournalEntry, len(entries))
	for i, e := range entries {
		lines[i] = journalEntry(e)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), "ok", lines, nil)
	}

	w := cmd.OutOrStdout()
	if len(lines) == 0 {
		fmt.Fprintf(w, "No entries for match: %s\n", opts.Match)
		return nil
	}
	for _, e := range lines {
		printJournalEntry(w, e)
	}
	return nil
}

func journalEntry(e store.TimelineEntry) JournalEntry {
	if e.Occurrence != nil {
		return JournalEntry{
			Seq:     e.Seq,
			Type:    "occurrence",
			Kind:    e.Occurrence.Kind,
			Player:  e.Occurrence.Player,
			Payload: e.Occurrence.Payload,
		}
	}
	return JournalEntry{
		Seq:     e.Seq,
		Type:    "violation",
		Kind:    e.Violation.Kind,
		Player:  e.Violation.Player,
		Rule:    e.Violation.Rule,
		Message: e.Violation.Message,
	}
}

// printJournalEntry renders one row. Violations carry a leading bang
// so they stand out from the occurrence kinds.
func printJournalEntry(w io.Writer, e JournalEntry) {
	if e.Type == "occurrence" {
		fmt.Fprintf(w, "[%4d]   %-15s %-9s %s\n", e.Seq, e.Kind, seatLabel(e.Player), e.Payload)
		return
	}
	fmt.Fprintf(w, "[%4d] ! %-15s %-9s %s: %s\n", e.Seq, e.Kind, seatLabel(e.Player), e.Rule, e.Message)
}

// seatLabel names the acting seat, or the table itself for rows no
// seat produced.
func seatLabel(player int) string {
	if player < 0 {
		return "table"
	}
	return fmt.Sprintf("player %d", player)
}
