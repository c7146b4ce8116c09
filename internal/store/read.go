package store

import (
	"context"
	"database/sql"
	"fmt"
)

// OccurrenceRow is a journaled occurrence as stored: the columns carry
// what filters need, the typed detail stays flattened in Payload.
type OccurrenceRow struct {
	MatchToken string
	Seq        int64
	Kind       string
	Player     int // acting seat, -1 for table-level entries
	Payload    string
}

// ViolationRow is a journaled violation as stored.
type ViolationRow struct {
	MatchToken string
	Seq        int64
	Kind       string
	Rule       string
	Player     int
	Message    string
}

// TimelineEntry is one step of a match's history. Exactly one of
// Occurrence and Violation is set.
type TimelineEntry struct {
	Seq        int64
	Occurrence *OccurrenceRow
	Violation  *ViolationRow
}

// Timeline reads a match's history in logical-clock order, occurrences
// and violations interleaved the way the table produced them. Returns
// an empty slice, not nil, when the match has no matching rows.
func (s *Store) Timeline(ctx context.Context, matchToken string, f Filter) ([]TimelineEntry, error) {
	var occs []OccurrenceRow
	if f.occurrences() {
		var err error
		occs, err = s.readOccurrences(ctx, matchToken, f)
		if err != nil {
			return nil, err
		}
	}

	var viols []ViolationRow
	if f.violations() {
		var err error
		viols, err = s.readViolations(ctx, matchToken, f)
		if err != nil {
			return nil, err
		}
	}

	return mergeTimeline(occs, viols, f.Limit), nil
}

// LastSeq returns the highest seq recorded for the match, 0 when the
// match has no rows. Feed it to engine.NewClockAt when appending to an
// existing journal.
func (s *Store) LastSeq(ctx context.Context, matchToken string) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM occurrences WHERE match_token = ?
			UNION ALL
			SELECT seq FROM violations WHERE match_token = ?
		)
	`, matchToken, matchToken).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return last, nil
}

// Matches lists every match token in the journal. Tokens are UUIDv7,
// so lexical order is creation order.
func (s *Store) Matches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_token FROM occurrences
		UNION
		SELECT match_token FROM violations
		ORDER BY match_token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func (s *Store) readOccurrences(ctx context.Context, matchToken string, f Filter) ([]OccurrenceRow, error) {
	query, params := f.occurrenceQuery(matchToken)
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var occs []OccurrenceRow
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occs = append(occs, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occurrences: %w", err)
	}
	return occs, nil
}

func (s *Store) readViolations(ctx context.Context, matchToken string, f Filter) ([]ViolationRow, error) {
	query, params := f.violationQuery(matchToken)
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	var viols []ViolationRow
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		viols = append(viols, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return viols, nil
}

func scanOccurrence(rows *sql.Rows) (OccurrenceRow, error) {
	var occ OccurrenceRow
	if err := rows.Scan(
		&occ.MatchToken, &occ.Seq, &occ.Kind, &occ.Player, &occ.Payload,
	); err != nil {
		return OccurrenceRow{}, fmt.Errorf("scan occurrence: %w", err)
	}
	return occ, nil
}

func scanViolation(rows *sql.Rows) (ViolationRow, error) {
	var v ViolationRow
	if err := rows.Scan(
		&v.MatchToken, &v.Seq, &v.Kind, &v.Rule, &v.Player, &v.Message,
	); err != nil {
		return ViolationRow{}, fmt.Errorf("scan violation: %w", err)
	}
	return v, nil
}

// mergeTimeline interleaves the two pre-sorted sides by seq. Seqs come
// from one clock, so they never collide across sides.
func mergeTimeline(occs []OccurrenceRow, viols []ViolationRow, limit int) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(occs)+len(viols))
	i, j := 0, 0
	for i < len(occs) || j < len(viols) {
		if j >= len(viols) || (i < len(occs) && occs[i].Seq < viols[j].Seq) {
			occ := occs[i]
			entries = append(entries, TimelineEntry{Seq: occ.Seq, Occurrence: &occ})
			i++
		} else {
			v := viols[j]
			entries = append(entries, TimelineEntry{Seq: v.Seq, Violation: &v})
			j++
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
