package store

// Filter narrows a timeline read. The zero value selects the whole
// match.
//
// Kind applies to the occurrence side and Rule to the violation side;
// setting one of them drops the other side entirely unless it is
// filtered too. Player and SinceSeq apply to both sides.
type Filter struct {
	Player   *int
	Kind     string
	Rule     string
	SinceSeq int64
	Limit    int
}

// Seat is a convenience for filtering by player.
func Seat(player int) *int { return &player }

// occurrences reports whether the occurrence side is selected.
func (f Filter) occurrences() bool {
	return f.Rule == "" || f.Kind != ""
}

// violations reports whether the violation side is selected.
func (f Filter) violations() bool {
	return f.Kind == "" || f.Rule != ""
}

// occurrenceQuery assembles the parameterized SELECT for the
// occurrence side. Values are always bound, never interpolated, and
// every query orders by seq; (match_token, seq) is unique, so the
// ordering is total.
func (f Filter) occurrenceQuery(matchToken string) (string, []any) {
	query := `
		SELECT match_token, seq, kind, player, payload
		FROM occurrences
		WHERE match_token = ?`
	params := []any{matchToken}

	if f.Kind != "" {
		query += " AND kind = ?"
		params = append(params, f.Kind)
	}
	query, params = f.appendShared(query, params)
	return query, params
}

// violationQuery assembles the parameterized SELECT for the violation
// side.
func (f Filter) violationQuery(matchToken string) (string, []any) {
	query := `
		SELECT match_token, seq, kind, rule, player, message
		FROM violations
		WHERE match_token = ?`
	params := []any{matchToken}

	if f.Rule != "" {
		query += " AND rule = ?"
		params = append(params, f.Rule)
	}
	query, params = f.appendShared(query, params)
	return query, params
}

// appendShared adds the clauses common to both sides. A per-side LIMIT
// is sound because the merged timeline can never need more rows from
// one side than its own cap.
func (f Filter) appendShared(query string, params []any) (string, []any) {
	if f.Player != nil {
		query += " AND player = ?"
		params = append(params, *f.Player)
	}
	if f.SinceSeq > 0 {
		query += " AND seq >= ?"
		params = append(params, f.SinceSeq)
	}
	query += " ORDER BY seq ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		params = append(params, f.Limit)
	}
	return query, params
}
