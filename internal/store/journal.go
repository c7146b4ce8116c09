package store

import (
	"fmt"

	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/event"
)

// RecordOccurrence appends an occurrence row. Implements
// engine.Journal: the engine hands over its match token and the next
// logical-clock seq with every call.
//
// ON CONFLICT DO NOTHING keeps the write idempotent per
// (match_token, seq); re-recording an already journaled row is
// silently ignored.
func (s *Store) RecordOccurrence(matchToken string, seq int64, occ event.Occurrence) error {
	detail, err := marshalOccurrence(occ)
	if err != nil {
		return fmt.Errorf("record occurrence: %w", err)
	}

	player := -1
	if p, ok := event.PlayerIndex(occ); ok {
		player = p
	}

	_, err = s.db.Exec(`
		INSERT INTO occurrences
		(match_token, seq, kind, player, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(match_token, seq) DO NOTHING
	`,
		matchToken,
		seq,
		event.Kind(occ),
		player,
		detail,
	)
	if err != nil {
		return fmt.Errorf("record occurrence: %w", err)
	}
	return nil
}

// RecordViolation appends a violation row. Implements engine.Journal.
func (s *Store) RecordViolation(matchToken string, seq int64, v engine.Violation) error {
	_, err := s.db.Exec(`
		INSERT INTO violations
		(match_token, seq, kind, rule, player, message)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_token, seq) DO NOTHING
	`,
		matchToken,
		seq,
		string(v.Kind),
		v.Rule,
		v.Player,
		v.Message,
	)
	if err != nil {
		return fmt.Errorf("record violation: %w", err)
	}
	return nil
}
