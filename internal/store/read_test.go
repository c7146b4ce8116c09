package store

import (
	"context"
	"testing"

	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/event"
)

// seedMatch writes a small interleaved history for one match:
//
//	seq 1  occurrence  said "mao"        player 0
//	seq 2  violation   porcelain         player 0
//	seq 3  occurrence  did_physical      player 1
//	seq 4  violation   Basic Rules       player 1
//	seq 5  occurrence  said "thank you"  player 2
func seedMatch(t *testing.T, s *Store, matchToken string) {
	t.Helper()
	occs := []struct {
		seq int64
		occ event.Occurrence
	}{
		{1, event.Said{Player: 0, Message: "mao"}},
		{3, event.DidPhysical{Player: 1, Name: "knock"}},
		{5, event.Said{Player: 2, Message: "thank you"}},
	}
	for _, o := range occs {
		if err := s.RecordOccurrence(matchToken, o.seq, o.occ); err != nil {
			t.Fatalf("RecordOccurrence(seq %d) failed: %v", o.seq, err)
		}
	}

	viols := []struct {
		seq int64
		v   engine.Violation
	}{
		{2, engine.Violation{Kind: engine.ViolationForgot, Rule: "porcelain", Message: "forgot to bow", Player: 0}},
		{4, engine.Violation{Kind: engine.ViolationDisallowed, Rule: engine.BasicRules, Message: "It is not your turn", Player: 1}},
	}
	for _, v := range viols {
		if err := s.RecordViolation(matchToken, v.seq, v.v); err != nil {
			t.Fatalf("RecordViolation(seq %d) failed: %v", v.seq, err)
		}
	}
}

func TestTimeline_MergesBySeq(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")

	entries, err := s.Timeline(context.Background(), "match-a", Filter{})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("entries = %d, expected 5", len(entries))
	}

	for i, e := range entries {
		if e.Seq != int64(i+1) {
			t.Errorf("entry %d seq = %d, expected %d", i, e.Seq, i+1)
		}
		if e.Occurrence != nil && e.Violation != nil {
			t.Errorf("entry %d carries both sides", i)
		}
		if e.Occurrence == nil && e.Violation == nil {
			t.Errorf("entry %d carries neither side", i)
		}
	}

	wantViolation := map[int]bool{1: true, 3: true}
	for i, e := range entries {
		if wantViolation[i] != (e.Violation != nil) {
			t.Errorf("entry %d side mismatch: %+v", i, e)
		}
	}
}

func TestTimeline_FilterKindDropsViolations(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")

	entries, err := s.Timeline(context.Background(), "match-a", Filter{Kind: "said"})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, expected 2", len(entries))
	}
	for _, e := range entries {
		if e.Occurrence == nil || e.Occurrence.Kind != "said" {
			t.Errorf("unexpected entry %+v", e)
		}
	}
}

func TestTimeline_FilterRuleDropsOccurrences(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")

	entries, err := s.Timeline(context.Background(), "match-a", Filter{Rule: "porcelain"})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, expected 1", len(entries))
	}
	v := entries[0].Violation
	if v == nil || v.Rule != "porcelain" || v.Seq != 2 {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestTimeline_KindAndRuleKeepBothSides(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")

	entries, err := s.Timeline(context.Background(), "match-a", Filter{Kind: "said", Rule: "porcelain"})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	// Both saids plus the porcelain violation, still in seq order.
	if len(entries) != 3 {
		t.Fatalf("entries = %d, expected 3", len(entries))
	}
	if entries[0].Occurrence == nil || entries[0].Seq != 1 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Violation == nil || entries[1].Seq != 2 {
		t.Errorf("entry 1 = %+v", entries[1])
	}
	if entries[2].Occurrence == nil || entries[2].Seq != 5 {
		t.Errorf("entry 2 = %+v", entries[2])
	}
}

func TestTimeline_FilterPlayer(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")

	entries, err := s.Timeline(context.Background(), "match-a", Filter{Player: Seat(1)})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, expected 2", len(entries))
	}
	if entries[0].Occurrence == nil || entries[0].Occurrence.Player != 1 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Violation == nil || entries[1].Violation.Player != 1 {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestTimeline_SinceSeqAndLimit(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")

	entries, err := s.Timeline(context.Background(), "match-a", Filter{SinceSeq: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, expected 2", len(entries))
	}
	if entries[0].Seq != 2 || entries[1].Seq != 3 {
		t.Errorf("seqs = %d, %d, expected 2, 3", entries[0].Seq, entries[1].Seq)
	}
}

func TestTimeline_UnknownMatchIsEmpty(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")

	entries, err := s.Timeline(context.Background(), "no-such-match", Filter{})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if entries == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, expected 0", len(entries))
	}
}

func TestTimeline_IsolatesMatches(t *testing.T) {
	s := openTestStore(t)
	seedMatch(t, s, "match-a")
	if err := s.RecordOccurrence("match-b", 1, event.Said{Player: 0, Message: "hi"}); err != nil {
		t.Fatalf("RecordOccurrence() failed: %v", err)
	}

	entries, err := s.Timeline(context.Background(), "match-b", Filter{})
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, expected 1", len(entries))
	}
	if entries[0].Occurrence == nil || entries[0].Occurrence.MatchToken != "match-b" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
}

func TestLastSeq(t *testing.T) {
	s := openTestStore(t)

	last, err := s.LastSeq(context.Background(), "match-a")
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if last != 0 {
		t.Errorf("LastSeq on empty journal = %d, expected 0", last)
	}

	seedMatch(t, s, "match-a")
	last, err = s.LastSeq(context.Background(), "match-a")
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if last != 5 {
		t.Errorf("LastSeq = %d, expected 5", last)
	}

	// A violation at seq 6 moves the max onto the other table.
	v := engine.Violation{Kind: engine.ViolationForgot, Rule: "porcelain", Message: "again", Player: 2}
	if err := s.RecordViolation("match-a", 6, v); err != nil {
		t.Fatalf("RecordViolation() failed: %v", err)
	}
	last, err = s.LastSeq(context.Background(), "match-a")
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if last != 6 {
		t.Errorf("LastSeq = %d, expected 6", last)
	}
}

func TestMatches(t *testing.T) {
	s := openTestStore(t)

	matches, err := s.Matches(context.Background())
	if err != nil {
		t.Fatalf("Matches() failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v, expected none", matches)
	}

	seedMatch(t, s, "match-b")
	// A match known only through a violation still lists.
	v := engine.Violation{Kind: engine.ViolationDisallowed, Rule: engine.BasicRules, Message: "no", Player: 0}
	if err := s.RecordViolation("match-a", 1, v); err != nil {
		t.Fatalf("RecordViolation() failed: %v", err)
	}

	matches, err = s.Matches(context.Background())
	if err != nil {
		t.Fatalf("Matches() failed: %v", err)
	}
	if len(matches) != 2 || matches[0] != "match-a" || matches[1] != "match-b" {
		t.Errorf("matches = %v, expected [match-a match-b]", matches)
	}
}
