// Package effect holds the card-effect table: the turn changes, spoken
// phrases, and physical actions a card demands when it is played.
//
// Cards are selected by value, by kind, or by the exact pair; a lookup
// unions all three result sets. Effects come from the table's TOML file
// and from activated rule modules, which tag their entries so they can
// be withdrawn on deactivation.
package effect

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/turn"
)

// Key selects cards. A nil Kind or Value half is a wildcard: value-only
// and kind-only keys apply to every card sharing the other half.
type Key struct {
	Kind  card.Kind
	Value card.Value
}

func (k Key) String() string {
	switch {
	case k.Kind == nil && k.Value == nil:
		return "any"
	case k.Kind == nil:
		return k.Value.String()
	case k.Value == nil:
		return k.Kind.String()
	default:
		return k.Kind.String() + ":" + k.Value.String()
	}
}

// ParseKey parses an effect-table key: "7" (value only), "club" (kind
// only), or "club:7" (exact pair).
func ParseKey(s string) (Key, error) {
	if kindStr, valueStr, ok := strings.Cut(s, ":"); ok {
		kind, err := card.ParseKind(kindStr)
		if err != nil {
			return Key{}, fmt.Errorf("effect key %q: %w", s, err)
		}
		value, err := card.ParseValue(valueStr)
		if err != nil {
			return Key{}, fmt.Errorf("effect key %q: %w", s, err)
		}
		return Key{Kind: kind, Value: value}, nil
	}
	if value, err := card.ParseValue(s); err == nil {
		return Key{Value: value}, nil
	}
	kind, err := card.ParseKind(s)
	if err != nil {
		return Key{}, fmt.Errorf("effect key %q: want a value, a kind, or kind:value", s)
	}
	return Key{Kind: kind}, nil
}

// Effect is a sealed union of what a played card demands.
type Effect interface {
	cardEffect()
}

// TurnChange replaces the default pass to the next seat.
type TurnChange struct {
	Change turn.Change
}

func (TurnChange) cardEffect() {}

// Phrase is one spoken requirement: with one word the player must say
// it, with several any one of them satisfies the requirement.
type Phrase []string

// Say lists the phrases a player must have said by the end of the turn
// the card was played in.
type Say []Phrase

func (Say) cardEffect() {}

// Physical names an action the player must have performed, exactly.
type Physical string

func (Physical) cardEffect() {}

type entry struct {
	owner string // rule module that contributed it; empty for the base table
	eff   Effect
}

// Table maps card selectors to effects.
type Table struct {
	// FoldCase makes phrase matching case-insensitive.
	FoldCase bool

	effects map[Key][]entry
}

// NewTable returns an empty effect table.
func NewTable() *Table {
	return &Table{effects: make(map[Key][]entry)}
}

// Add registers base-table effects for a key.
func (t *Table) Add(key Key, effs ...Effect) {
	for _, e := range effs {
		t.effects[key] = append(t.effects[key], entry{eff: e})
	}
}

// AddFrom registers effects contributed by a rule module.
func (t *Table) AddFrom(owner string, key Key, effs ...Effect) {
	for _, e := range effs {
		t.effects[key] = append(t.effects[key], entry{owner: owner, eff: e})
	}
}

// RemoveFrom withdraws every effect a rule module contributed.
func (t *Table) RemoveFrom(owner string) {
	for key, entries := range t.effects {
		kept := entries[:0]
		for _, e := range entries {
			if e.owner != owner {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(t.effects, key)
		} else {
			t.effects[key] = kept
		}
	}
}

// Lookup unions the value-only, kind-only, and exact-pair entries for a
// card, in that order.
func (t *Table) Lookup(c card.Card) []Effect {
	var out []Effect
	for _, key := range []Key{
		{Value: c.Value},
		{Kind: c.Kind},
		{Kind: c.Kind, Value: c.Value},
	} {
		for _, e := range t.effects[key] {
			out = append(out, e.eff)
		}
	}
	return out
}

// TurnChanges filters a lookup down to the turn changes the card grants.
func (t *Table) TurnChanges(c card.Card) []turn.Change {
	var out []turn.Change
	for _, e := range t.Lookup(c) {
		if tc, ok := e.(TurnChange); ok {
			out = append(out, tc.Change)
		}
	}
	return out
}

// PhraseSaid reports whether any message satisfies the phrase. Both
// sides are NFC-normalized before the substring test so composed and
// decomposed accents compare equal; FoldCase additionally lowercases.
func (t *Table) PhraseSaid(p Phrase, messages []string) bool {
	alts := make([]string, len(p))
	for i, alt := range p {
		alts[i] = t.canon(alt)
	}
	for _, m := range messages {
		m = t.canon(m)
		for _, alt := range alts {
			if strings.Contains(m, alt) {
				return true
			}
		}
	}
	return false
}

func (t *Table) canon(s string) string {
	s = norm.NFC.String(s)
	if t.FoldCase {
		s = strings.ToLower(s)
	}
	return s
}
