package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/event"
)

// marshalOccurrence flattens an occurrence into journal JSON. A bare
// marshal of the structs would collapse the stack/hand distinction
// their Target fields carry, so the payload is assembled by hand.
// Map keys sort alphabetically, which keeps the stored text stable for
// golden traces.
func marshalOccurrence(occ event.Occurrence) (string, error) {
	fields, err := occurrenceFields(occ)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return "", fmt.Errorf("marshal occurrence: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// occurrenceFields carries everything the kind and player columns do
// not. The acting player only appears inside nested turn summaries,
// where there is no column to hold it.
func occurrenceFields(occ event.Occurrence) (map[string]any, error) {
	switch o := occ.(type) {
	case event.PlayedCard:
		return cardMove(o.CardIndex, o.Card, o.Stack), nil
	case event.DrewCard:
		return cardMove(o.CardIndex, o.Card, o.Stack), nil
	case event.DiscardedCard:
		return cardMove(o.CardIndex, o.Card, o.Stack), nil
	case event.GaveCard:
		return map[string]any{
			"card":   cardFields(o.Card),
			"from":   o.From,
			"target": targetFields(o.Target),
		}, nil
	case event.Said:
		return map[string]any{"message": o.Message}, nil
	case event.DidPhysical:
		return map[string]any{"name": o.Name}, nil
	case event.StackRanOut:
		return map[string]any{"target": targetFields(o.Target)}, nil
	case event.TurnEnded:
		nested := make([]map[string]any, 0, len(o.Events))
		for _, ev := range o.Events {
			fields, err := occurrenceFields(ev)
			if err != nil {
				return nil, err
			}
			fields["kind"] = event.Kind(ev)
			if p, ok := event.PlayerIndex(ev); ok {
				fields["player"] = p
			}
			nested = append(nested, fields)
		}
		return map[string]any{"events": nested}, nil
	case event.GameStart, event.Penalty, event.Verify:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("unknown occurrence %T", occ)
	}
}

func cardMove(cardIndex int, c card.Card, stack int) map[string]any {
	return map[string]any{
		"card":       cardFields(c),
		"card_index": cardIndex,
		"stack":      stack,
	}
}

// cardFields renders a card the way the rule surface does: parseable
// value and kind, derived color, compact label.
func cardFields(c card.Card) map[string]any {
	m := map[string]any{
		"value": c.Value.String(),
		"kind":  c.Kind.String(),
		"color": c.Color().String(),
		"label": c.String(),
	}
	if c.Rule != "" {
		m["rule"] = c.Rule
	}
	return m
}

func targetFields(t event.Target) map[string]any {
	switch t := t.(type) {
	case event.StackTarget:
		return map[string]any{"stack": int(t)}
	case event.HandTarget:
		return map[string]any{"hand": int(t)}
	default:
		return map[string]any{}
	}
}
