package engine

import "fmt"

// Token is one atomic kind of player input. The set is closed and
// ordered; candidate lists and automaton equality rely on the order for
// deterministic tie-breaks.
type Token int

const (
	SelectCard Token = iota + 1
	SelectPlayer
	SelectPlayableStack
	SelectDrawableStack
	SelectDiscardableStack
	SelectRule
	DoAction
)

func (t Token) String() string {
	switch t {
	case SelectCard:
		return "select_card"
	case SelectPlayer:
		return "select_player"
	case SelectPlayableStack:
		return "select_playable_stack"
	case SelectDrawableStack:
		return "select_drawable_stack"
	case SelectDiscardableStack:
		return "select_discardable_stack"
	case SelectRule:
		return "select_rule"
	case DoAction:
		return "do_action"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// ParseToken parses the snake_case token name used by rule-module path
// declarations.
func ParseToken(s string) (Token, error) {
	switch s {
	case "select_card":
		return SelectCard, nil
	case "select_player":
		return SelectPlayer, nil
	case "select_playable_stack":
		return SelectPlayableStack, nil
	case "select_drawable_stack":
		return SelectDrawableStack, nil
	case "select_discardable_stack":
		return SelectDiscardableStack, nil
	case "select_rule":
		return SelectRule, nil
	case "do_action":
		return DoAction, nil
	default:
		return 0, fmt.Errorf("unknown interaction token %q", s)
	}
}

// Payload is the optional argument carried by a step: the index of the
// selected card/stack/player, or a free-form name for physical actions.
// Payloads never participate in automaton matching.
type Payload interface {
	stepPayload()
}

// Index selects a position: a card in the acting player's hand, a stack
// on the table, a seat, or a rule.
type Index int

func (Index) stepPayload() {}

// Name carries free-form text, used by DoAction steps.
type Name string

func (Name) stepPayload() {}

// Step is one unit of player input: a token plus an optional payload.
// A nil payload on a stack selection means "no existing stack": the
// engine picks one (draws) or opens a new one (plays).
type Step struct {
	Token   Token
	Payload Payload
}

func (s Step) String() string {
	switch p := s.Payload.(type) {
	case Index:
		return fmt.Sprintf("%s(%d)", s.Token, int(p))
	case Name:
		return fmt.Sprintf("%s(%s)", s.Token, string(p))
	default:
		return fmt.Sprintf("%s(new)", s.Token)
	}
}

// IndexPayload returns the step's payload as an index. A missing or
// mistyped payload is a malformed interaction.
func (s Step) IndexPayload() (int, error) {
	idx, ok := s.Payload.(Index)
	if !ok {
		return 0, NewMalformedInteraction(fmt.Sprintf("step %s: expected an index payload", s))
	}
	return int(idx), nil
}

// NamePayload returns the step's payload as a name. A missing or
// mistyped payload is a malformed interaction.
func (s Step) NamePayload() (string, error) {
	name, ok := s.Payload.(Name)
	if !ok {
		return "", NewMalformedInteraction(fmt.Sprintf("step %s: expected a name payload", s))
	}
	return string(name), nil
}
