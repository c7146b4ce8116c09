// Package event defines the occurrences a Mao table produces: cards
// played, drawn, discarded or given, table chatter, physical actions,
// and the bookkeeping signals the engine raises around them.
//
// Occurrence is a sealed union; only the types in this package implement
// it. Rule modules receive occurrences and answer with verdicts, which
// live with their consumer in the engine package.
package event

import "github.com/roach88/mao/internal/card"

// NoStack marks a card event that does not address an existing stack:
// the player is opening a new playable stack, or the engine is free to
// pick any drawable stack.
const NoStack = -1

// Occurrence is something that happened at the table.
type Occurrence interface {
	occurrence()
}

// Target addresses a pile of cards: a shared stack by index, or a
// player's hand.
type Target interface {
	pileTarget()
}

// StackTarget addresses a table stack by index.
type StackTarget int

func (StackTarget) pileTarget() {}

// HandTarget addresses a player's hand by player index.
type HandTarget int

func (HandTarget) pileTarget() {}

// PlayedCard records a card landing on a playable stack.
type PlayedCard struct {
	Player    int
	CardIndex int // position in the player's hand at play time
	Card      card.Card
	Stack     int // target stack, or NoStack for a new stack
}

func (PlayedCard) occurrence() {}

// DrewCard records a card leaving a drawable stack for a player's hand.
type DrewCard struct {
	Player    int
	CardIndex int
	Card      card.Card
	Stack     int
}

func (DrewCard) occurrence() {}

// DiscardedCard records a card leaving a hand for a discardable stack.
type DiscardedCard struct {
	Player    int
	CardIndex int
	Card      card.Card
	Stack     int
}

func (DiscardedCard) occurrence() {}

// GaveCard records a card handed from one player to a stack or another
// player's hand.
type GaveCard struct {
	Card   card.Card
	From   int
	Target Target
}

func (GaveCard) occurrence() {}

// Said records table chatter by a player.
type Said struct {
	Player  int
	Message string
}

func (Said) occurrence() {}

// DidPhysical records a player performing a declared physical action.
type DidPhysical struct {
	Player int
	Name   string
}

func (DidPhysical) occurrence() {}

// StackRanOut signals that a pile has no cards left.
type StackRanOut struct {
	Target Target
}

func (StackRanOut) occurrence() {}

// GameStart signals the start of a game.
type GameStart struct{}

func (GameStart) occurrence() {}

// TurnEnded carries the drained per-turn log of the closing turn,
// newest entry first.
type TurnEnded struct {
	Events []Occurrence
}

func (TurnEnded) occurrence() {}

// Penalty signals that a player is about to take a penalty.
type Penalty struct {
	Player int
}

func (Penalty) occurrence() {}

// Verify is the rule-validity probe dispatched at load time.
type Verify struct{}

func (Verify) occurrence() {}

// Recordable reports whether the occurrence lands in the per-turn log.
// Bookkeeping kinds stay out so reacting to them cannot feed the log
// that triggered them.
func Recordable(o Occurrence) bool {
	switch o.(type) {
	case GameStart, Verify, StackRanOut, TurnEnded, Penalty:
		return false
	default:
		return true
	}
}

// ChangesTurn reports whether the occurrence closes the active player's
// turn: plays and draws do, everything else does not.
func ChangesTurn(o Occurrence) bool {
	switch o.(type) {
	case PlayedCard, DrewCard:
		return true
	default:
		return false
	}
}

// PlayerIndex returns the acting player of the occurrence, if it has
// one.
func PlayerIndex(o Occurrence) (int, bool) {
	switch o := o.(type) {
	case PlayedCard:
		return o.Player, true
	case DrewCard:
		return o.Player, true
	case DiscardedCard:
		return o.Player, true
	case GaveCard:
		return o.From, true
	case Said:
		return o.Player, true
	case DidPhysical:
		return o.Player, true
	case Penalty:
		return o.Player, true
	default:
		return 0, false
	}
}

// Kind returns a stable lowercase name for the occurrence, used by the
// journal and trace output.
func Kind(o Occurrence) string {
	switch o.(type) {
	case PlayedCard:
		return "played_card"
	case DrewCard:
		return "drew_card"
	case DiscardedCard:
		return "discarded_card"
	case GaveCard:
		return "gave_card"
	case Said:
		return "said"
	case DidPhysical:
		return "did_physical"
	case StackRanOut:
		return "stack_ran_out"
	case GameStart:
		return "game_start"
	case TurnEnded:
		return "turn_ended"
	case Penalty:
		return "penalty"
	case Verify:
		return "verify"
	default:
		return "unknown"
	}
}
