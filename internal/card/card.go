// Package card models the physical cards a Mao table manipulates: face
// values, suits, jokers, written rule cards, deck generation and seeded
// dealing.
//
// Value and Kind are sealed interfaces so rule modules can introduce
// special cards (infinities, jokers) without widening the common deck
// representation.
package card

import (
	"fmt"
	"strconv"
)

// Suit is one of the four french-deck suits.
type Suit int

const (
	Spade Suit = iota + 1
	Diamond
	Club
	Heart
)

// Suits lists the four suits in deck-generation order.
var Suits = [4]Suit{Spade, Diamond, Club, Heart}

func (s Suit) String() string {
	switch s {
	case Spade:
		return "spade"
	case Diamond:
		return "diamond"
	case Club:
		return "club"
	case Heart:
		return "heart"
	default:
		return "suit(" + strconv.Itoa(int(s)) + ")"
	}
}

// Symbol returns the one-rune suit glyph used in compact card labels.
func (s Suit) Symbol() string {
	switch s {
	case Spade:
		return "♤"
	case Diamond:
		return "♦"
	case Club:
		return "♧"
	case Heart:
		return "♥"
	default:
		return "?"
	}
}

// Color classifies a card face as black, red, or neither.
// Rule cards have no color; they match nothing by color alone.
type Color int

const (
	ColorNone Color = iota
	Black
	Red
)

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case Red:
		return "red"
	default:
		return "none"
	}
}

// Color returns black for spades and clubs, red for diamonds and hearts.
func (s Suit) Color() Color {
	switch s {
	case Spade, Club:
		return Black
	case Diamond, Heart:
		return Red
	default:
		return ColorNone
	}
}

// Value is the face value of a card. Number covers the common deck;
// Infinity covers unbounded special cards.
type Value interface {
	cardValue()
	fmt.Stringer
}

// Number is a numbered face value, ace = 1 through king = 13.
type Number int

func (Number) cardValue() {}

func (n Number) String() string { return strconv.Itoa(int(n)) }

// Infinity is a face value that outranks (or underranks) every number.
type Infinity int

const (
	MinusInfinity Infinity = -1
	PlusInfinity  Infinity = 1
)

func (Infinity) cardValue() {}

func (i Infinity) String() string {
	if i < 0 {
		return "-inf"
	}
	return "+inf"
}

// Kind is the family of a card: a common suited card, a card carrying a
// written table rule, or a joker.
type Kind interface {
	cardKind()
	fmt.Stringer
}

// Common is a suited card from the standard deck.
type Common Suit

func (Common) cardKind() {}

func (c Common) String() string { return Suit(c).String() }

// RuleCard carries a written table rule instead of a suit.
type RuleCard struct{}

func (RuleCard) cardKind() {}

func (RuleCard) String() string { return "rule" }

// Joker is a wildcard with a free-form description and an explicit color.
type Joker struct {
	Desc  string
	Color Color
}

func (Joker) cardKind() {}

func (Joker) String() string { return "joker" }

// Card is one physical card. Rule names the module that introduced the
// card, empty for the common deck. Cards compare with ==.
type Card struct {
	Value Value
	Kind  Kind
	Rule  string
}

// Color derives the card color from its kind.
func (c Card) Color() Color {
	switch k := c.Kind.(type) {
	case Common:
		return Suit(k).Color()
	case Joker:
		return k.Color
	default:
		return ColorNone
	}
}

// String renders a compact label such as "7♧" or "+inf♯".
func (c Card) String() string {
	if c.Value == nil || c.Kind == nil {
		return "?"
	}
	return c.Value.String() + kindSymbol(c.Kind)
}

func kindSymbol(k Kind) string {
	switch k := k.(type) {
	case Common:
		return Suit(k).Symbol()
	case Joker:
		if k.Color == Red {
			return "Ј"
		}
		return "J"
	default:
		return "♯"
	}
}

// ParseValue parses the textual form used in effect tables: a base-10
// integer, "+inf", or "-inf".
func ParseValue(s string) (Value, error) {
	switch s {
	case "+inf":
		return PlusInfinity, nil
	case "-inf":
		return MinusInfinity, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("parse card value %q: %w", s, err)
	}
	return Number(n), nil
}

// ParseKind parses a suit name, "rule", or "joker".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "spade":
		return Common(Spade), nil
	case "diamond":
		return Common(Diamond), nil
	case "club":
		return Common(Club), nil
	case "heart":
		return Common(Heart), nil
	case "rule":
		return RuleCard{}, nil
	case "joker":
		return Joker{}, nil
	}
	return nil, fmt.Errorf("unknown card kind %q", s)
}

// DeckSize is the number of cards in the common deck.
const DeckSize = 52

// NewDeck returns the 52-card common deck, unshuffled: ace through king
// of each suit in Suits order.
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for n := 1; n <= 13; n++ {
		for _, s := range Suits {
			cards = append(cards, Card{Value: Number(n), Kind: Common(s)})
		}
	}
	return cards
}
