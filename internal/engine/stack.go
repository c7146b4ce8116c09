package engine

import "github.com/roach88/mao/internal/card"

// StackKind tags what a table stack is used for. A stack may carry
// several tags at once, so a pile can be both playable and drawable.
type StackKind int

const (
	Drawable StackKind = iota + 1
	Playable
	Discardable
)

func (k StackKind) String() string {
	switch k {
	case Drawable:
		return "drawable"
	case Playable:
		return "playable"
	case Discardable:
		return "discardable"
	default:
		return "unknown"
	}
}

// Stack is an ordered pile of cards on the table. The last card is the
// top: draws and plays both work against the end of the slice.
type Stack struct {
	cards   []card.Card
	visible bool
	kinds   []StackKind
}

// NewStack builds a stack owning the given cards.
func NewStack(cards []card.Card, visible bool, kinds ...StackKind) *Stack {
	owned := make([]card.Card, len(cards))
	copy(owned, cards)
	return &Stack{cards: owned, visible: visible, kinds: kinds}
}

// Cards returns a snapshot of the pile, bottom first.
func (s *Stack) Cards() []card.Card {
	out := make([]card.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

func (s *Stack) Len() int      { return len(s.cards) }
func (s *Stack) Empty() bool   { return len(s.cards) == 0 }
func (s *Stack) Visible() bool { return s.visible }

// Top returns the top card without removing it.
func (s *Stack) Top() (card.Card, bool) {
	if len(s.cards) == 0 {
		return card.Card{}, false
	}
	return s.cards[len(s.cards)-1], true
}

// Draw removes and returns the top card.
func (s *Stack) Draw() (card.Card, bool) {
	if len(s.cards) == 0 {
		return card.Card{}, false
	}
	c := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return c, true
}

// Is reports whether the stack carries the given tag.
func (s *Stack) Is(k StackKind) bool {
	for _, t := range s.kinds {
		if t == k {
			return true
		}
	}
	return false
}

// Kinds returns a snapshot of the stack's tags.
func (s *Stack) Kinds() []StackKind {
	out := make([]StackKind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// AddCard pushes a card onto the top of the pile.
func (s *Stack) AddCard(c card.Card) {
	s.cards = append(s.cards, c)
}

// RemoveCard takes the card at index out of the pile.
func (s *Stack) RemoveCard(index int) (card.Card, error) {
	if index < 0 || index >= len(s.cards) {
		return card.Card{}, NewInvalidCardIndex(index, len(s.cards))
	}
	c := s.cards[index]
	s.cards = append(s.cards[:index], s.cards[index+1:]...)
	return c, nil
}

// take empties the pile and returns its cards, bottom first.
func (s *Stack) take() []card.Card {
	out := s.cards
	s.cards = nil
	return out
}

// takeTop removes up to n cards off the top, returned in pile order.
func (s *Stack) takeTop(n int) []card.Card {
	if n > len(s.cards) {
		n = len(s.cards)
	}
	cut := len(s.cards) - n
	out := make([]card.Card, n)
	copy(out, s.cards[cut:])
	s.cards = s.cards[:cut]
	return out
}
