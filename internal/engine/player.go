package engine

import "github.com/roach88/mao/internal/card"

// Player is a seat at the table: a display name, a hand, and the
// private data slots rule modules keep between calls.
type Player struct {
	pseudo string
	hand   []card.Card
	data   *DataStore
}

// NewPlayer creates a seat with an empty hand.
func NewPlayer(pseudo string) *Player {
	return &Player{pseudo: pseudo, data: NewDataStore()}
}

func (p *Player) Pseudo() string { return p.pseudo }

// Hand returns a snapshot of the player's cards.
func (p *Player) Hand() []card.Card {
	out := make([]card.Card, len(p.hand))
	copy(out, p.hand)
	return out
}

func (p *Player) HandLen() int { return len(p.hand) }

// Data is the player-scoped rule store.
func (p *Player) Data() *DataStore { return p.data }

// AddCard appends a card to the hand.
func (p *Player) AddCard(c card.Card) {
	p.hand = append(p.hand, c)
}

// RemoveCard takes the card at index out of the hand.
func (p *Player) RemoveCard(index int) (card.Card, error) {
	if index < 0 || index >= len(p.hand) {
		return card.Card{}, NewInvalidCardIndex(index, len(p.hand))
	}
	c := p.hand[index]
	p.hand = append(p.hand[:index], p.hand[index+1:]...)
	return c, nil
}

// CardAt returns the card at index without removing it.
func (p *Player) CardAt(index int) (card.Card, error) {
	if index < 0 || index >= len(p.hand) {
		return card.Card{}, NewInvalidCardIndex(index, len(p.hand))
	}
	return p.hand[index], nil
}

// clearHand drops every card, used when a fresh game is dealt.
func (p *Player) clearHand() {
	p.hand = nil
}

// Pile is anything cards move through: a table stack or a player's
// hand. Targets from the event package resolve to one of these.
type Pile interface {
	AddCard(c card.Card)
	RemoveCard(index int) (card.Card, error)
}
