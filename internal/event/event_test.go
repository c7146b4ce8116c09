package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/mao/internal/card"
)

func TestRecordable(t *testing.T) {
	c := card.Card{Value: card.Number(7), Kind: card.Common(card.Club)}

	tests := []struct {
		name string
		occ  Occurrence
		want bool
	}{
		{"played card", PlayedCard{Player: 0, Card: c, Stack: 1}, true},
		{"drew card", DrewCard{Player: 1, Card: c, Stack: 0}, true},
		{"discarded card", DiscardedCard{Player: 0, Card: c, Stack: 2}, true},
		{"gave card", GaveCard{Card: c, From: 0, Target: HandTarget(1)}, true},
		{"said", Said{Player: 0, Message: "mao"}, true},
		{"did physical", DidPhysical{Player: 0, Name: "knock"}, true},
		{"stack ran out", StackRanOut{Target: StackTarget(0)}, false},
		{"game start", GameStart{}, false},
		{"turn ended", TurnEnded{}, false},
		{"penalty", Penalty{Player: 2}, false},
		{"verify probe", Verify{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recordable(tt.occ))
		})
	}
}

func TestChangesTurn(t *testing.T) {
	c := card.Card{Value: card.Number(2), Kind: card.Common(card.Heart)}

	assert.True(t, ChangesTurn(PlayedCard{Player: 0, Card: c, Stack: 1}))
	assert.True(t, ChangesTurn(DrewCard{Player: 0, Card: c, Stack: 0}))

	assert.False(t, ChangesTurn(Said{Player: 0, Message: "mao"}))
	assert.False(t, ChangesTurn(DidPhysical{Player: 0, Name: "knock"}))
	assert.False(t, ChangesTurn(DiscardedCard{Player: 0, Card: c, Stack: 2}))
	assert.False(t, ChangesTurn(Penalty{Player: 0}))
	assert.False(t, ChangesTurn(TurnEnded{}))
}

func TestPlayerIndex(t *testing.T) {
	c := card.Card{Value: card.Number(4), Kind: card.Common(card.Spade)}

	p, ok := PlayerIndex(PlayedCard{Player: 3, Card: c, Stack: 0})
	assert.True(t, ok)
	assert.Equal(t, 3, p)

	p, ok = PlayerIndex(GaveCard{Card: c, From: 2, Target: StackTarget(0)})
	assert.True(t, ok)
	assert.Equal(t, 2, p)

	p, ok = PlayerIndex(Said{Player: 1, Message: "mao"})
	assert.True(t, ok)
	assert.Equal(t, 1, p)

	_, ok = PlayerIndex(GameStart{})
	assert.False(t, ok)
	_, ok = PlayerIndex(StackRanOut{Target: StackTarget(1)})
	assert.False(t, ok)
}

func TestKindNames(t *testing.T) {
	occs := []Occurrence{
		PlayedCard{}, DrewCard{}, DiscardedCard{}, GaveCard{}, Said{},
		DidPhysical{}, StackRanOut{}, GameStart{}, TurnEnded{}, Penalty{}, Verify{},
	}
	seen := make(map[string]bool)
	for _, o := range occs {
		k := Kind(o)
		assert.NotEqual(t, "unknown", k)
		assert.False(t, seen[k], "duplicate kind name %q", k)
		seen[k] = true
	}
}
