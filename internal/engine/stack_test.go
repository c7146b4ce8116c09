package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mao/internal/card"
)

func TestStack_TopAndDraw(t *testing.T) {
	s := NewStack([]card.Card{cc(1, card.Spade), cc(2, card.Heart)}, false, Drawable)

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, cc(2, card.Heart), top)
	assert.Equal(t, 2, s.Len(), "peeking removes nothing")

	drawn, ok := s.Draw()
	require.True(t, ok)
	assert.Equal(t, cc(2, card.Heart), drawn)
	assert.Equal(t, 1, s.Len())

	s.Draw()
	_, ok = s.Draw()
	assert.False(t, ok)
	assert.True(t, s.Empty())
}

func TestStack_Kinds(t *testing.T) {
	s := NewStack(nil, true, Playable, Discardable)
	assert.True(t, s.Is(Playable))
	assert.True(t, s.Is(Discardable))
	assert.False(t, s.Is(Drawable))
	assert.Equal(t, []StackKind{Playable, Discardable}, s.Kinds())
	assert.True(t, s.Visible())
}

func TestStack_OwnsItsCards(t *testing.T) {
	seed := []card.Card{cc(1, card.Spade)}
	s := NewStack(seed, false, Drawable)
	seed[0] = cc(9, card.Club)

	top, _ := s.Top()
	assert.Equal(t, cc(1, card.Spade), top, "the seed slice is copied")

	snap := s.Cards()
	snap[0] = cc(9, card.Club)
	top, _ = s.Top()
	assert.Equal(t, cc(1, card.Spade), top, "snapshots detach from the pile")
}

func TestStack_RemoveCard(t *testing.T) {
	s := NewStack([]card.Card{cc(1, card.Spade), cc(2, card.Heart), cc(3, card.Club)}, true, Playable)

	c, err := s.RemoveCard(1)
	require.NoError(t, err)
	assert.Equal(t, cc(2, card.Heart), c)
	assert.Equal(t, []card.Card{cc(1, card.Spade), cc(3, card.Club)}, s.Cards())

	_, err = s.RemoveCard(5)
	assert.Equal(t, ErrCodeInvalidCardIndex, CodeOf(err))
}

func TestStack_TakeTop(t *testing.T) {
	s := NewStack([]card.Card{cc(1, card.Spade), cc(2, card.Heart), cc(3, card.Club)}, false, Drawable)

	got := s.takeTop(2)
	assert.Equal(t, []card.Card{cc(2, card.Heart), cc(3, card.Club)}, got, "pile order, not draw order")
	assert.Equal(t, 1, s.Len())

	got = s.takeTop(5)
	assert.Equal(t, []card.Card{cc(1, card.Spade)}, got, "clamped to what is left")
	assert.True(t, s.Empty())
}

func TestStack_Take(t *testing.T) {
	s := NewStack([]card.Card{cc(1, card.Spade), cc(2, card.Heart)}, false, Drawable)
	got := s.take()
	assert.Equal(t, []card.Card{cc(1, card.Spade), cc(2, card.Heart)}, got)
	assert.True(t, s.Empty())
}

func TestStackKind_String(t *testing.T) {
	assert.Equal(t, "drawable", Drawable.String())
	assert.Equal(t, "playable", Playable.String())
	assert.Equal(t, "discardable", Discardable.String())
}
