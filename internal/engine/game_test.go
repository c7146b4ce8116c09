package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/effect"
	"github.com/roach88/mao/internal/event"
	"github.com/roach88/mao/internal/testutil"
	"github.com/roach88/mao/internal/turn"
)

// identityDealer leaves the deck in generation order so tests know
// exactly which card sits where.
type identityDealer struct{}

func (identityDealer) Shuffle([]card.Card) {}

// stubRule is a scriptable rule module. A nil onEvent ignores
// everything, which also satisfies the load-time verify probe.
type stubRule struct {
	data    RuleData
	onEvent func(g *Game, occ event.Occurrence) (Verdict, error)
}

func (r *stubRule) Data() RuleData { return r.data }

func (r *stubRule) OnEvent(g *Game, occ event.Occurrence) (Verdict, error) {
	if r.onEvent == nil {
		return Ignore(), nil
	}
	return r.onEvent(g, occ)
}

// newTestGame seats Alice, Bob and Chloe with a deterministic deck.
// Play opens at seat 1 (Bob).
func newTestGame(t *testing.T, rules []Rule, opts ...GameOption) *Game {
	t.Helper()
	base := []GameOption{
		WithLogger(testutil.Logger()),
		WithDealer(identityDealer{}),
		WithMatchTokens(NewFixedGenerator("match-test")),
	}
	g, err := NewGame([]string{"Alice", "Bob", "Chloe"}, rules, append(base, opts...)...)
	require.NoError(t, err)
	return g
}

func TestNewGame_RequiresTwoPlayers(t *testing.T) {
	_, err := NewGame([]string{"Alice"}, nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidConfig, CodeOf(err))
}

func TestNewGame_TableLayout(t *testing.T) {
	g := newTestGame(t, nil)

	assert.Equal(t, "match-test", g.MatchToken())
	assert.Equal(t, 1, g.CurrentPlayer(), "the seat after the dealer opens play")
	assert.Equal(t, 1, g.Direction())
	assert.Equal(t, -1, g.PreviousPlayer())
	assert.Equal(t, 0, g.Dealer())

	stacks := g.Stacks()
	require.Len(t, stacks, 3)

	drawable := stacks[0]
	assert.True(t, drawable.Is(Drawable))
	assert.False(t, drawable.Visible())
	assert.Equal(t, 51, drawable.Len())

	playable := stacks[1]
	assert.True(t, playable.Is(Playable))
	assert.True(t, playable.Visible())
	top, ok := playable.Top()
	require.True(t, ok)
	assert.Equal(t, cc(13, card.Heart), top, "the last generated card opens the table")

	discard := stacks[2]
	assert.True(t, discard.Is(Discardable))
	assert.True(t, discard.Empty())

	for _, p := range g.Players() {
		assert.Zero(t, p.HandLen(), "cards are dealt by InitNewGame, not the constructor")
	}
}

func TestNewGame_VerifyAggregatesFailures(t *testing.T) {
	boom := func(*Game, event.Occurrence) (Verdict, error) {
		return Verdict{}, errors.New("no version hook")
	}
	rules := []Rule{
		&stubRule{data: RuleData{Name: "broken_one"}, onEvent: boom},
		&stubRule{data: RuleData{Name: "fine"}},
		&stubRule{data: RuleData{Name: "broken_two"}, onEvent: boom},
	}

	_, err := NewGame([]string{"Alice", "Bob"}, rules,
		WithLogger(testutil.Logger()))
	require.Error(t, err)
	assert.Equal(t, ErrCodeRuleLoad, CodeOf(err))
	assert.Contains(t, err.Error(), "broken_one")
	assert.Contains(t, err.Error(), "broken_two")
	assert.NotContains(t, err.Error(), "fine:")
}

func TestGame_ActivateRule(t *testing.T) {
	paths := []Path{{
		Tokens:  []Token{SelectCard, DoAction},
		Rule:    "seven_spice",
		Handler: handlerOne,
	}}
	sevenKey := effect.Key{Value: card.Number(7)}
	r := &stubRule{data: RuleData{
		Name:  "seven_spice",
		Paths: paths,
		CardEffects: map[effect.Key][]effect.Effect{
			sevenKey: {effect.Say{effect.Phrase{"spice"}}},
		},
	}}
	g := newTestGame(t, []Rule{r})

	require.NoError(t, g.ActivateRule(0))
	assert.True(t, g.RuleActive(0))
	assert.Equal(t, []int{0}, g.ActivatedRules())
	assert.True(t, g.Automaton().PathExists([]Token{SelectCard, DoAction}))
	assert.Len(t, g.CardEffects(cc(7, card.Club)), 1)

	err := g.ActivateRule(0)
	assert.Equal(t, ErrCodeRuleAlreadyActive, CodeOf(err))
	err = g.ActivateRule(3)
	assert.Equal(t, ErrCodeInvalidRuleIndex, CodeOf(err))

	require.NoError(t, g.DeactivateRule(0))
	assert.False(t, g.RuleActive(0))
	assert.Empty(t, g.ActivatedRules())
	assert.False(t, g.Automaton().PathExists([]Token{SelectCard, DoAction}))
	assert.Empty(t, g.CardEffects(cc(7, card.Club)))

	err = g.DeactivateRule(0)
	assert.Equal(t, ErrCodeRuleNotActive, CodeOf(err))
}

// removerRule exercises the optional teardown hook.
type removerRule struct {
	stubRule
	removed bool
}

func (r *removerRule) RemoveCardEffects(*Game) error {
	r.removed = true
	return nil
}

func TestGame_DeactivateRunsRemover(t *testing.T) {
	r := &removerRule{stubRule: stubRule{data: RuleData{Name: "cleanup"}}}
	g := newTestGame(t, []Rule{r})

	require.NoError(t, g.ActivateRule(0))
	require.NoError(t, g.DeactivateRule(0))
	assert.True(t, r.removed)
}

func TestGame_InitNewGame(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.InitNewGame(5))

	for _, p := range g.Players() {
		assert.Equal(t, 5, p.HandLen())
	}
	drawable, err := g.Stack(0)
	require.NoError(t, err)
	assert.Equal(t, 36, drawable.Len())

	alice, err := g.Player(0)
	require.NoError(t, err)
	assert.Contains(t, alice.Hand(), cc(13, card.Club),
		"the first seat draws off the top of the pile")
	assert.Equal(t, -1, g.PreviousPlayer())
	assert.Empty(t, g.TurnLog())
}

func TestGame_InitNewGame_NotEnoughCards(t *testing.T) {
	g := newTestGame(t, nil)
	err := g.InitNewGame(20)
	require.Error(t, err)
	assert.True(t, IsNotEnoughCards(err))
}

func TestGame_StacksOf(t *testing.T) {
	g := newTestGame(t, nil)
	assert.Equal(t, []int{0}, g.StacksOf(Drawable))
	assert.Equal(t, []int{1}, g.StacksOf(Playable))
	assert.Equal(t, []int{1, 2}, g.StacksOf(Playable, Discardable))

	g.newPlayedStack([]card.Card{cc(4, card.Spade)})
	assert.Equal(t, []int{1, 3}, g.StacksOf(Playable))
}

func TestGame_PlayerWon(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.InitNewGame(2))

	_, ok := g.PlayerWon()
	assert.False(t, ok)

	bob, err := g.Player(1)
	require.NoError(t, err)
	for bob.HandLen() > 0 {
		_, err := bob.RemoveCard(0)
		require.NoError(t, err)
	}
	winner, ok := g.PlayerWon()
	require.True(t, ok)
	assert.Equal(t, 1, winner)
}

func TestGame_PileTargets(t *testing.T) {
	g := newTestGame(t, nil)

	c := cc(9, card.Diamond)
	require.NoError(t, g.PushCardTo(event.HandTarget(2), c))
	chloe, err := g.Player(2)
	require.NoError(t, err)
	assert.Equal(t, []card.Card{c}, chloe.Hand())

	got, err := g.RemoveCardFrom(event.HandTarget(2), 0)
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Zero(t, chloe.HandLen())

	require.NoError(t, g.PushCardTo(event.StackTarget(2), c))
	discard, err := g.Stack(2)
	require.NoError(t, err)
	assert.Equal(t, 1, discard.Len())

	err = g.PushCardTo(event.StackTarget(9), c)
	assert.Equal(t, ErrCodeInvalidStackIndex, CodeOf(err))
}

func TestGame_SetDealer(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.SetDealer(2))
	assert.Equal(t, 2, g.Dealer())

	err := g.SetDealer(7)
	assert.Equal(t, ErrCodeInvalidPlayerIndex, CodeOf(err))
}

func TestGame_CardEffectsLookup(t *testing.T) {
	table := effect.NewTable()
	table.Add(effect.Key{Value: card.Number(8)},
		effect.TurnChange{Change: turn.Update{Updater: turn.Step(2)}})
	g := newTestGame(t, nil, WithEffects(table))

	effs := g.CardEffects(cc(8, card.Spade))
	require.Len(t, effs, 1)
	assert.IsType(t, effect.TurnChange{}, effs[0])
	assert.Empty(t, g.CardEffects(cc(9, card.Spade)))
}
