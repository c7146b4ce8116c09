package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handlerOne(*Game, int, []Step) ([]Violation, error) { return nil, nil }
func handlerTwo(*Game, int, []Step) ([]Violation, error) { return nil, nil }

func playPath() Path {
	return Path{Tokens: []Token{SelectCard, SelectPlayableStack}, Handler: handlerOne}
}

func drawPath() Path {
	return Path{Tokens: []Token{SelectDrawableStack}, Handler: handlerTwo}
}

func rulePath() Path {
	return Path{Tokens: []Token{SelectCard, DoAction}, Rule: "seven_spice", Handler: handlerTwo}
}

func TestAutomaton_InsertRejectsMalformedPaths(t *testing.T) {
	a, err := NewAutomaton()
	require.NoError(t, err)

	err = a.Insert(Path{Handler: handlerOne})
	assert.Equal(t, ErrCodeMalformedInteraction, CodeOf(err), "empty token chain")

	err = a.Insert(Path{Tokens: []Token{SelectCard}})
	assert.Equal(t, ErrCodeMalformedInteraction, CodeOf(err), "missing handler")
}

func TestAutomaton_InsertRejectsDuplicateLeaf(t *testing.T) {
	a, err := NewAutomaton(playPath())
	require.NoError(t, err)

	err = a.Insert(playPath())
	assert.Equal(t, ErrCodeDuplicatePath, CodeOf(err))

	// Same chain owned by another module is a distinct leaf.
	other := playPath()
	other.Rule = "seven_spice"
	assert.NoError(t, a.Insert(other))
}

func TestAutomaton_ResolveCarriesPayloads(t *testing.T) {
	a, err := NewAutomaton(playPath(), drawPath())
	require.NoError(t, err)

	res := a.OnAction(Step{Token: SelectCard, Payload: Index(3)})
	assert.Equal(t, Advanced{}, res)

	res = a.OnAction(Step{Token: SelectPlayableStack, Payload: Index(1)})
	resolved, ok := res.(Resolved)
	require.True(t, ok, "second step should resolve the chain")
	assert.Equal(t, []Step{
		{Token: SelectCard, Payload: Index(3)},
		{Token: SelectPlayableStack, Payload: Index(1)},
	}, resolved.Steps)
	assert.Empty(t, resolved.Rule)

	// Resolution puts the cursor back at the root.
	assert.Empty(t, a.ExecutedSteps())
	assert.Equal(t, Advanced{}, a.OnAction(Step{Token: SelectCard, Payload: Index(0)}))
}

func TestAutomaton_NoMatchLeavesCursor(t *testing.T) {
	a, err := NewAutomaton(playPath())
	require.NoError(t, err)

	require.Equal(t, Advanced{}, a.OnAction(Step{Token: SelectCard, Payload: Index(0)}))
	assert.Equal(t, NoMatch{}, a.OnAction(Step{Token: SelectDrawableStack}))
	assert.Len(t, a.ExecutedSteps(), 1, "a refused step must not move the cursor")
}

func TestAutomaton_CancelLast(t *testing.T) {
	a, err := NewAutomaton(playPath())
	require.NoError(t, err)

	_, ok := a.CancelLast()
	assert.False(t, ok, "nothing to undo at the root")

	require.Equal(t, Advanced{}, a.OnAction(Step{Token: SelectCard, Payload: Index(2)}))
	undone, ok := a.CancelLast()
	require.True(t, ok)
	assert.Equal(t, Step{Token: SelectCard, Payload: Index(2)}, undone)
	assert.Empty(t, a.ExecutedSteps())
}

func TestAutomaton_CandidatesPutBranchLast(t *testing.T) {
	// A leaf and a branch both answer to select_drawable_stack.
	chain := Path{
		Tokens:  []Token{SelectDrawableStack, DoAction},
		Rule:    "seven_spice",
		Handler: handlerOne,
	}
	a, err := NewAutomaton(drawPath(), chain)
	require.NoError(t, err)

	res := a.OnAction(Step{Token: SelectDrawableStack})
	cands, ok := res.(Candidates)
	require.True(t, ok)
	require.Len(t, cands.Options, 2)
	assert.True(t, cands.Options[0].Leaf, "leaf candidates come first")
	assert.False(t, cands.Options[1].Leaf, "the branch is pushed to the back")
}

func TestAutomaton_OnActionIndexed(t *testing.T) {
	chain := Path{
		Tokens:  []Token{SelectDrawableStack, DoAction},
		Rule:    "seven_spice",
		Handler: handlerOne,
	}
	a, err := NewAutomaton(drawPath(), chain)
	require.NoError(t, err)

	step := Step{Token: SelectDrawableStack, Payload: Index(0)}
	_, ok := a.OnAction(step).(Candidates)
	require.True(t, ok)

	t.Run("out of range", func(t *testing.T) {
		_, err := a.OnActionIndexed(step, 5)
		require.Error(t, err)
		assert.Equal(t, ErrCodeBadChoice, CodeOf(err))
		var gameErr *GameError
		require.ErrorAs(t, err, &gameErr)
		assert.Equal(t, 5, gameErr.Index)
		assert.Equal(t, 2, gameErr.Length)
	})

	t.Run("not ambiguous", func(t *testing.T) {
		_, err := a.OnActionIndexed(Step{Token: DoAction}, 0)
		assert.Equal(t, ErrCodeMalformedInteraction, CodeOf(err))
	})

	t.Run("resolving a leaf resets the cursor", func(t *testing.T) {
		res, err := a.OnActionIndexed(step, 0)
		require.NoError(t, err)
		resolved, ok := res.(Resolved)
		require.True(t, ok)
		assert.Equal(t, []Step{step}, resolved.Steps)
		assert.Empty(t, a.ExecutedSteps())
	})

	t.Run("picking the branch advances", func(t *testing.T) {
		res, err := a.OnActionIndexed(step, 1)
		require.NoError(t, err)
		assert.Equal(t, Advanced{}, res)
		assert.Equal(t, []Step{step}, a.ExecutedSteps())

		res = a.OnAction(Step{Token: DoAction, Payload: Name("knock")})
		resolved, ok := res.(Resolved)
		require.True(t, ok)
		assert.Equal(t, "seven_spice", resolved.Rule)
		assert.Equal(t, []Step{step, {Token: DoAction, Payload: Name("knock")}}, resolved.Steps)
	})
}

func TestAutomaton_PathExists(t *testing.T) {
	a, err := NewAutomaton(playPath(), rulePath())
	require.NoError(t, err)

	assert.True(t, a.PathExists([]Token{SelectCard, SelectPlayableStack}))
	assert.True(t, a.PathExists([]Token{SelectCard, DoAction}))
	assert.True(t, a.PathExists([]Token{SelectDrawableStack}), "single-step chains need no branch")
	assert.False(t, a.PathExists([]Token{SelectPlayer, DoAction}))
}

func TestAutomaton_EqualIgnoresInsertionOrder(t *testing.T) {
	first, err := NewAutomaton(playPath(), drawPath(), rulePath())
	require.NoError(t, err)
	second, err := NewAutomaton(rulePath(), playPath(), drawPath())
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.True(t, second.Equal(first))

	third, err := NewAutomaton(playPath(), drawPath())
	require.NoError(t, err)
	assert.False(t, first.Equal(third))
}

func TestAutomaton_EqualComparesLeafIdentity(t *testing.T) {
	a, err := NewAutomaton(drawPath())
	require.NoError(t, err)
	b, err := NewAutomaton(Path{Tokens: []Token{SelectDrawableStack}, Handler: handlerOne})
	require.NoError(t, err)

	assert.False(t, a.Equal(b), "same shape, different handler")
}

func TestAutomaton_ExtendRemoveRoundTrip(t *testing.T) {
	base, err := NewAutomaton(playPath(), drawPath())
	require.NoError(t, err)
	grown, err := NewAutomaton(playPath(), drawPath())
	require.NoError(t, err)

	added := []Path{
		rulePath(),
		{Tokens: []Token{SelectPlayer, DoAction}, Rule: "seven_spice", Handler: handlerOne},
	}
	require.NoError(t, grown.Extend(added))
	require.False(t, grown.Equal(base))

	grown.RemovePaths(added)
	assert.True(t, grown.Equal(base), "removal must restore the original shape")

	// Removing a chain that was never inserted is a quiet no-op.
	grown.RemovePaths([]Path{{Tokens: []Token{SelectRule}, Handler: handlerTwo}})
	assert.True(t, grown.Equal(base))
}

func TestAutomaton_RemoveKeepsSharedBranch(t *testing.T) {
	a, err := NewAutomaton(playPath(), rulePath())
	require.NoError(t, err)

	a.RemovePaths([]Path{rulePath()})

	want, err := NewAutomaton(playPath())
	require.NoError(t, err)
	assert.True(t, a.Equal(want), "the shared select_card branch must survive")

	res := a.OnAction(Step{Token: SelectCard, Payload: Index(0)})
	assert.Equal(t, Advanced{}, res)
}
