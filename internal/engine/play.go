package engine

import (
	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/event"
)

// BasicRules names the table's own legality rules in violations.
const BasicRules = "Basic Rules"

// Interact feeds one interaction step into the automaton on behalf of
// player. When the step completes a chain, its handler runs and the
// violations it settled on are returned alongside the result.
func (g *Game) Interact(player int, step Step) (ActionResult, []Violation, error) {
	res := g.automaton.OnAction(step)
	if r, ok := res.(Resolved); ok {
		violations, err := r.Handler(g, player, r.Steps)
		return res, violations, err
	}
	return res, nil, nil
}

// InteractIndexed answers an earlier Candidates result by picking the
// option at index and replaying the step against it.
func (g *Game) InteractIndexed(player int, step Step, index int) (ActionResult, []Violation, error) {
	res, err := g.automaton.OnActionIndexed(step, index)
	if err != nil {
		return nil, nil, err
	}
	if r, ok := res.(Resolved); ok {
		violations, err := r.Handler(g, player, r.Steps)
		return res, violations, err
	}
	return res, nil, nil
}

// playInteraction completes the select-card, select-playable-stack
// chain. No stack payload means the player wants a fresh stack.
func playInteraction(g *Game, player int, steps []Step) ([]Violation, error) {
	if len(steps) != 2 || steps[0].Token != SelectCard || steps[1].Token != SelectPlayableStack {
		return nil, NewMalformedInteraction("play expects a selected card then a playable stack")
	}
	cardIndex, err := steps[0].IndexPayload()
	if err != nil {
		return nil, err
	}
	stackIndex := event.NoStack
	if steps[1].Payload != nil {
		if stackIndex, err = steps[1].IndexPayload(); err != nil {
			return nil, err
		}
	}
	return g.PlayCard(player, cardIndex, stackIndex)
}

// drawInteraction completes the select-drawable-stack chain. No stack
// payload means the first drawable stack.
func drawInteraction(g *Game, player int, steps []Step) ([]Violation, error) {
	if len(steps) != 1 || steps[0].Token != SelectDrawableStack {
		return nil, NewMalformedInteraction("draw expects a drawable stack")
	}
	stackIndex := event.NoStack
	if steps[0].Payload != nil {
		var err error
		if stackIndex, err = steps[0].IndexPayload(); err != nil {
			return nil, err
		}
	}
	return g.DrawCard(player, stackIndex)
}

// physicalInteraction completes the select-player, do-action chain.
func physicalInteraction(g *Game, player int, steps []Step) ([]Violation, error) {
	if len(steps) != 2 || steps[0].Token != SelectPlayer || steps[1].Token != DoAction {
		return nil, NewMalformedInteraction("physical action expects a player then an action name")
	}
	name, err := steps[1].NamePayload()
	if err != nil {
		return nil, err
	}
	return g.PerformPhysical(player, name)
}

// canPlay checks a play against the table's own legality: it must be
// the player's turn, and the card must match the destination stack's
// top card in value or in color. An empty destination, or a fresh
// stack, accepts anything.
func (g *Game) canPlay(player int, c card.Card, stackIndex int) (bool, string) {
	if player != g.tracker.Player {
		return false, "It is not your turn"
	}
	if stackIndex != event.NoStack {
		if top, ok := g.stacks[stackIndex].Top(); ok {
			if c.Value != top.Value && c.Color() != top.Color() {
				return false, "You cannot play this card " + c.String()
			}
		}
	}
	return true, ""
}

// PlayCard plays the card at cardIndex from the player's hand onto the
// stack at stackIndex, or onto a fresh stack when stackIndex is
// event.NoStack.
//
// The occurrence goes to the modules first. If any of them answers,
// their resolution settles the turn movement: violations close the
// turn as refused, an approval closes it cleanly and the card changes
// hands without the table's own legality check. When every module
// ignores the play, the table's legality applies: a wrong turn or a
// mismatched card costs one penalty and the turn passes on; a legal
// play closes the turn, moves the card, and advances per the card's
// turn-change effects.
func (g *Game) PlayCard(player, cardIndex, stackIndex int) ([]Violation, error) {
	p, err := g.Player(player)
	if err != nil {
		return nil, err
	}
	c, err := p.CardAt(cardIndex)
	if err != nil {
		return nil, err
	}
	if stackIndex != event.NoStack {
		if _, err := g.Stack(stackIndex); err != nil {
			return nil, err
		}
	}
	occ := event.PlayedCard{Player: player, CardIndex: cardIndex, Card: c, Stack: stackIndex}
	verdicts, err := g.Dispatch(occ)
	if err != nil {
		return nil, err
	}

	if !allIgnored(verdicts) {
		violations, err := g.Resolve(player, occ, verdicts)
		if err != nil {
			return nil, err
		}
		if len(violations) > 0 {
			more, err := g.onTurnEnds(player, true)
			if err != nil {
				return nil, err
			}
			return append(violations, more...), nil
		}
		// The modules approved the play and the resolution already
		// moved the turn; the card still changes hands.
		more, err := g.onTurnEnds(player, false)
		if err != nil {
			return nil, err
		}
		if err := g.placeCard(player, cardIndex, stackIndex, c); err != nil {
			return nil, err
		}
		return more, nil
	}

	if ok, msg := g.canPlay(player, c, stackIndex); !ok {
		violations, err := g.onTurnEnds(player, true)
		if err != nil {
			return nil, err
		}
		viol := Violation{Kind: ViolationDisallowed, Rule: BasicRules, Message: msg, Player: player}
		if err := g.punish(viol); err != nil {
			return nil, err
		}
		if err := g.nextPlayer(player, occ, true); err != nil {
			return nil, err
		}
		return append(violations, viol), nil
	}

	violations, err := g.onTurnEnds(player, false)
	if err != nil {
		return nil, err
	}
	if err := g.placeCard(player, cardIndex, stackIndex, c); err != nil {
		return nil, err
	}
	if err := g.nextPlayer(player, occ, false); err != nil {
		return nil, err
	}
	return violations, nil
}

// placeCard moves a played card from the hand to its destination.
func (g *Game) placeCard(player, cardIndex, stackIndex int, c card.Card) error {
	if stackIndex != event.NoStack {
		g.stacks[stackIndex].AddCard(c)
	} else {
		g.newPlayedStack([]card.Card{c})
	}
	_, err := g.players[player].RemoveCard(cardIndex)
	return err
}

// DrawCard draws the top card of the stack at stackIndex for the
// player; event.NoStack picks the first drawable stack with cards
// left, refilling from the other piles when everything ran out.
//
// Drawing on one's own turn ends it. When every module ignores the
// draw the card lands in the player's hand and the turn passes on;
// otherwise the card goes back on the pile and the modules' resolution
// decides what the draw meant.
func (g *Game) DrawCard(player, stackIndex int) ([]Violation, error) {
	stackIndex, err := g.nonEmptyDrawable(stackIndex)
	if err != nil {
		return nil, err
	}
	if _, err := g.Player(player); err != nil {
		return nil, err
	}
	st := g.stacks[stackIndex]
	c, _ := st.Draw()

	occ := event.DrewCard{Player: player, CardIndex: 0, Card: c, Stack: stackIndex}
	verdicts, err := g.Dispatch(occ)
	if err != nil {
		return nil, err
	}

	var turnEnds []Violation
	if player == g.tracker.Player {
		if turnEnds, err = g.onTurnEnds(player, true); err != nil {
			return nil, err
		}
	}

	if allIgnored(verdicts) {
		if player == g.tracker.Player {
			if err := g.nextPlayer(player, occ, false); err != nil {
				return nil, err
			}
		}
		g.players[player].AddCard(c)
		return turnEnds, nil
	}

	st.AddCard(c)
	violations, err := g.Resolve(player, occ, verdicts)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return append(violations, turnEnds...), nil
	}
	return turnEnds, nil
}

// GiveUpTurn lets the seat decline to play, drawing one card instead.
func (g *Game) GiveUpTurn(player int) ([]Violation, error) {
	return g.DrawCard(player, event.NoStack)
}

// SayAction records the player's words and lets the modules answer
// them.
func (g *Game) SayAction(player int, message string) ([]Violation, error) {
	if _, err := g.Player(player); err != nil {
		return nil, err
	}
	occ := event.Said{Player: player, Message: message}
	verdicts, err := g.Dispatch(occ)
	if err != nil {
		return nil, err
	}
	return g.Resolve(player, occ, verdicts)
}

// PerformPhysical records a declared gesture by the player and lets
// the modules answer it.
func (g *Game) PerformPhysical(player int, name string) ([]Violation, error) {
	if _, err := g.Player(player); err != nil {
		return nil, err
	}
	occ := event.DidPhysical{Player: player, Name: name}
	verdicts, err := g.Dispatch(occ)
	if err != nil {
		return nil, err
	}
	return g.Resolve(player, occ, verdicts)
}

// nonEmptyDrawable resolves which drawable stack a draw should come
// from, refilling once from the other piles when the choice ran out.
func (g *Game) nonEmptyDrawable(stackIndex int) (int, error) {
	if stackIndex != event.NoStack {
		st, err := g.Stack(stackIndex)
		if err != nil {
			return 0, err
		}
		if st.Empty() {
			if err := g.refillDrawableStacks(stackIndex, true); err != nil {
				return 0, err
			}
			if st.Empty() {
				return 0, NewNotEnoughCards()
			}
		}
		return stackIndex, nil
	}
	if i, ok := g.firstStocked(); ok {
		return i, nil
	}
	if err := g.refillDrawableStacks(event.NoStack, true); err != nil {
		return 0, err
	}
	if i, ok := g.firstStocked(); ok {
		return i, nil
	}
	return 0, &GameError{Code: ErrCodeNoStack, Message: "no drawable stack has cards left"}
}

// firstStocked returns the first drawable stack with cards on it.
func (g *Game) firstStocked() (int, bool) {
	for _, i := range g.StacksOf(Drawable) {
		if !g.stacks[i].Empty() {
			return i, true
		}
	}
	return 0, false
}

// refillDrawableStacks collapses every playable stack except its top
// card, and every discardable stack entirely, into the drawable stack
// at target (event.NoStack means the first one). With checkRules set
// the stack-ran-out occurrence goes to the modules first, and any
// module answering it claims the refill for itself.
func (g *Game) refillDrawableStacks(target int, checkRules bool) error {
	if target == event.NoStack {
		ds := g.StacksOf(Drawable)
		if len(ds) == 0 {
			return &GameError{Code: ErrCodeNoStack, Message: "no drawable stack on the table"}
		}
		target = ds[0]
	}
	if checkRules {
		verdicts, err := g.Dispatch(event.StackRanOut{Target: event.StackTarget(target)})
		if err != nil {
			return err
		}
		if !allIgnored(verdicts) {
			return nil
		}
	}

	var cards []card.Card
	for _, i := range g.StacksOf(Playable, Discardable) {
		s := g.stacks[i]
		if s.Is(Playable) {
			if top, ok := s.Draw(); ok {
				cards = append(cards, s.take()...)
				s.AddCard(top)
			}
		} else {
			cards = append(cards, s.take()...)
		}
	}
	st, err := g.Stack(target)
	if err != nil {
		return err
	}
	for _, c := range cards {
		st.AddCard(c)
	}
	return nil
}

// drawMultiple takes n cards off the drawable stacks, topmost first
// per stack, spilling into the next stack as each runs dry. When
// everything is empty it refills once from the other piles; failing
// that the table is genuinely out of cards. Each pass ends with a
// quiet refill so the draw piles stay stocked.
func (g *Game) drawMultiple(n int) ([]card.Card, error) {
	cards := make([]card.Card, 0, n)
	refilled := false
	for n > 0 {
		ds := g.StacksOf(Drawable)
		stocked := false
		for _, i := range ds {
			if !g.stacks[i].Empty() {
				stocked = true
				break
			}
		}
		if !stocked {
			if refilled {
				return nil, NewNotEnoughCards()
			}
			if err := g.refillDrawableStacks(event.NoStack, true); err != nil {
				return nil, err
			}
			refilled = true
			continue
		}
		for _, i := range ds {
			s := g.stacks[i]
			if s.Len() >= n {
				cards = append(cards, s.takeTop(n)...)
				n = 0
				break
			}
			n -= s.Len()
			cards = append(cards, s.take()...)
		}
		if err := g.refillDrawableStacks(event.NoStack, false); err != nil {
			return nil, err
		}
	}
	return cards, nil
}
