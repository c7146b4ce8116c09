package engine

import (
	"github.com/roach88/mao/internal/effect"
	"github.com/roach88/mao/internal/event"
)

const (
	forgotSay = "You forget to say something"
	forgotDo  = "You forget to do something"
)

// onTurnEnds finalizes the turn the given seat is closing, before the
// tracker moves on. wrong marks the interaction that ends the turn as
// refused, in which case its log entry never counted.
//
// The closed turn is folded out of the log and dispatched as one
// turn-ended occurrence through the pipeline. If the modules raise
// violations for it, those settle the close. Otherwise the previous
// player's played cards are held against the effect table: every
// phrase a card demands must appear in one of that player's recorded
// says, and every demanded physical action must have been performed by
// them, each miss costing exactly one forgot penalty. The checks are
// skipped entirely before anyone has completed a turn.
func (g *Game) onTurnEnds(closing int, wrong bool) ([]Violation, error) {
	payload := g.log.closeTurn(closing, wrong)
	if len(payload) == 0 {
		return nil, nil
	}
	occ := event.TurnEnded{Events: payload}
	verdicts, err := g.Dispatch(occ)
	if err != nil {
		return nil, err
	}
	violations, err := g.Resolve(closing, occ, verdicts)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return violations, nil
	}

	prev := g.previous
	if prev < 0 || prev >= len(g.players) {
		return nil, nil
	}
	pseudo := g.players[prev].Pseudo()

	var forgot []Violation
	for _, entry := range payload {
		played, ok := entry.(event.PlayedCard)
		if !ok {
			continue
		}
		var says []string
		for _, sub := range payload {
			if said, ok := sub.(event.Said); ok && said.Player == played.Player {
				says = append(says, said.Message)
			}
		}
		for _, eff := range g.effects.Lookup(played.Card) {
			switch e := eff.(type) {
			case effect.Say:
				for _, phrase := range e {
					if !g.effects.PhraseSaid(phrase, says) {
						forgot = append(forgot, Violation{
							Kind:    ViolationForgot,
							Rule:    pseudo,
							Message: forgotSay,
							Player:  prev,
						})
						break
					}
				}
			case effect.Physical:
				done := false
				for _, sub := range payload {
					if did, ok := sub.(event.DidPhysical); ok &&
						did.Player == played.Player && did.Name == string(e) {
						done = true
						break
					}
				}
				if !done {
					forgot = append(forgot, Violation{
						Kind:    ViolationForgot,
						Rule:    pseudo,
						Message: forgotDo,
						Player:  prev,
					})
				}
			}
		}
	}
	for _, v := range forgot {
		if err := g.punish(v); err != nil {
			return nil, err
		}
	}
	return forgot, nil
}
