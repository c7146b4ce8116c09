package engine

import (
	"github.com/roach88/mao/internal/event"
	"github.com/roach88/mao/internal/turn"
)

// Dispatch pushes an occurrence through every active rule module in
// activation order and returns their verdicts. Recordable occurrences
// are appended to the turn log and journaled before any module sees
// them. A module error aborts the whole dispatch.
func (g *Game) Dispatch(occ event.Occurrence) ([]Verdict, error) {
	if event.Recordable(occ) {
		g.log.push(occ)
		if err := g.record(occ); err != nil {
			return nil, err
		}
	}
	verdicts := make([]Verdict, 0, len(g.activated))
	for _, id := range g.activated {
		v, err := g.available[id].OnEvent(g, occ)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

func (g *Game) record(occ event.Occurrence) error {
	if g.journal == nil {
		return nil
	}
	return g.journal.RecordOccurrence(g.matchToken, g.clock.Next(), occ)
}

func (g *Game) recordViolation(v Violation) error {
	if g.journal == nil {
		return nil
	}
	return g.journal.RecordViolation(g.matchToken, g.clock.Next(), v)
}

// allIgnored reports whether every module shrugged.
func allIgnored(verdicts []Verdict) bool {
	for _, v := range verdicts {
		if _, ok := v.Kind.(Ignored); !ok {
			return false
		}
	}
	return true
}

// Resolve settles one dispatch's verdicts against the table.
//
// When every module ignored the occurrence it returns (nil, nil) and
// the caller applies whatever the occurrence kind does by default.
// Otherwise the verdicts are partitioned: disallows and forgets become
// violations and are penalized on the spot, while override and
// before/after hooks are deferred. Modules that declared a cross-rule
// callback then get a second look at the deferred list; their own
// additions only land once every callback has run, so no callback sees
// another's answer. Finally the deferred work executes: before hooks
// in collection order, then the turn movement (the overriding modules'
// hooks when any override was deferred, the occurrence's default
// movement otherwise), then after hooks.
//
// player is the seat the occurrence is attributed to; it takes the
// penalties and anchors the default turn movement.
func (g *Game) Resolve(player int, occ event.Occurrence, verdicts []Verdict) ([]Violation, error) {
	if allIgnored(verdicts) {
		return nil, nil
	}

	var violations []Violation
	var deferred []VerdictKind
	for _, v := range verdicts {
		switch k := v.Kind.(type) {
		case Disallow:
			viol := Violation{Kind: ViolationDisallowed, Rule: k.Rule, Message: k.Message, Player: player, penalty: k.Penalty}
			if err := g.punish(viol); err != nil {
				return nil, err
			}
			violations = append(violations, viol)
		case ForgotSomething:
			viol := Violation{Kind: ViolationForgot, Rule: k.Rule, Message: k.Message, Player: player, penalty: k.Penalty}
			if err := g.punish(viol); err != nil {
				return nil, err
			}
			violations = append(violations, viol)
		case OverrideBasicRule, ExecuteBeforeTurnChange, ExecuteAfterTurnChange:
			deferred = append(deferred, v.Kind)
		}
	}

	var added []Verdict
	for _, v := range verdicts {
		if v.Callback == nil {
			continue
		}
		res, err := v.Callback(g, occ, deferred)
		if err != nil {
			return nil, err
		}
		added = append(added, res)
	}
	for _, v := range added {
		switch v.Kind.(type) {
		case OverrideBasicRule, ExecuteBeforeTurnChange, ExecuteAfterTurnChange:
			deferred = append(deferred, v.Kind)
		}
		// A callback cannot veto another module's verdict, so
		// violations raised on the second pass are dropped.
	}

	overridden := false
	for _, k := range deferred {
		if _, ok := k.(OverrideBasicRule); ok {
			overridden = true
			break
		}
	}
	for _, k := range deferred {
		if b, ok := k.(ExecuteBeforeTurnChange); ok && b.Hook != nil {
			if err := b.Hook(g, player); err != nil {
				return nil, err
			}
		}
	}
	if overridden {
		for _, k := range deferred {
			if o, ok := k.(OverrideBasicRule); ok && o.Hook != nil {
				if err := o.Hook(g, player); err != nil {
					return nil, err
				}
			}
		}
	} else if err := g.nextPlayer(player, occ, false); err != nil {
		return nil, err
	}
	for _, k := range deferred {
		if a, ok := k.(ExecuteAfterTurnChange); ok && a.Hook != nil {
			if err := a.Hook(g, player); err != nil {
				return nil, err
			}
		}
	}
	return violations, nil
}

// Punish records a violation raised outside the verdict pipeline, for
// example by a rule module's own interaction handler, and applies its
// penalty.
func (g *Game) Punish(v Violation) error {
	return g.punish(v)
}

// punish records a violation and applies its penalty, the verdict's
// own hook when it brought one, the default draw-one otherwise.
func (g *Game) punish(v Violation) error {
	if err := g.recordViolation(v); err != nil {
		return err
	}
	g.logger.Info("violation",
		"kind", string(v.Kind),
		"rule", v.Rule,
		"player", v.Player,
		"message", v.Message)
	if v.penalty != nil {
		return v.penalty(g, v.Player)
	}
	return g.Penalize(v.Player)
}

// Penalize makes the player draw one card, unless an active module
// claims the penalty occurrence for itself.
func (g *Game) Penalize(player int) error {
	verdicts, err := g.Dispatch(event.Penalty{Player: player})
	if err != nil {
		return err
	}
	if !allIgnored(verdicts) {
		return nil
	}
	return g.defaultPenalty(player)
}

// defaultPenalty hands the player one card off a drawable stack.
func (g *Game) defaultPenalty(player int) error {
	p, err := g.Player(player)
	if err != nil {
		return err
	}
	cards, err := g.drawMultiple(1)
	if err != nil {
		return err
	}
	p.AddCard(cards[0])
	return nil
}

// UpdateTurn applies one turn change against the current seat count.
func (g *Game) UpdateTurn(c turn.Change) {
	g.tracker.Apply(c, len(g.players))
}

// nextPlayer applies the turn movement an occurrence carries by
// default. Plays move by the played card's turn-change effects (or one
// seat forward when it has none); draws move one seat forward. The
// closing seat is remembered as the previous player before the tracker
// moves, except for a play that was refused and penalized, which moves
// the turn along without crediting the seat with a completed turn.
// Occurrences by a seat whose turn it is not never move the tracker.
func (g *Game) nextPlayer(player int, occ event.Occurrence, tookPenalty bool) error {
	switch o := occ.(type) {
	case event.PlayedCard:
		if player != g.tracker.Player {
			return nil
		}
		if tookPenalty {
			g.UpdateTurn(turn.DefaultChange())
			return nil
		}
		g.previous = g.tracker.Player
		changes := g.effects.TurnChanges(o.Card)
		if len(changes) == 0 {
			g.UpdateTurn(turn.DefaultChange())
			return nil
		}
		for _, c := range changes {
			g.UpdateTurn(c)
		}
	case event.DrewCard:
		if player != g.tracker.Player {
			return nil
		}
		g.previous = g.tracker.Player
		g.UpdateTurn(turn.DefaultChange())
	}
	return nil
}
