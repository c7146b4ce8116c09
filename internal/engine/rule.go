package engine

import (
	"strings"

	"github.com/roach88/mao/internal/effect"
	"github.com/roach88/mao/internal/event"
)

// Version is the rule ABI version. A rule module must report exactly
// this string from its version hook or loading fails.
const Version = "0.3.0"

// Rule is a loaded rule module. Modules are consulted in activation
// order on every occurrence; their verdicts drive the resolution
// pipeline (see Game.Dispatch).
//
// OnEvent must be total: a module that has no opinion on an occurrence
// returns Ignore(). Returning an error aborts the whole dispatch.
type Rule interface {
	Data() RuleData
	OnEvent(g *Game, occ event.Occurrence) (Verdict, error)
}

// CardEffectRemover is implemented by modules that run custom teardown
// when deactivated. Modules without it only get their tagged
// card-effect entries withdrawn automatically.
type CardEffectRemover interface {
	RemoveCardEffects(g *Game) error
}

// RuleData declares a module's identity and table contributions.
// Paths are merged into the automaton and CardEffects into the effect
// table when the module is activated, and withdrawn when it is
// deactivated.
type RuleData struct {
	Name        string
	Author      string
	Description string
	Paths       []Path
	CardEffects map[effect.Key][]effect.Effect
}

// VerifyRules probes every available module with a verify occurrence
// and aggregates the failures, so one broken module does not mask the
// others. Returns nil when all modules answered.
func (g *Game) VerifyRules() error {
	var failures []string
	for _, r := range g.available {
		if _, err := r.OnEvent(g, event.Verify{}); err != nil {
			failures = append(failures, r.Data().Name+": "+err.Error())
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &GameError{
		Code:    ErrCodeRuleLoad,
		Message: "rule verification failed:\n" + strings.Join(failures, "\n"),
	}
}

// RuleNames lists the available modules in load order.
func (g *Game) RuleNames() []string {
	names := make([]string, len(g.available))
	for i, r := range g.available {
		names[i] = r.Data().Name
	}
	return names
}

// ActivatedRules lists the indices of the active modules in
// activation order.
func (g *Game) ActivatedRules() []int {
	out := make([]int, len(g.activated))
	copy(out, g.activated)
	return out
}

// RuleActive reports whether the module at index is currently active.
func (g *Game) RuleActive(index int) bool {
	for _, id := range g.activated {
		if id == index {
			return true
		}
	}
	return false
}

// ActivateRule switches the module at index on: its automaton paths
// are merged and its card effects added under its name. Activation
// order is consultation order.
func (g *Game) ActivateRule(index int) error {
	if index < 0 || index >= len(g.available) {
		return NewInvalidRuleIndex(index, len(g.available))
	}
	if g.RuleActive(index) {
		return &GameError{
			Code:    ErrCodeRuleAlreadyActive,
			Message: "rule is already active",
			Rule:    g.available[index].Data().Name,
		}
	}
	data := g.available[index].Data()
	if err := g.automaton.Extend(data.Paths); err != nil {
		return err
	}
	for key, effs := range data.CardEffects {
		g.effects.AddFrom(data.Name, key, effs...)
	}
	g.activated = append(g.activated, index)
	g.logger.Info("rule activated", "rule", data.Name)
	return nil
}

// DeactivateRule switches the module at index off, withdrawing its
// automaton paths and card effects. Modules implementing
// CardEffectRemover run their own teardown first.
func (g *Game) DeactivateRule(index int) error {
	if index < 0 || index >= len(g.available) {
		return NewInvalidRuleIndex(index, len(g.available))
	}
	if !g.RuleActive(index) {
		return &GameError{
			Code:    ErrCodeRuleNotActive,
			Message: "rule is not active",
			Rule:    g.available[index].Data().Name,
		}
	}
	rule := g.available[index]
	data := rule.Data()
	if remover, ok := rule.(CardEffectRemover); ok {
		if err := remover.RemoveCardEffects(g); err != nil {
			return err
		}
	}
	g.effects.RemoveFrom(data.Name)
	g.automaton.RemovePaths(data.Paths)
	kept := g.activated[:0]
	for _, id := range g.activated {
		if id != index {
			kept = append(kept, id)
		}
	}
	g.activated = kept
	g.logger.Info("rule deactivated", "rule", data.Name)
	return nil
}
