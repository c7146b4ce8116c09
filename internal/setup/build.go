package setup

import (
	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/effect"
	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/rule"
)

// Build composes a table from a loaded setup: rule modules from the
// rules directory, the effect table from the TOML file, a dealer seeded
// for the declared shuffle, and the physical actions on offer. Extra
// options are applied after the setup's own, so callers can still
// attach a journal or swap the logger and token generator.
//
// No cards are dealt; call InitNewGame with the setup's hand size when
// the table should open with hands.
func Build(s *GameSetup, opts ...engine.GameOption) (*engine.Game, error) {
	var rules []engine.Rule
	if s.RulesDir != "" {
		loaded, err := rule.LoadDir(s.RulesDir)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	options := []engine.GameOption{
		engine.WithDealer(card.NewDealer(s.Seed)),
		engine.WithCanPlayOnNewStack(s.CanPlayOnNewStack),
	}
	if s.EffectsFile != "" {
		table, err := effect.LoadFile(s.EffectsFile)
		if err != nil {
			return nil, err
		}
		options = append(options, engine.WithEffects(table))
	}
	if len(s.PhysicalActions) > 0 {
		options = append(options, engine.WithPhysicalActions(s.PhysicalActions...))
	}
	options = append(options, opts...)

	g, err := engine.NewGame(s.Players, rules, options...)
	if err != nil {
		return nil, err
	}
	if err := g.SetDealer(s.Dealer); err != nil {
		return nil, err
	}
	return g, nil
}
