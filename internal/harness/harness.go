package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/event"
	"github.com/roach88/mao/internal/setup"
	"github.com/roach88/mao/internal/store"
)

// Harness holds one scenario's table and its journal.
type Harness struct {
	game   *engine.Game
	store  *store.Store
	token  string
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh in-memory journal and its own table, so
// runs are isolated and deterministic: a seeded dealer, a fixed match
// token, and logs discarded. The flow executes step by step with
// expect validation, then the scenario's assertions run against the
// final table.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open scenario journal: %w", err)
	}
	defer st.Close()

	h, err := newHarness(scenario, st)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	if err := h.executeFlow(scenario.Flow, result); err != nil {
		return nil, err
	}

	result.Final = h.captureFinal()
	journal, err := h.readJournal()
	if err != nil {
		return nil, err
	}
	result.Journal = journal

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.game) {
		result.AddError(msg)
	}
	return result, nil
}

// newHarness opens the table: build from the setup block, deal, then
// switch on the requested modules.
func newHarness(scenario *Scenario, st *store.Store) (*Harness, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	token := scenario.Setup.matchToken()

	gs := &setup.GameSetup{
		Players:           scenario.Setup.Players,
		Dealer:            scenario.Setup.Dealer,
		HandSize:          scenario.Setup.handSize(),
		Seed:              scenario.Setup.seed(),
		RulesDir:          scenario.Setup.Rules,
		EffectsFile:       scenario.Setup.Effects,
		PhysicalActions:   scenario.Setup.PhysicalActions,
		CanPlayOnNewStack: scenario.Setup.CanPlayOnNewStack,
	}
	g, err := setup.Build(gs,
		engine.WithLogger(logger),
		engine.WithMatchTokens(engine.NewFixedGenerator(token)),
		engine.WithJournal(st),
	)
	if err != nil {
		return nil, fmt.Errorf("build scenario table: %w", err)
	}
	if err := g.InitNewGame(gs.HandSize); err != nil {
		return nil, fmt.Errorf("deal scenario table: %w", err)
	}

	if err := activateModules(g, scenario.Setup.Activate); err != nil {
		return nil, err
	}

	return &Harness{game: g, store: st, token: token, logger: logger}, nil
}

// activateModules switches on rule modules by name.
func activateModules(g *engine.Game, names []string) error {
	available := g.RuleNames()
	for _, want := range names {
		index := -1
		for i, name := range available {
			if name == want {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("activate: no rule module named %q (loaded: %v)", want, available)
		}
		if err := g.ActivateRule(index); err != nil {
			return fmt.Errorf("activate %q: %w", want, err)
		}
	}
	return nil
}

// executeFlow runs the steps in order. Violations are part of a
// scenario's normal output, not errors; only a broken step (bad seat,
// bad index) aborts the run.
func (h *Harness) executeFlow(flow []FlowStep, result *Result) error {
	for i, step := range flow {
		violations, err := h.invoke(step)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Action, err)
		}

		result.Violations = append(result.Violations, violations...)
		result.addTrace(i, step, violations)
		h.logger.Info("flow step done",
			"step", i,
			"action", step.Action,
			"player", step.Player,
			"violations", len(violations),
		)

		if step.Expect == nil {
			continue
		}
		if len(violations) != step.Expect.Violations {
			result.AddError(fmt.Sprintf(
				"flow step %d (%s): violations = %d, expected %d",
				i, step.Action, len(violations), step.Expect.Violations,
			))
		}
		for _, want := range step.Expect.Contains {
			if !violationsContain(violations, want) {
				result.AddError(fmt.Sprintf(
					"flow step %d (%s): no violation contains %q",
					i, step.Action, want,
				))
			}
		}
	}
	return nil
}

// invoke dispatches one step to the table.
func (h *Harness) invoke(step FlowStep) ([]engine.Violation, error) {
	switch step.Action {
	case ActionPlay:
		return h.game.PlayCard(step.Player, step.Card, stackOrDefault(step.Stack))
	case ActionDraw:
		return h.game.DrawCard(step.Player, stackOrDefault(step.Stack))
	case ActionSay:
		return h.game.SayAction(step.Player, step.Message)
	case ActionPhysical:
		return h.game.PerformPhysical(step.Player, step.Name)
	case ActionGiveUp:
		return h.game.GiveUpTurn(step.Player)
	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}
}

func stackOrDefault(stack *int) int {
	if stack == nil {
		return event.NoStack
	}
	return *stack
}

func violationsContain(violations []engine.Violation, substr string) bool {
	for _, v := range violations {
		if strings.Contains(v.Message, substr) {
			return true
		}
	}
	return false
}

// captureFinal snapshots the table after the flow.
func (h *Harness) captureFinal() FinalState {
	hands := make([]int, 0, len(h.game.Players()))
	for _, p := range h.game.Players() {
		hands = append(hands, p.HandLen())
	}
	return FinalState{
		CurrentPlayer:  h.game.CurrentPlayer(),
		PreviousPlayer: h.game.PreviousPlayer(),
		Direction:      h.game.Direction(),
		HandSizes:      hands,
		Stacks:         len(h.game.Stacks()),
		LogLength:      len(h.game.TurnLog()),
	}
}

// readJournal reads the match's timeline back out of the store.
func (h *Harness) readJournal() ([]JournalLine, error) {
	entries, err := h.store.Timeline(context.Background(), h.token, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("read scenario journal: %w", err)
	}
	lines := make([]JournalLine, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.Occurrence != nil:
			lines = append(lines, JournalLine{
				Seq:    e.Occurrence.Seq,
				Kind:   e.Occurrence.Kind,
				Player: e.Occurrence.Player,
				Detail: e.Occurrence.Payload,
			})
		case e.Violation != nil:
			lines = append(lines, JournalLine{
				Seq:    e.Violation.Seq,
				Kind:   "violation",
				Player: e.Violation.Player,
				Detail: e.Violation.Rule + ": " + e.Violation.Message,
			})
		}
	}
	return lines, nil
}
