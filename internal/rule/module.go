package rule

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/event"
)

const (
	// ruleTable is the global holding the table the script returned.
	ruleTable = "__mao_rule"

	// verdictStash is the global ring buffer pinning verdict tables
	// between OnEvent returning and the engine firing their hooks.
	verdictStash = "__mao_verdicts"

	// stashSlots bounds the ring. Dispatches nest only a few levels
	// deep (play, turn end, penalty), so a slot is always recycled
	// long after its verdict went dead.
	stashSlots = 64
)

// Module is one loaded Lua rule. It satisfies engine.Rule and
// engine.CardEffectRemover; the remover is a no-op when the script did
// not declare one.
type Module struct {
	state      *lua.State
	path       string
	data       engine.RuleData
	hasRemover bool
	nextStash  int
}

// Data returns the module's identity and table contributions. The
// returned paths carry the same handler values on every call, so the
// automaton can un-merge exactly what was merged.
func (m *Module) Data() engine.RuleData { return m.data }

// Path returns the file the module was loaded from.
func (m *Module) Path() string { return m.path }

// OnEvent forwards the occurrence to the script's on_event and decodes
// its answer. A missing or nil return means the module has no opinion.
func (m *Module) OnEvent(g *engine.Game, occ event.Occurrence) (engine.Verdict, error) {
	l := m.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(ruleTable)
	l.Field(-1, "on_event")
	pushGame(l, g, m.data.Name)
	pushOccurrence(l, occ)
	if err := l.ProtectedCall(2, 1, 0); err != nil {
		return engine.Verdict{}, fmt.Errorf("rule %s: on_event: %w", m.data.Name, err)
	}
	v, err := m.decodeVerdict(-1)
	if err != nil {
		return engine.Verdict{}, fmt.Errorf("rule %s: %w", m.data.Name, err)
	}
	return v, nil
}

// RemoveCardEffects runs the script's teardown hook, if it has one.
func (m *Module) RemoveCardEffects(g *engine.Game) error {
	if !m.hasRemover {
		return nil
	}
	l := m.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(ruleTable)
	l.Field(-1, "remove_card_effects")
	pushGame(l, g, m.data.Name)
	if err := l.ProtectedCall(1, 0, 0); err != nil {
		return fmt.Errorf("rule %s: remove_card_effects: %w", m.data.Name, err)
	}
	return nil
}

// onInteraction runs the script's on_interaction for a resolved
// automaton chain the module owns. The script may return an array of
// violation tables; each is punished and returned.
func (m *Module) onInteraction(g *engine.Game, player int, steps []engine.Step) ([]engine.Violation, error) {
	l := m.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(ruleTable)
	l.Field(-1, "on_interaction")
	if l.TypeOf(-1) != lua.TypeFunction {
		return nil, fmt.Errorf("rule %s: automaton path resolved but on_interaction is missing", m.data.Name)
	}
	pushGame(l, g, m.data.Name)
	l.PushInteger(player)
	pushSteps(l, steps)
	if err := l.ProtectedCall(3, 1, 0); err != nil {
		return nil, fmt.Errorf("rule %s: on_interaction: %w", m.data.Name, err)
	}

	violations, err := m.decodeViolations(-1, player)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", m.data.Name, err)
	}
	for _, v := range violations {
		if err := g.Punish(v); err != nil {
			return nil, err
		}
	}
	return violations, nil
}

// stashVerdict pins the verdict table at index into the ring and
// returns its slot id, so hook closures can find it after the stack
// unwinds.
func (m *Module) stashVerdict(index int) int {
	l := m.state
	abs := l.AbsIndex(index)
	id := m.nextStash
	m.nextStash++

	l.Global(verdictStash)
	l.PushValue(abs)
	l.RawSetInt(-2, id%stashSlots+1)
	l.Pop(1)
	return id
}

// callStashed invokes a function-valued field of a stashed verdict
// table with (game, player). Fields that are absent or not functions
// are skipped.
func (m *Module) callStashed(id int, field string, g *engine.Game, player int) error {
	l := m.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(verdictStash)
	l.RawGetInt(-1, id%stashSlots+1)
	if l.TypeOf(-1) != lua.TypeTable {
		return nil
	}
	l.Field(-1, field)
	if l.TypeOf(-1) != lua.TypeFunction {
		return nil
	}
	pushGame(l, g, m.data.Name)
	l.PushInteger(player)
	if err := l.ProtectedCall(2, 0, 0); err != nil {
		return fmt.Errorf("rule %s: %s hook: %w", m.data.Name, field, err)
	}
	return nil
}

// callStashedCallback invokes the callback field of a stashed verdict
// with (game, event, deferred) and decodes the verdict it returns.
func (m *Module) callStashedCallback(id int, g *engine.Game, occ event.Occurrence, deferred []engine.VerdictKind) (engine.Verdict, error) {
	l := m.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(verdictStash)
	l.RawGetInt(-1, id%stashSlots+1)
	if l.TypeOf(-1) != lua.TypeTable {
		return engine.Ignore(), nil
	}
	l.Field(-1, "callback")
	if l.TypeOf(-1) != lua.TypeFunction {
		return engine.Ignore(), nil
	}
	pushGame(l, g, m.data.Name)
	pushOccurrence(l, occ)
	l.NewTable()
	for i, k := range deferred {
		l.PushString(deferredKindName(k))
		l.RawSetInt(-2, i+1)
	}
	if err := l.ProtectedCall(3, 1, 0); err != nil {
		return engine.Verdict{}, fmt.Errorf("rule %s: callback: %w", m.data.Name, err)
	}
	v, err := m.decodeVerdict(-1)
	if err != nil {
		return engine.Verdict{}, fmt.Errorf("rule %s: callback: %w", m.data.Name, err)
	}
	return v, nil
}

func deferredKindName(k engine.VerdictKind) string {
	switch k.(type) {
	case engine.OverrideBasicRule:
		return "override"
	case engine.ExecuteBeforeTurnChange:
		return "before"
	case engine.ExecuteAfterTurnChange:
		return "after"
	default:
		return "ignored"
	}
}
