package rule

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/effect"
	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/event"
	"github.com/roach88/mao/internal/turn"
)

// stringField reads a string-valued field of the table at index.
func stringField(l *lua.State, index int, name string) (string, bool) {
	l.Field(l.AbsIndex(index), name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeString {
		return "", false
	}
	return l.ToString(-1)
}

// intField reads a number-valued field of the table at index.
func intField(l *lua.State, index int, name string) (int, bool) {
	l.Field(l.AbsIndex(index), name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeNumber {
		return 0, false
	}
	return l.ToInteger(-1)
}

func hasFunctionField(l *lua.State, index int, name string) bool {
	l.Field(l.AbsIndex(index), name)
	defer l.Pop(1)
	return l.TypeOf(-1) == lua.TypeFunction
}

// pushCard pushes a card as a table. value and kind round-trip through
// card.ParseValue and card.ParseKind; color and label are derived
// conveniences.
func pushCard(l *lua.State, c card.Card) {
	l.NewTable()
	if c.Value != nil {
		l.PushString(c.Value.String())
		l.SetField(-2, "value")
	}
	if c.Kind != nil {
		l.PushString(c.Kind.String())
		l.SetField(-2, "kind")
	}
	if c.Rule != "" {
		l.PushString(c.Rule)
		l.SetField(-2, "rule")
	}
	l.PushString(c.Color().String())
	l.SetField(-2, "color")
	l.PushString(c.String())
	l.SetField(-2, "label")
}

// pushTarget pushes a pile target as {stack=i} or {hand=i}.
func pushTarget(l *lua.State, t event.Target) {
	l.NewTable()
	switch t := t.(type) {
	case event.StackTarget:
		l.PushInteger(int(t))
		l.SetField(-2, "stack")
	case event.HandTarget:
		l.PushInteger(int(t))
		l.SetField(-2, "hand")
	}
}

// pushOccurrence pushes the occurrence as a table whose kind field
// matches event.Kind. Card events carry stack = -1 when no existing
// stack was addressed.
func pushOccurrence(l *lua.State, occ event.Occurrence) {
	l.NewTable()
	l.PushString(event.Kind(occ))
	l.SetField(-2, "kind")

	switch o := occ.(type) {
	case event.PlayedCard:
		pushCardFields(l, o.Player, o.CardIndex, o.Card, o.Stack)
	case event.DrewCard:
		pushCardFields(l, o.Player, o.CardIndex, o.Card, o.Stack)
	case event.DiscardedCard:
		pushCardFields(l, o.Player, o.CardIndex, o.Card, o.Stack)
	case event.GaveCard:
		pushCard(l, o.Card)
		l.SetField(-2, "card")
		l.PushInteger(o.From)
		l.SetField(-2, "from")
		pushTarget(l, o.Target)
		l.SetField(-2, "target")
	case event.Said:
		l.PushInteger(o.Player)
		l.SetField(-2, "player")
		l.PushString(o.Message)
		l.SetField(-2, "message")
	case event.DidPhysical:
		l.PushInteger(o.Player)
		l.SetField(-2, "player")
		l.PushString(o.Name)
		l.SetField(-2, "name")
	case event.StackRanOut:
		pushTarget(l, o.Target)
		l.SetField(-2, "target")
	case event.TurnEnded:
		l.NewTable()
		for i, sub := range o.Events {
			pushOccurrence(l, sub)
			l.RawSetInt(-2, i+1)
		}
		l.SetField(-2, "events")
	case event.Penalty:
		l.PushInteger(o.Player)
		l.SetField(-2, "player")
	}
}

func pushCardFields(l *lua.State, player, cardIndex int, c card.Card, stack int) {
	l.PushInteger(player)
	l.SetField(-2, "player")
	l.PushInteger(cardIndex)
	l.SetField(-2, "card_index")
	pushCard(l, c)
	l.SetField(-2, "card")
	l.PushInteger(stack)
	l.SetField(-2, "stack")
}

// pushSteps pushes a resolved interaction chain as an array of
// {token=...} tables carrying index or name when the step had a
// payload.
func pushSteps(l *lua.State, steps []engine.Step) {
	l.NewTable()
	for i, s := range steps {
		l.NewTable()
		l.PushString(s.Token.String())
		l.SetField(-2, "token")
		switch p := s.Payload.(type) {
		case engine.Index:
			l.PushInteger(int(p))
			l.SetField(-2, "index")
		case engine.Name:
			l.PushString(string(p))
			l.SetField(-2, "name")
		}
		l.RawSetInt(-2, i+1)
	}
}

// decodeVerdict turns the value at index into a verdict. nil and false
// mean no opinion. Tables with function fields are pinned through the
// stash so their hooks survive the call stack unwinding before the
// engine fires them.
func (m *Module) decodeVerdict(index int) (engine.Verdict, error) {
	l := m.state
	if l.IsNoneOrNil(index) {
		return engine.Ignore(), nil
	}
	if l.TypeOf(index) == lua.TypeBoolean && !l.ToBoolean(index) {
		return engine.Ignore(), nil
	}
	if l.TypeOf(index) != lua.TypeTable {
		return engine.Verdict{}, fmt.Errorf("verdict must be a table or nil")
	}
	t := l.AbsIndex(index)

	stashID := -1
	stash := func() int {
		if stashID < 0 {
			stashID = m.stashVerdict(t)
		}
		return stashID
	}

	kind, ok := stringField(l, t, "kind")
	if !ok {
		return engine.Verdict{}, fmt.Errorf("verdict table needs a kind")
	}

	var v engine.Verdict
	switch kind {
	case "ignored":
		v = engine.Ignore()
	case "disallow", "forgot":
		ruleName, ok := stringField(l, t, "rule")
		if !ok {
			ruleName = m.data.Name
		}
		message, _ := stringField(l, t, "message")
		var penalty engine.PenaltyHook
		if hasFunctionField(l, t, "penalty") {
			id := stash()
			penalty = func(g *engine.Game, player int) error {
				return m.callStashed(id, "penalty", g, player)
			}
		}
		if kind == "disallow" {
			v = engine.Verdict{Kind: engine.Disallow{Rule: ruleName, Message: message, Penalty: penalty}}
		} else {
			v = engine.Verdict{Kind: engine.ForgotSomething{Rule: ruleName, Message: message, Penalty: penalty}}
		}
	case "override", "before", "after":
		hook, err := m.turnHook(stash, t, kind)
		if err != nil {
			return engine.Verdict{}, err
		}
		switch kind {
		case "override":
			v = engine.Verdict{Kind: engine.OverrideBasicRule{Hook: hook}}
		case "before":
			v = engine.Verdict{Kind: engine.ExecuteBeforeTurnChange{Hook: hook}}
		default:
			v = engine.Verdict{Kind: engine.ExecuteAfterTurnChange{Hook: hook}}
		}
	default:
		return engine.Verdict{}, fmt.Errorf("unknown verdict kind %q", kind)
	}

	if hasFunctionField(l, t, "callback") {
		id := stash()
		v.Callback = func(g *engine.Game, occ event.Occurrence, deferred []engine.VerdictKind) (engine.Verdict, error) {
			return m.callStashedCallback(id, g, occ, deferred)
		}
	}
	return v, nil
}

// turnHook builds the hook of a turn verdict: the table's hook function
// when it has one, otherwise its declarative turn change string, parsed
// here so a typo fails the dispatch instead of the turn change.
func (m *Module) turnHook(stash func() int, t int, kind string) (engine.TurnHook, error) {
	l := m.state
	if hasFunctionField(l, t, "hook") {
		id := stash()
		return func(g *engine.Game, player int) error {
			return m.callStashed(id, "hook", g, player)
		}, nil
	}
	s, ok := stringField(l, t, "turn")
	if !ok {
		return nil, fmt.Errorf("%s verdict needs a hook function or a turn string", kind)
	}
	change, err := turn.ParseChange(s)
	if err != nil {
		return nil, err
	}
	return func(g *engine.Game, player int) error {
		g.UpdateTurn(change)
		return nil
	}, nil
}

// decodeViolations turns an on_interaction return value into violations.
// nil means none; otherwise an array of tables with kind ("disallowed"
// or "forgot") and message, plus optional rule and player overrides.
func (m *Module) decodeViolations(index, player int) ([]engine.Violation, error) {
	l := m.state
	if l.IsNoneOrNil(index) {
		return nil, nil
	}
	if l.TypeOf(index) != lua.TypeTable {
		return nil, fmt.Errorf("on_interaction must return nil or a violation list")
	}
	t := l.AbsIndex(index)

	var out []engine.Violation
	for i := 1; ; i++ {
		l.RawGetInt(t, i)
		if l.IsNoneOrNil(-1) {
			l.Pop(1)
			break
		}
		if l.TypeOf(-1) != lua.TypeTable {
			return nil, fmt.Errorf("violation %d must be a table", i-1)
		}
		v := engine.Violation{Kind: engine.ViolationDisallowed, Rule: m.data.Name, Player: player}
		if kind, ok := stringField(l, -1, "kind"); ok {
			switch kind {
			case string(engine.ViolationDisallowed):
				v.Kind = engine.ViolationDisallowed
			case string(engine.ViolationForgot):
				v.Kind = engine.ViolationForgot
			default:
				return nil, fmt.Errorf("violation %d: unknown kind %q", i-1, kind)
			}
		}
		if ruleName, ok := stringField(l, -1, "rule"); ok {
			v.Rule = ruleName
		}
		v.Message, _ = stringField(l, -1, "message")
		if p, ok := intField(l, -1, "player"); ok {
			v.Player = p
		}
		out = append(out, v)
		l.Pop(1)
	}
	return out, nil
}

// readCardEffects decodes the optional card_effects table: keys in
// effect.ParseKey form, values arrays of effect tables.
func (m *Module) readCardEffects() (map[effect.Key][]effect.Effect, error) {
	l := m.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(ruleTable)
	l.Field(-1, "card_effects")
	if l.IsNoneOrNil(-1) {
		return nil, nil
	}
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("card_effects must be a table")
	}
	t := l.AbsIndex(-1)

	out := make(map[effect.Key][]effect.Effect)
	l.PushNil()
	for l.Next(t) {
		if l.TypeOf(-2) != lua.TypeString {
			return nil, fmt.Errorf("card_effects keys must be strings")
		}
		keyStr, _ := l.ToString(-2)
		key, err := effect.ParseKey(keyStr)
		if err != nil {
			return nil, err
		}
		effs, err := m.readEffectList(-1)
		if err != nil {
			return nil, fmt.Errorf("card_effects[%q]: %w", keyStr, err)
		}
		out[key] = effs
		l.Pop(1)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// readEffectList decodes an array of effect tables, each carrying
// exactly one of say, physical, or turn.
func (m *Module) readEffectList(index int) ([]effect.Effect, error) {
	l := m.state
	t := l.AbsIndex(index)
	if l.TypeOf(t) != lua.TypeTable {
		return nil, fmt.Errorf("effects must be an array of tables")
	}

	var out []effect.Effect
	for i := 1; ; i++ {
		l.RawGetInt(t, i)
		if l.IsNoneOrNil(-1) {
			l.Pop(1)
			break
		}
		eff, err := readEffect(l, -1)
		l.Pop(1)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i-1, err)
		}
		out = append(out, eff)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("effects array is empty")
	}
	return out, nil
}

func readEffect(l *lua.State, index int) (effect.Effect, error) {
	t := l.AbsIndex(index)
	if l.TypeOf(t) != lua.TypeTable {
		return nil, fmt.Errorf("want a table with say, physical, or turn")
	}

	if s, ok := stringField(l, t, "turn"); ok {
		change, err := turn.ParseChange(s)
		if err != nil {
			return nil, err
		}
		return effect.TurnChange{Change: change}, nil
	}
	if s, ok := stringField(l, t, "physical"); ok {
		return effect.Physical(s), nil
	}

	l.Field(t, "say")
	defer l.Pop(1)
	if l.TypeOf(-1) == lua.TypeTable {
		return readSay(l, -1)
	}
	return nil, fmt.Errorf("want one of say, physical, or turn")
}

// readSay decodes a say array. A string entry is one required phrase; a
// nested array is one phrase with alternatives.
func readSay(l *lua.State, index int) (effect.Say, error) {
	t := l.AbsIndex(index)
	var say effect.Say
	for i := 1; ; i++ {
		l.RawGetInt(t, i)
		if l.IsNoneOrNil(-1) {
			l.Pop(1)
			break
		}
		switch l.TypeOf(-1) {
		case lua.TypeString:
			s, _ := l.ToString(-1)
			say = append(say, effect.Phrase{s})
		case lua.TypeTable:
			sub := l.AbsIndex(-1)
			var phrase effect.Phrase
			for j := 1; ; j++ {
				l.RawGetInt(sub, j)
				if l.IsNoneOrNil(-1) {
					l.Pop(1)
					break
				}
				if l.TypeOf(-1) != lua.TypeString {
					return nil, fmt.Errorf("say alternatives must be strings")
				}
				s, _ := l.ToString(-1)
				phrase = append(phrase, s)
				l.Pop(1)
			}
			if len(phrase) == 0 {
				return nil, fmt.Errorf("say phrase %d is empty", i-1)
			}
			say = append(say, phrase)
		default:
			return nil, fmt.Errorf("say entries must be strings or string arrays")
		}
		l.Pop(1)
	}
	if len(say) == 0 {
		return nil, fmt.Errorf("say is empty")
	}
	return say, nil
}

// readAutomatonPaths decodes automaton_paths into engine paths. The
// handlers are the module's on_interaction adapter; the same method
// value identifies the leaf on every Data call, so deactivation
// un-merges exactly what activation merged.
func (m *Module) readAutomatonPaths() ([]engine.Path, error) {
	l := m.state
	base := l.Top()
	defer l.SetTop(base)

	l.Global(ruleTable)
	rt := l.AbsIndex(-1)
	l.Field(rt, "automaton_paths")
	if l.IsNoneOrNil(-1) {
		return nil, nil
	}
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("automaton_paths must be a table")
	}
	t := l.AbsIndex(-1)

	var paths []engine.Path
	for i := 1; ; i++ {
		l.RawGetInt(t, i)
		if l.IsNoneOrNil(-1) {
			l.Pop(1)
			break
		}
		if l.TypeOf(-1) != lua.TypeTable {
			return nil, fmt.Errorf("automaton_paths[%d] must be a table", i-1)
		}
		tokens, err := readTokens(l, -1)
		if err != nil {
			return nil, fmt.Errorf("automaton_paths[%d]: %w", i-1, err)
		}
		paths = append(paths, engine.Path{
			Tokens:  tokens,
			Rule:    m.data.Name,
			Handler: m.onInteraction,
		})
		l.Pop(1)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	l.Field(rt, "on_interaction")
	if l.TypeOf(-1) != lua.TypeFunction {
		return nil, fmt.Errorf("automaton_paths need an on_interaction function")
	}
	return paths, nil
}

func readTokens(l *lua.State, index int) ([]engine.Token, error) {
	t := l.AbsIndex(index)
	l.Field(t, "tokens")
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("needs a tokens array")
	}
	tt := l.AbsIndex(-1)

	var tokens []engine.Token
	for i := 1; ; i++ {
		l.RawGetInt(tt, i)
		if l.IsNoneOrNil(-1) {
			l.Pop(1)
			break
		}
		if l.TypeOf(-1) != lua.TypeString {
			l.Pop(1)
			return nil, fmt.Errorf("tokens must be strings")
		}
		s, _ := l.ToString(-1)
		l.Pop(1)
		tok, err := engine.ParseToken(s)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("tokens array is empty")
	}
	return tokens, nil
}
