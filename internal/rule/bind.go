package rule

import (
	"github.com/Shopify/go-lua"

	"github.com/roach88/mao/internal/engine"
	"github.com/roach88/mao/internal/turn"
)

const gameTypeName = "mao.game"

// gameBinding is the userdata handed to rule scripts: the game plus the
// calling module's name, so data slots stay namespaced per rule.
type gameBinding struct {
	g    *engine.Game
	rule string
}

func pushGame(l *lua.State, g *engine.Game, rule string) {
	l.PushUserData(&gameBinding{g: g, rule: rule})
	lua.SetMetaTableNamed(l, gameTypeName)
}

// registerGameType installs the metatable rule scripts reach the table
// through.
func registerGameType(l *lua.State) {
	lua.NewMetaTable(l, gameTypeName)
	l.NewTable()
	lua.SetFunctions(l, gameMethods, 0)
	l.SetField(-2, "__index")
	l.Pop(1)
}

func checkGame(l *lua.State) *gameBinding {
	ud := lua.CheckUserData(l, 1, gameTypeName)
	if b, ok := ud.(*gameBinding); ok && b != nil {
		return b
	}
	lua.ArgumentError(l, 1, "game expected")
	return nil
}

var gameMethods = []lua.RegistryFunction{
	{Name: "match_token", Function: gameMatchToken},
	{Name: "current_player", Function: gameCurrentPlayer},
	{Name: "previous_player", Function: gamePreviousPlayer},
	{Name: "direction", Function: gameDirection},
	{Name: "dealer", Function: gameDealer},
	{Name: "player_count", Function: gamePlayerCount},
	{Name: "pseudo", Function: gamePseudo},
	{Name: "hand_len", Function: gameHandLen},
	{Name: "hand_card", Function: gameHandCard},
	{Name: "top_card", Function: gameTopCard},
	{Name: "stack_len", Function: gameStackLen},
	{Name: "stacks_of", Function: gameStacksOf},
	{Name: "turn_log_len", Function: gameTurnLogLen},
	{Name: "physical_actions", Function: gamePhysicalActions},
	{Name: "can_play_on_new_stack", Function: gameCanPlayOnNewStack},
	{Name: "data_get", Function: gameDataGet},
	{Name: "data_set", Function: gameDataSet},
	{Name: "data_del", Function: gameDataDel},
	{Name: "player_data_get", Function: gamePlayerDataGet},
	{Name: "player_data_set", Function: gamePlayerDataSet},
	{Name: "deal_to", Function: gameDealTo},
	{Name: "update_turn", Function: gameUpdateTurn},
}

func gameMatchToken(l *lua.State) int {
	b := checkGame(l)
	l.PushString(b.g.MatchToken())
	return 1
}

func gameCurrentPlayer(l *lua.State) int {
	b := checkGame(l)
	l.PushInteger(b.g.CurrentPlayer())
	return 1
}

func gamePreviousPlayer(l *lua.State) int {
	b := checkGame(l)
	l.PushInteger(b.g.PreviousPlayer())
	return 1
}

func gameDirection(l *lua.State) int {
	b := checkGame(l)
	l.PushInteger(b.g.Direction())
	return 1
}

func gameDealer(l *lua.State) int {
	b := checkGame(l)
	l.PushInteger(b.g.Dealer())
	return 1
}

func gamePlayerCount(l *lua.State) int {
	b := checkGame(l)
	l.PushInteger(len(b.g.Players()))
	return 1
}

func gamePseudo(l *lua.State) int {
	b := checkGame(l)
	p, err := b.g.Player(lua.CheckInteger(l, 2))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	l.PushString(p.Pseudo())
	return 1
}

func gameHandLen(l *lua.State) int {
	b := checkGame(l)
	p, err := b.g.Player(lua.CheckInteger(l, 2))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	l.PushInteger(p.HandLen())
	return 1
}

func gameHandCard(l *lua.State) int {
	b := checkGame(l)
	p, err := b.g.Player(lua.CheckInteger(l, 2))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	c, err := p.CardAt(lua.CheckInteger(l, 3))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	pushCard(l, c)
	return 1
}

func gameTopCard(l *lua.State) int {
	b := checkGame(l)
	s, err := b.g.Stack(lua.CheckInteger(l, 2))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	c, ok := s.Top()
	if !ok {
		l.PushNil()
		return 1
	}
	pushCard(l, c)
	return 1
}

func gameStackLen(l *lua.State) int {
	b := checkGame(l)
	s, err := b.g.Stack(lua.CheckInteger(l, 2))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	l.PushInteger(s.Len())
	return 1
}

func gameStacksOf(l *lua.State) int {
	b := checkGame(l)
	var kinds []engine.StackKind
	for i := 2; i <= l.Top(); i++ {
		switch lua.CheckString(l, i) {
		case "drawable":
			kinds = append(kinds, engine.Drawable)
		case "playable":
			kinds = append(kinds, engine.Playable)
		case "discardable":
			kinds = append(kinds, engine.Discardable)
		default:
			lua.ArgumentError(l, i, "unknown stack kind")
			return 0
		}
	}
	l.NewTable()
	for i, idx := range b.g.StacksOf(kinds...) {
		l.PushInteger(idx)
		l.RawSetInt(-2, i+1)
	}
	return 1
}

func gameTurnLogLen(l *lua.State) int {
	b := checkGame(l)
	l.PushInteger(len(b.g.TurnLog()))
	return 1
}

func gamePhysicalActions(l *lua.State) int {
	b := checkGame(l)
	l.NewTable()
	for i, name := range b.g.PhysicalActions() {
		l.PushString(name)
		l.RawSetInt(-2, i+1)
	}
	return 1
}

func gameCanPlayOnNewStack(l *lua.State) int {
	b := checkGame(l)
	l.PushBoolean(b.g.CanPlayOnNewStack())
	return 1
}

func gameDataGet(l *lua.State) int {
	b := checkGame(l)
	v, ok := b.g.Data().Get(b.rule, lua.CheckString(l, 2))
	if !ok {
		l.PushNil()
		return 1
	}
	l.PushString(v)
	return 1
}

func gameDataSet(l *lua.State) int {
	b := checkGame(l)
	b.g.Data().Set(b.rule, lua.CheckString(l, 2), lua.CheckString(l, 3))
	return 0
}

func gameDataDel(l *lua.State) int {
	b := checkGame(l)
	b.g.Data().Delete(b.rule, lua.CheckString(l, 2))
	return 0
}

func gamePlayerDataGet(l *lua.State) int {
	b := checkGame(l)
	p, err := b.g.Player(lua.CheckInteger(l, 2))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	v, ok := p.Data().Get(b.rule, lua.CheckString(l, 3))
	if !ok {
		l.PushNil()
		return 1
	}
	l.PushString(v)
	return 1
}

func gamePlayerDataSet(l *lua.State) int {
	b := checkGame(l)
	p, err := b.g.Player(lua.CheckInteger(l, 2))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	p.Data().Set(b.rule, lua.CheckString(l, 3), lua.CheckString(l, 4))
	return 0
}

func gameDealTo(l *lua.State) int {
	b := checkGame(l)
	player := lua.CheckInteger(l, 2)
	n := lua.CheckInteger(l, 3)
	if n < 0 {
		lua.ArgumentError(l, 3, "card count must not be negative")
		return 0
	}
	if err := b.g.DealTo(player, n); err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	return 0
}

func gameUpdateTurn(l *lua.State) int {
	b := checkGame(l)
	change, err := turn.ParseChange(lua.CheckString(l, 2))
	if err != nil {
		lua.ArgumentError(l, 2, err.Error())
		return 0
	}
	b.g.UpdateTurn(change)
	return 0
}
