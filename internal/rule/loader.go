// Package rule loads table rules written in Lua and adapts them to the
// engine's Rule interface.
//
// A rule module is one .lua file that returns a table:
//
//	return {
//	    name = "seven_spice",
//	    version = "0.3.0",
//	    author = "the table",          -- optional
//	    description = "Sevens bite.", -- optional
//	    card_effects = {               -- optional
//	        ["7"] = { { say = { "spice" } } },
//	    },
//	    automaton_paths = {            -- optional
//	        { tokens = { "select_rule" } },
//	    },
//	    on_event = function(game, ev) end,
//	    on_interaction = function(game, player, steps) end, -- with paths
//	    remove_card_effects = function(game) end,           -- optional
//	}
//
// version must equal the engine's rule ABI version exactly. Every
// index crossing the boundary is zero-based, on both sides, so a rule
// and the engine never disagree about which seat is which.
//
// Each module runs in its own Lua state; modules cannot see each
// other's globals. States are not locked: the table is single-threaded
// and so are its rules.
package rule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/roach88/mao/internal/engine"
)

// LoadDir loads every .lua file directly inside dir, in name order.
// Broken modules do not mask the others: all failures are aggregated
// into a single rule-load error, and no modules are returned with it.
func LoadDir(dir string) ([]engine.Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rules directory: %w", err)
	}

	var rules []engine.Rule
	var failures []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".lua" {
			continue
		}
		m, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			failures = append(failures, e.Name()+": "+err.Error())
			continue
		}
		rules = append(rules, m)
	}
	if len(failures) > 0 {
		return nil, &engine.GameError{
			Code:    engine.ErrCodeRuleLoad,
			Message: "rule modules rejected:\n" + strings.Join(failures, "\n"),
		}
	}
	return rules, nil
}

// LoadFile loads a single rule module from path.
func LoadFile(path string) (*Module, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	registerGameType(l)

	l.NewTable()
	l.SetGlobal(verdictStash)

	if err := lua.LoadFile(l, path, ""); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	if l.TypeOf(-1) != lua.TypeTable {
		l.Pop(1)
		return nil, fmt.Errorf("script must return a rule table")
	}
	l.SetGlobal(ruleTable)

	m := &Module{state: l, path: path}
	if err := m.readRuleTable(); err != nil {
		return nil, err
	}
	return m, nil
}

// readRuleTable validates the returned table and captures the module's
// identity, paths and card effects.
func (m *Module) readRuleTable() error {
	l := m.state
	base := l.Top()
	defer l.SetTop(base)
	l.Global(ruleTable)

	name, ok := stringField(l, -1, "name")
	if !ok || name == "" {
		return fmt.Errorf("rule table needs a name")
	}
	m.data.Name = name

	version, ok := stringField(l, -1, "version")
	if !ok {
		return fmt.Errorf("rule %s: missing version", name)
	}
	if version != engine.Version {
		return fmt.Errorf("rule %s: version %q does not match engine version %q",
			name, version, engine.Version)
	}

	m.data.Author, _ = stringField(l, -1, "author")
	m.data.Description, _ = stringField(l, -1, "description")

	l.Field(-1, "on_event")
	isFunc := l.TypeOf(-1) == lua.TypeFunction
	l.Pop(1)
	if !isFunc {
		return fmt.Errorf("rule %s: on_event must be a function", name)
	}

	effects, err := m.readCardEffects()
	if err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	m.data.CardEffects = effects

	paths, err := m.readAutomatonPaths()
	if err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	m.data.Paths = paths

	l.Field(-1, "remove_card_effects")
	m.hasRemover = l.TypeOf(-1) == lua.TypeFunction
	l.Pop(1)
	return nil
}
