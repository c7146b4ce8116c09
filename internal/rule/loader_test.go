package rule

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/effect"
	"github.com/roach88/mao/internal/engine"
)

func TestLoadDir_SortsByFileName(t *testing.T) {
	rules, err := LoadDir(filepath.Join("testdata", "rules"))
	require.NoError(t, err)

	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Data().Name
	}
	assert.Equal(t, []string{"counter", "no_red_queens", "reverse_eights", "seven_spice", "watcher"}, names)
}

func TestLoadDir_IgnoresNonLuaEntries(t *testing.T) {
	// testdata itself only holds subdirectories.
	rules, err := LoadDir("testdata")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join("testdata", "missing"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read rules directory")
}

func TestLoadDir_AggregatesBrokenModules(t *testing.T) {
	rules, err := LoadDir(filepath.Join("testdata", "broken"))
	require.Error(t, err)
	assert.Nil(t, rules)
	assert.True(t, engine.IsRuleLoad(err))

	assert.ErrorContains(t, err, "mute.lua")
	assert.ErrorContains(t, err, "on_event must be a function")
	assert.ErrorContains(t, err, "noname.lua")
	assert.ErrorContains(t, err, "needs a name")
	assert.ErrorContains(t, err, "stale.lua")
	assert.ErrorContains(t, err, `version "0.1.0" does not match engine version`)
}

func TestLoadFile_ReadsIdentity(t *testing.T) {
	m, err := LoadFile(filepath.Join("testdata", "rules", "seven_spice.lua"))
	require.NoError(t, err)

	data := m.Data()
	assert.Equal(t, "seven_spice", data.Name)
	assert.Equal(t, "the table", data.Author)
	assert.NotEmpty(t, data.Description)
	assert.Empty(t, data.Paths)
	assert.False(t, m.hasRemover)
}

func TestLoadFile_DecodesCardEffects(t *testing.T) {
	m, err := LoadFile(filepath.Join("testdata", "rules", "seven_spice.lua"))
	require.NoError(t, err)

	effs := m.Data().CardEffects
	require.Len(t, effs, 2)

	sevens := effs[effect.Key{Value: card.Number(7)}]
	require.Len(t, sevens, 1)
	assert.Equal(t, effect.Say{{"spice", "pepper"}}, sevens[0])

	nines := effs[effect.Key{Value: card.Number(9)}]
	require.Len(t, nines, 1)
	assert.Equal(t, effect.Physical("knock"), nines[0])
}

func TestLoadFile_DecodesAutomatonPaths(t *testing.T) {
	m, err := LoadFile(filepath.Join("testdata", "rules", "counter.lua"))
	require.NoError(t, err)

	data := m.Data()
	require.Len(t, data.Paths, 1)
	assert.Equal(t, []engine.Token{engine.SelectRule}, data.Paths[0].Tokens)
	assert.Equal(t, "counter", data.Paths[0].Rule)
	assert.NotNil(t, data.Paths[0].Handler)
	assert.True(t, m.hasRemover)

	turns := data.CardEffects[effect.Key{Value: card.Number(2)}]
	require.Len(t, turns, 1)
	assert.IsType(t, effect.TurnChange{}, turns[0])
}
