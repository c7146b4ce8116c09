package effect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/turn"
)

const sampleTable = `
[options]
fold_case = true

[cards."7"]
turn_change = "up_up_2"
say = [["seven"]]

[cards."club:13"]
physical = "knock"

[cards."heart"]
say = [["thank you", "merci"]]
`

func TestParseTable(t *testing.T) {
	tbl, err := Parse([]byte(sampleTable))
	require.NoError(t, err)
	assert.True(t, tbl.FoldCase)

	seven := card.Card{Value: card.Number(7), Kind: card.Common(card.Spade)}
	effs := tbl.Lookup(seven)
	require.Len(t, effs, 2)
	assert.Equal(t, TurnChange{Change: turn.Update{Updater: turn.Step(2)}}, effs[0])
	assert.Equal(t, Say{Phrase{"seven"}}, effs[1])

	kingOfClubs := card.Card{Value: card.Number(13), Kind: card.Common(card.Club)}
	effs = tbl.Lookup(kingOfClubs)
	require.Len(t, effs, 1)
	assert.Equal(t, Physical("knock"), effs[0])

	twoOfHearts := card.Card{Value: card.Number(2), Kind: card.Common(card.Heart)}
	effs = tbl.Lookup(twoOfHearts)
	require.Len(t, effs, 1)
	assert.Equal(t, Say{Phrase{"thank you", "merci"}}, effs[0])
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad toml", `cards = [`},
		{"bad key", `[cards."ace"]` + "\n" + `physical = "knock"`},
		{"bad turn change", `[cards."7"]` + "\n" + `turn_change = "sideways"`},
		{"empty say entry", `[cards."7"]` + "\n" + `say = [[]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "effects.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, tbl.FoldCase)

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}
