package harness

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_TableTalk(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "table_talk.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot_Shape(t *testing.T) {
	scenario := &Scenario{
		Name:        "snapshot_shape",
		Description: "d",
		Setup: SetupBlock{
			Players:    []string{"Ada", "Blaise"},
			MatchToken: "match-snap",
		},
	}
	result := NewResult()
	result.Trace = []TraceEvent{{Step: 0, Action: ActionSay, Player: 0, Detail: "hi"}}
	result.Journal = []JournalLine{{Seq: 1, Kind: "said", Player: 0, Detail: `{"message":"hi"}`}}
	result.Final = FinalState{CurrentPlayer: 1, PreviousPlayer: -1, Direction: 1,
		HandSizes: []int{5, 5}, Stacks: 3}

	data, err := Snapshot(scenario, result)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	var snap TraceSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "snapshot_shape", snap.Scenario)
	assert.Equal(t, "match-snap", snap.Match)
	require.Len(t, snap.Trace, 1)
	assert.Equal(t, "hi", snap.Trace[0].Detail)
	assert.Equal(t, int64(1), snap.Journal[0].Seq)
	assert.Equal(t, -1, snap.Final.PreviousPlayer)
}

// Two runs of the same scenario must serialize to identical bytes, or
// golden comparison would flap.
func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "table_talk.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
