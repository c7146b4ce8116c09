package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the full record of one scenario run, serialized for
// golden comparison. Struct field order fixes the JSON field order, so
// two identical runs marshal to identical bytes.
type TraceSnapshot struct {
	Scenario string        `json:"scenario"`
	Match    string        `json:"match"`
	Trace    []TraceEvent  `json:"trace"`
	Journal  []JournalLine `json:"journal"`
	Final    FinalState    `json:"final"`
}

// Snapshot serializes a run for golden comparison. The output is
// newline-terminated so golden files diff like ordinary text.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		Scenario: scenario.Name,
		Match:    scenario.Setup.matchToken(),
		Trace:    result.Trace,
		Journal:  result.Journal,
		Final:    result.Final,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden. Regenerate golden files
// with:
//
//	go test ./internal/harness -update
//
// The scenario's own assertions still run; a failing assertion fails
// the returned result, not the golden comparison.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	data, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}

// AssertGolden compares an already-obtained result against a golden
// file, for callers that ran the scenario themselves.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
