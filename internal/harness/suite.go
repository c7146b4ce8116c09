package harness

import (
	"fmt"
	"os"
	"path/filepath"
)

// SuiteResult summarizes a batch of scenario runs.
type SuiteResult struct {
	Scenarios int               `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Failures  []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure is one scenario that did not pass, whether it failed
// to load, to run, or to hold its assertions.
type ScenarioFailure struct {
	Scenario string   `json:"scenario"`
	Path     string   `json:"path"`
	Errors   []string `json:"errors"`
}

// RunFiles runs every scenario file and aggregates the outcomes. One
// broken file does not stop the rest; its failure is collected and the
// suite moves on.
func RunFiles(paths []string) (*SuiteResult, error) {
	suite := &SuiteResult{}
	for _, path := range paths {
		suite.Scenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Scenario: filepath.Base(path),
				Path:     path,
				Errors:   []string{err.Error()},
			})
			continue
		}

		result, err := Run(scenario)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Path:     path,
				Errors:   []string{err.Error()},
			})
			continue
		}

		if !result.Pass {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Path:     path,
				Errors:   result.Errors,
			})
			continue
		}
		suite.Passed++
	}
	return suite, nil
}

// RunDir runs every .yaml/.yml scenario in a directory, in name order.
func RunDir(dir string) (*SuiteResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	return RunFiles(paths)
}
