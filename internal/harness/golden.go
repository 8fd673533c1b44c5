package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures what a scenario execution observed: the shape of
// every expansion and the outcome of every call. Expanded code is left out
// so snapshots survive changes to hygienic names.
type TraceSnapshot struct {
	ScenarioName  string             `json:"scenario_name"`
	Expansions    []ExpansionSummary `json:"expansions"`
	Warnings      []string           `json:"warnings,omitempty"`
	CompileErrors []string           `json:"compile_errors,omitempty"`
	Trace         []TraceEvent       `json:"trace"`
}

// Snapshot builds the golden snapshot of a result.
func Snapshot(scenarioName string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName:  scenarioName,
		Expansions:    result.Expansions,
		Warnings:      result.Warnings,
		CompileErrors: result.CompileErrors,
		Trace:         result.Trace,
	}
}

// MarshalSnapshot renders a snapshot as indented JSON with a trailing
// newline. Struct field order fixes the key order.
func MarshalSnapshot(s TraceSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's snapshot against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
