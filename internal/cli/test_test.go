package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: found
description: Fail binds the payload when the scrutinee matches
source: |
  fn main(opt) {
      tri!(opt => Some[x] -> "missing");
      Ok(x)
  }
steps:
  - call: main
    args: ["Some(4)"]
    expect:
      value: "Ok(4)"
`

const failingScenario = `name: wrong
description: Expects the wrong value
source: |
  fn main() {
      1
  }
steps:
  - call: main
    expect:
      value: "2"
`

func TestTestCommandRunsScenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "found.yaml", passingScenario)

	stdout, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ found")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "found.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ wrong")
	assert.Contains(t, stdout, "steps[0] main: expected 2, got 1")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "found.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	stdout, _, err := execute(t, "test", "--filter", "f*", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, stdout, "wrong")
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, _, err := execute(t, "test", "--filter", "[", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "found.yaml", passingScenario)
	golden := filepath.Join(dir, "golden", "found.golden")

	stdout, _, err := execute(t, "test", "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ found (golden updated)")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "found"`)

	// Matching golden passes
	_, _, err = execute(t, "test", dir)
	require.NoError(t, err)

	// A changed golden fails
	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	stdout, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "trace does not match golden file")
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nassertion: []\n")

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "found.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	stdout, _, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)

	var result TestResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Scenarios, 2)
	assert.Equal(t, "found", result.Scenarios[0].Name)
	assert.True(t, result.Scenarios[0].Pass)
	assert.False(t, result.Scenarios[1].Pass)
}

func TestTestCommandEmptyAndMissing(t *testing.T) {
	stdout, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")

	_, _, err = execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
