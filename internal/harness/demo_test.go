package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios.
func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors:\n%v", result.Errors)
		})
	}
}

func TestDiscoverScenarios(t *testing.T) {
	paths, err := DiscoverScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{
		"arity.yaml",
		"fail.yaml",
		"fall.yaml",
		"project_enum.yaml",
		"quota.yaml",
		"recursion.yaml",
		"return.yaml",
		"sum.yaml",
		"until.yaml",
		"while.yaml",
	}, names)
}

func TestDiscoverScenarios_NotADirectory(t *testing.T) {
	_, err := DiscoverScenarios(filepath.Join("testdata", "scenarios", "fall.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestLoadScenarios_StopsAtInvalid(t *testing.T) {
	_, err := LoadScenarios(filepath.Join("testdata", "invalid"))
	require.Error(t, err)
}
