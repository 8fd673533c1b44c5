package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyzeRecursion_Empty tests that an empty graph produces no warnings.
func TestAnalyzeRecursion_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeRecursion(nil))
}

// TestAnalyzeRecursion_DAG tests that acyclic calls produce no warnings.
func TestAnalyzeRecursion_DAG(t *testing.T) {
	calls := map[string][]string{
		"main":  {"parse", "eval"},
		"parse": {"lex"},
		"eval":  {"lex"},
		"lex":   {},
	}
	assert.Empty(t, AnalyzeRecursion(calls))
}

// TestAnalyzeRecursion_SelfLoop tests direct recursion.
func TestAnalyzeRecursion_SelfLoop(t *testing.T) {
	calls := map[string][]string{
		"fact": {"fact", "fact"},
	}
	warnings := AnalyzeRecursion(calls)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"fact", "fact"}, warnings[0].Path)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "fact calls itself")
}

// TestAnalyzeRecursion_ThreeNodeCycle tests a cycle through three functions.
func TestAnalyzeRecursion_ThreeNodeCycle(t *testing.T) {
	calls := map[string][]string{
		"c": {"a"},
		"a": {"b"},
		"b": {"c"},
	}
	warnings := AnalyzeRecursion(calls)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "a → b → c → a")
}

// TestAnalyzeRecursion_Deterministic tests that map order never leaks into
// the result.
func TestAnalyzeRecursion_Deterministic(t *testing.T) {
	calls := map[string][]string{
		"z": {"z"},
		"m": {"n"},
		"n": {"m"},
		"a": {"a"},
	}
	first := AnalyzeRecursion(calls)
	require.Len(t, first, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, AnalyzeRecursion(calls))
	}
	assert.Equal(t, "a", first[0].Path[0])
	assert.Equal(t, "m", first[1].Path[0])
	assert.Equal(t, "z", first[2].Path[0])
}
