package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recursiveProgram = `fn even(n) {
    if n == 0 { true } else { odd(n - 1) }
}

fn odd(n) {
    if n == 0 { false } else { even(n - 1) }
}
`

func TestCheckValid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "prog.tri", failProgram)

	stdout, stderr, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+path+": 1 expansion(s)")
	assert.Empty(t, stderr)
}

func TestCheckReportsEveryFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.tri", failProgram)
	bad := writeFile(t, dir, "bad.tri", badProgram)

	stdout, stderr, err := execute(t, "check", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✓ "+good)
	assert.Contains(t, stdout, "✗ "+bad)
	assert.Contains(t, stderr, bad+":2:")
	assert.Contains(t, stderr, "error[E102]")
}

func TestCheckWarnsOnRecursion(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rec.tri", recursiveProgram)

	stdout, _, err := execute(t, "check", path)
	require.NoError(t, err, "recursion is a warning, not an error")
	assert.Contains(t, stdout, "0 expansion(s)")
	assert.Contains(t, stdout, "warning:")
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.tri", failProgram)
	rec := writeFile(t, dir, "rec.tri", recursiveProgram)

	stdout, _, err := execute(t, "--format", "json", "check", good, rec)
	require.NoError(t, err)

	var result CheckResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, result.Errors)
	require.Len(t, result.Files, 2)
	assert.True(t, result.Files[0].Valid)
	assert.Equal(t, 1, result.Files[0].Expansions)
	require.Len(t, result.Files[1].Warnings, 1)
	assert.Equal(t, []string{"even", "odd", "even"}, result.Files[1].Warnings[0].Path)
}

func TestCheckJSONFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.tri", badProgram)

	stdout, _, err := execute(t, "--format", "json", "check", path)
	require.Error(t, err)

	var result CheckResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeDiagnostics, resp.Error.Code)
	require.Len(t, result.Files, 1)
	assert.False(t, result.Files[0].Valid)
	assert.GreaterOrEqual(t, result.Errors, 1)
}

func TestCheckRequiresFile(t *testing.T) {
	_, _, err := execute(t, "check")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
