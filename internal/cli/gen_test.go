package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenWritesExpandedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tri", failProgram)
	writeFile(t, dir, "sub/b.tri", recursiveProgram)

	stdout, _, err := execute(t, "gen", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Gen Summary: 2 file(s), 2 written, 0 stale, 0 with errors")

	a := readFile(t, filepath.Join(dir, "a.expanded.tri"))
	assert.True(t, strings.HasPrefix(a, GeneratedHeader))
	assert.Contains(t, a, `return Err("missing");`)
	assert.NotContains(t, a, "tri!")

	b := readFile(t, filepath.Join(dir, "sub", "b.expanded.tri"))
	assert.True(t, strings.HasPrefix(b, GeneratedHeader))
	assert.Contains(t, b, "fn odd(n)")
}

func TestGenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tri", failProgram)

	_, _, err := execute(t, "gen", dir)
	require.NoError(t, err)
	first := readFile(t, filepath.Join(dir, "a.expanded.tri"))

	// The expanded file itself is excluded, so the second run sees one source
	stdout, _, err := execute(t, "gen", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Gen Summary: 1 file(s), 0 written, 0 stale, 0 with errors")
	assert.Equal(t, first, readFile(t, filepath.Join(dir, "a.expanded.tri")))
}

func TestGenCheckReportsStale(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.tri", failProgram)

	_, _, err := execute(t, "gen", dir)
	require.NoError(t, err)
	before := readFile(t, filepath.Join(dir, "a.expanded.tri"))

	changed := strings.Replace(failProgram, `"missing"`, `"absent"`, 1)
	require.NoError(t, os.WriteFile(src, []byte(changed), 0644))

	stdout, _, err := execute(t, "gen", "--check", "--diff", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "a.expanded.tri is stale")
	assert.Contains(t, stdout, "@@")
	assert.Regexp(t, `(?m)^-\s+return Err\("missing"\);$`, stdout)
	assert.Regexp(t, `(?m)^\+\s+return Err\("absent"\);$`, stdout)
	assert.Equal(t, before, readFile(t, filepath.Join(dir, "a.expanded.tri")), "--check must not write")
}

func TestGenCheckMissingOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tri", failProgram)

	stdout, _, err := execute(t, "--format", "json", "gen", "--check", dir)
	require.Error(t, err)

	var result GenResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeStale, resp.Error.Code)
	assert.Equal(t, 1, result.Stale)
	require.Len(t, result.Files, 1)
	assert.Equal(t, GenStale, result.Files[0].Status)

	_, err = os.Stat(filepath.Join(dir, "a.expanded.tri"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenReportsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.tri", failProgram)
	writeFile(t, dir, "bad.tri", badProgram)

	stdout, stderr, err := execute(t, "gen", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "1 written, 0 stale, 1 with errors")
	assert.Contains(t, stderr, "error[E102]")

	_, err = os.Stat(filepath.Join(dir, "bad.expanded.tri"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenProjectIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/keep.tri", failProgram)
	writeFile(t, dir, "src/skip_test.tri", failProgram)
	writeFile(t, dir, "other/ignored.tri", failProgram)
	config := writeFile(t, dir, "tri.cue", `config: {
	include: ["src/**/*.tri"]
	exclude: ["**/*_test.tri", "**/*.expanded.tri"]
}
`)

	stdout, _, err := execute(t, "--config", config, "--format", "json", "gen", dir)
	require.NoError(t, err)

	var result GenResult
	decodeResponse(t, stdout, &result)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(dir, "src", "keep.tri"), result.Files[0].Source)
	assert.Equal(t, GenWritten, result.Files[0].Status)
}

func TestGenOrderIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.tri", "a.tri", "b/z.tri", "b/a.tri"} {
		writeFile(t, dir, name, failProgram)
	}

	stdout, _, err := execute(t, "--format", "json", "gen", "--jobs", "3", dir)
	require.NoError(t, err)

	var result GenResult
	decodeResponse(t, stdout, &result)
	var sources []string
	for _, f := range result.Files {
		rel, err := filepath.Rel(dir, f.Source)
		require.NoError(t, err)
		sources = append(sources, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.tri", "b/a.tri", "b/z.tri", "c.tri"}, sources)
}

func TestGenCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tri", failProgram)
	cache := filepath.Join(t.TempDir(), "cache.db")

	_, _, err := execute(t, "gen", "--cache", cache, dir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "a.expanded.tri")))

	stdout, _, err := execute(t, "--format", "json", "gen", "--cache", cache, dir)
	require.NoError(t, err)
	var result GenResult
	decodeResponse(t, stdout, &result)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Cached)
	assert.Equal(t, GenWritten, result.Files[0].Status)
}

func TestGenBadArguments(t *testing.T) {
	_, _, err := execute(t, "gen", "--jobs", "0", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "gen", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExpandedPath(t *testing.T) {
	assert.Equal(t, "a.expanded.tri", expandedPath("a.tri"))
	assert.Equal(t, filepath.Join("x", "b.expanded.tri"), expandedPath(filepath.Join("x", "b.tri")))
}
